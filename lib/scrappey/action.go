package scrappey

import "encoding/json"

type ActionType string

const (
	ActionClick            ActionType = "click"
	ActionTypeText         ActionType = "type"
	ActionGoto             ActionType = "goto"
	ActionWait             ActionType = "wait"
	ActionWaitForSelector  ActionType = "wait_for_selector"
	ActionWaitForFunction  ActionType = "wait_for_function"
	ActionWaitForLoadState ActionType = "wait_for_load_state"
	ActionWaitForCookie    ActionType = "wait_for_cookie"
	ActionExecuteJS        ActionType = "execute_js"
	ActionScroll           ActionType = "scroll"
	ActionHover            ActionType = "hover"
	ActionKeyboard         ActionType = "keyboard"
	ActionDropdown         ActionType = "dropdown"
	ActionSwitchIframe     ActionType = "switch_iframe"
	ActionSetViewport      ActionType = "set_viewport"
	ActionIf               ActionType = "if"
	ActionWhile            ActionType = "while"
	ActionSolveCaptcha     ActionType = "solve_captcha"
	ActionRemoveIframes    ActionType = "remove_iframes"
)

var actionTypes = map[ActionType]bool{
	ActionClick:            true,
	ActionTypeText:         true,
	ActionGoto:             true,
	ActionWait:             true,
	ActionWaitForSelector:  true,
	ActionWaitForFunction:  true,
	ActionWaitForLoadState: true,
	ActionWaitForCookie:    true,
	ActionExecuteJS:        true,
	ActionScroll:           true,
	ActionHover:            true,
	ActionKeyboard:         true,
	ActionDropdown:         true,
	ActionSwitchIframe:     true,
	ActionSetViewport:      true,
	ActionIf:               true,
	ActionWhile:            true,
	ActionSolveCaptcha:     true,
	ActionRemoveIframes:    true,
}

func (t ActionType) Valid() bool {
	return actionTypes[t]
}

type LoadState string

const (
	LoadStateDomContentLoaded LoadState = "domcontentloaded"
	LoadStateNetworkIdle      LoadState = "networkidle"
	LoadStateLoad             LoadState = "load"
)

type CaptchaType string

const (
	CaptchaTurnstile   CaptchaType = "turnstile"
	CaptchaRecaptcha   CaptchaType = "recaptcha"
	CaptchaRecaptchaV2 CaptchaType = "recaptchav2"
	CaptchaRecaptchaV3 CaptchaType = "recaptchav3"
	CaptchaHcaptcha    CaptchaType = "hcaptcha"
	CaptchaFuncaptcha  CaptchaType = "funcaptcha"
	CaptchaPerimeterx  CaptchaType = "perimeterx"
	CaptchaMtcaptcha   CaptchaType = "mtcaptcha"
	CaptchaCustom      CaptchaType = "custom"
)

type CaptchaData struct {
	Sitekey     string `json:"sitekey,omitempty"`
	Action      string `json:"action,omitempty"`
	PageAction  string `json:"pageAction,omitempty"`
	Invisible   bool   `json:"invisible,omitempty"`
	Base64Image string `json:"base64Image,omitempty"`
	CssSelector string `json:"cssSelector,omitempty"`
	Reset       bool   `json:"reset,omitempty"`
	Fast        bool   `json:"fast,omitempty"`
}

// Action is one step of a browser action sequence, `Type` selects which of
// the other fields are meaningful.
//
// `if` and `while` steps branch: `if` runs Then when Condition is truthy and
// Or otherwise, `while` runs Then for as long as Condition holds and at most
// MaxAttempts times. Conditions and code are scripts evaluated by the remote
// browser, they are never looked at locally.
type Action struct {
	Type ActionType `json:"type"`

	CssSelector      string    `json:"cssSelector,omitempty"`
	Text             string    `json:"text,omitempty"`
	Url              string    `json:"url,omitempty"`
	Wait             int       `json:"wait,omitempty"`
	WaitForSelector  string    `json:"waitForSelector,omitempty"`
	WaitForLoadState LoadState `json:"waitForLoadState,omitempty"`
	Code             string    `json:"code,omitempty"`

	Condition   string   `json:"condition,omitempty"`
	Then        []Action `json:"then,omitempty"`
	Or          []Action `json:"or,omitempty"`
	MaxAttempts int      `json:"maxAttempts,omitempty"`

	Captcha        CaptchaType  `json:"captcha,omitempty"`
	CaptchaData    *CaptchaData `json:"captchaData,omitempty"`
	WebsiteUrl     string       `json:"websiteUrl,omitempty"`
	WebsiteKey     string       `json:"websiteKey,omitempty"`
	InputSelector  string       `json:"inputSelector,omitempty"`
	ClickSelector  string       `json:"clickSelector,omitempty"`
	IframeSelector string       `json:"iframeSelector,omitempty"`

	// When is either "beforeload" or "afterload".
	When         string `json:"when,omitempty"`
	IgnoreErrors bool   `json:"ignoreErrors,omitempty"`
	// Timeout in milliseconds
	Timeout int  `json:"timeout,omitempty"`
	Direct  bool `json:"direct,omitempty"`

	Value          string `json:"value,omitempty"`
	Index          int    `json:"index,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Repeat         int    `json:"repeat,omitempty"`
	DelayMs        int    `json:"delayMs,omitempty"`
	CookieName     string `json:"cookieName,omitempty"`
	CookieValue    string `json:"cookieValue,omitempty"`
	CookieDomain   string `json:"cookieDomain,omitempty"`
	PollIntervalMs int    `json:"pollIntervalMs,omitempty"`

	Extra map[string]any `json:"-"`
}

// IsControl reports whether the action branches into nested sequences.
func (a Action) IsControl() bool {
	return a.Type == ActionIf || a.Type == ActionWhile
}

type actionFields Action

func (a Action) MarshalJSON() ([]byte, error) {
	fields, err := flatten(actionFields(a), a.Extra)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var decoded actionFields
	extra, err := unflatten(data, &decoded)
	if err != nil {
		return err
	}
	*a = Action(decoded)
	a.Extra = extra
	return nil
}

func Wait(ms int) Action {
	return Action{Type: ActionWait, Wait: ms}
}

// WaitForSelector waits until `selector` matches, a zero timeout leaves the remote default.
func WaitForSelector(selector string, timeoutMs int) Action {
	return Action{Type: ActionWaitForSelector, CssSelector: selector, Timeout: timeoutMs}
}

func WaitForLoadState(state LoadState) Action {
	return Action{Type: ActionWaitForLoadState, WaitForLoadState: state}
}

func Click(selector string) Action {
	return Action{Type: ActionClick, CssSelector: selector}
}

func TypeText(selector, text string) Action {
	return Action{Type: ActionTypeText, CssSelector: selector, Text: text}
}

func Goto(url string) Action {
	return Action{Type: ActionGoto, Url: url}
}

func ExecuteJS(code string) Action {
	return Action{Type: ActionExecuteJS, Code: code}
}

func Scroll(selector string) Action {
	return Action{Type: ActionScroll, CssSelector: selector}
}

func Hover(selector string) Action {
	return Action{Type: ActionHover, CssSelector: selector}
}

func Keyboard(value string) Action {
	return Action{Type: ActionKeyboard, Value: value}
}

func SolveCaptcha(captcha CaptchaType, data *CaptchaData) Action {
	return Action{Type: ActionSolveCaptcha, Captcha: captcha, CaptchaData: data}
}

// If runs `then` when `condition` is truthy, otherwise `or`, which may be nil.
func If(condition string, then []Action, or []Action) Action {
	return Action{Type: ActionIf, Condition: condition, Then: then, Or: or}
}

// While repeats `body` while `condition` holds, at most `maxAttempts` times.
// The bound is the only thing stopping the loop on the remote side.
func While(condition string, maxAttempts int, body ...Action) Action {
	return Action{Type: ActionWhile, Condition: condition, MaxAttempts: maxAttempts, Then: body}
}
