package scrappey

import "encoding/json"

type RequestType string

const (
	// RequestTypeBrowser renders the page in a headless browser, it is the remote default.
	RequestTypeBrowser RequestType = "browser"
	// RequestTypeRequest uses a plain http library, it is cheaper but cannot run browser actions.
	RequestTypeRequest RequestType = "request"
)

type CookieJarEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path,omitempty"`
}

type BrowserSpec struct {
	Name       string `json:"name"`
	MinVersion int    `json:"minVersion,omitempty"`
	MaxVersion int    `json:"maxVersion,omitempty"`
}

// Options enumerates every option the remote service is known to recognize.
// Zero values are left off the wire so the remote default applies.
//
// Anything not listed here goes into Extra, which is forwarded verbatim.
// A recognized option always wins over an Extra entry of the same name.
type Options struct {
	RequestType RequestType `json:"requestType,omitempty"`

	// proxy selection
	Proxy        string `json:"proxy,omitempty"`
	ProxyCountry string `json:"proxyCountry,omitempty"`
	NoProxy      bool   `json:"noProxy,omitempty"`
	PremiumProxy bool   `json:"premiumProxy,omitempty"`
	MobileProxy  bool   `json:"mobileProxy,omitempty"`

	CustomHeaders map[string]string `json:"customHeaders,omitempty"`
	Referer       string            `json:"referer,omitempty"`
	Cookies       string            `json:"cookies,omitempty"`
	Cookiejar     []CookieJarEntry  `json:"cookiejar,omitempty"`
	LocalStorage  map[string]string `json:"localStorage,omitempty"`

	BrowserActions []Action `json:"browserActions,omitempty"`

	// antibot and captchas
	CloudflareBypass           bool     `json:"cloudflareBypass,omitempty"`
	DatadomeBypass             bool     `json:"datadomeBypass,omitempty"`
	KasadaBypass               bool     `json:"kasadaBypass,omitempty"`
	DisableAntiBot             bool     `json:"disableAntiBot,omitempty"`
	AutomaticallySolveCaptchas bool     `json:"automaticallySolveCaptchas,omitempty"`
	AlwaysLoad                 []string `json:"alwaysLoad,omitempty"`

	// extraction
	CssSelector           string   `json:"cssSelector,omitempty"`
	InnerText             bool     `json:"innerText,omitempty"`
	IncludeImages         bool     `json:"includeImages,omitempty"`
	IncludeLinks          bool     `json:"includeLinks,omitempty"`
	Regex                 []string `json:"regex,omitempty"`
	Filter                []string `json:"filter,omitempty"`
	InterceptFetchRequest []string `json:"interceptFetchRequest,omitempty"`
	ListAllRedirects      bool     `json:"listAllRedirects,omitempty"`
	Base64Response        bool     `json:"base64Response,omitempty"`

	// captures
	Screenshot       bool `json:"screenshot,omitempty"`
	ScreenshotUpload bool `json:"screenshotUpload,omitempty"`
	ScreenshotWidth  int  `json:"screenshotWidth,omitempty"`
	ScreenshotHeight int  `json:"screenshotHeight,omitempty"`
	Base64           bool `json:"base64,omitempty"`
	Video            bool `json:"video,omitempty"`
	Pdf              bool `json:"pdf,omitempty"`

	// page loading and network filtering
	AbortOnDetection               []string `json:"abortOnDetection,omitempty"`
	WaitForAbortOnDetection        bool     `json:"waitForAbortOnDetection,omitempty"`
	WaitForAbortOnDetectionTimeout int      `json:"waitForAbortOnDetectionTimeout,omitempty"`
	WhitelistedDomains             []string `json:"whitelistedDomains,omitempty"`
	BlackListedDomains             []string `json:"blackListedDomains,omitempty"`
	FullPageLoad                   bool     `json:"fullPageLoad,omitempty"`
	DontWaitOnPageLoad             bool     `json:"dontWaitOnPageLoad,omitempty"`
	WaitForUrl                     string   `json:"waitForUrl,omitempty"`
	RemoveIframes                  bool     `json:"removeIframes,omitempty"`
	BlockCookieBanners             bool     `json:"blockCookieBanners,omitempty"`
	MouseMovements                 bool     `json:"mouseMovements,omitempty"`
	ForceMouseMovement             bool     `json:"forceMouseMovement,omitempty"`

	// browser fingerprint
	Browser                []BrowserSpec `json:"browser,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	Locales                []string      `json:"locales,omitempty"`
	ForceUniqueFingerprint bool          `json:"forceUniqueFingerprint,omitempty"`
	WebrtcIpv4             string        `json:"webrtcIpv4,omitempty"`
	WebrtcIpv6             string        `json:"webrtcIpv6,omitempty"`

	// Retries is how many times the remote service retries a failed page load.
	Retries int `json:"retries,omitempty"`
	// Timeout is the remote page timeout in milliseconds, it does not affect
	// how long the client waits for a response.
	Timeout int `json:"timeout,omitempty"`

	// ai parsing
	Autoparse bool           `json:"autoparse,omitempty"`
	Structure map[string]any `json:"structure,omitempty"`
	Model     string         `json:"model,omitempty"`
	AiApiKey  string         `json:"api_key,omitempty"`

	CloseAfterUse bool `json:"closeAfterUse,omitempty"`

	// websocket sessions
	SessionTtl int    `json:"session_ttl,omitempty"`
	Headless   string `json:"headless,omitempty"`
	Geoip      string `json:"geoip,omitempty"`

	Extra map[string]any `json:"-"`
}

type optionsFields Options

func (o Options) fields() (map[string]json.RawMessage, error) {
	return flatten(optionsFields(o), o.Extra)
}

func (o Options) MarshalJSON() ([]byte, error) {
	fields, err := o.fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (o *Options) UnmarshalJSON(data []byte) error {
	var decoded optionsFields
	extra, err := unflatten(data, &decoded)
	if err != nil {
		return err
	}
	*o = Options(decoded)
	o.Extra = extra
	return nil
}
