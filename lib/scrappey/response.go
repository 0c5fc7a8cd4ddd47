package scrappey

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	DataSuccess = "success"
	DataError   = "error"
)

type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HttpOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

type DetectedAntibotProviders struct {
	Providers       []string           `json:"providers"`
	Confidence      map[string]float64 `json:"confidence"`
	PrimaryProvider string             `json:"primaryProvider"`
}

// Solution is what the remote browser found at the target url.
type Solution struct {
	Verified                 bool                      `json:"verified"`
	Type                     string                    `json:"type,omitempty"`
	Response                 string                    `json:"response,omitempty"`
	StatusCode               int                       `json:"statusCode,omitempty"`
	CurrentUrl               string                    `json:"currentUrl,omitempty"`
	UserAgent                string                    `json:"userAgent,omitempty"`
	Method                   string                    `json:"method,omitempty"`
	Cookies                  []Cookie                  `json:"cookies,omitempty"`
	CookieString             string                    `json:"cookieString,omitempty"`
	ResponseHeaders          map[string]any            `json:"responseHeaders,omitempty"`
	RequestHeaders           map[string]any            `json:"requestHeaders,omitempty"`
	IpInfo                   map[string]any            `json:"ipInfo,omitempty"`
	InnerText                string                    `json:"innerText,omitempty"`
	LocalStorageData         map[string]any            `json:"localStorageData,omitempty"`
	Screenshot               string                    `json:"screenshot,omitempty"`
	ScreenshotUrl            string                    `json:"screenshotUrl,omitempty"`
	VideoUrl                 string                    `json:"videoUrl,omitempty"`
	JavascriptReturn         []any                     `json:"javascriptReturn,omitempty"`
	Base64Response           string                    `json:"base64Response,omitempty"`
	ListAllRedirectsResponse []string                  `json:"listAllRedirectsResponse,omitempty"`
	AdditionalCost           float64                   `json:"additionalCost,omitempty"`
	Ws                       string                    `json:"ws,omitempty"`
	WsEndpoint               string                    `json:"wsEndpoint,omitempty"`
	DetectedAntibotProviders *DetectedAntibotProviders `json:"detectedAntibotProviders,omitempty"`
	Autoparse                any                       `json:"autoparse,omitempty"`
}

type SessionEntry struct {
	Session      string `json:"session"`
	LastAccessed int64  `json:"lastAccessed"`
}

// Response is the decoded body of a successful http exchange. The remote
// service reports application failures inside it (Data is "error" or the
// solution is not verified), those are never turned into errors.
type Response struct {
	Solution    Solution       `json:"solution"`
	TimeElapsed float64        `json:"timeElapsed"`
	Data        string         `json:"data"`
	Session     string         `json:"session"`
	Error       string         `json:"error,omitempty"`
	Info        string         `json:"info,omitempty"`
	Fingerprint map[string]any `json:"fingerprint,omitempty"`
	Context     map[string]any `json:"context,omitempty"`

	// sessions.list
	Sessions []SessionEntry `json:"sessions,omitempty"`
	Open     int            `json:"open,omitempty"`
	Limit    int            `json:"limit,omitempty"`

	// sessions.active
	Active bool `json:"active,omitempty"`

	// Raw is the body exactly as it was received.
	Raw json.RawMessage `json:"-"`
}

type responseFields Response

func (r *Response) UnmarshalJSON(data []byte) error {
	var decoded responseFields
	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return err
	}
	*r = Response(decoded)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (r Response) Succeeded() bool {
	return r.Data == DataSuccess
}

// Document parses the html of the solution.
func (r Response) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(r.Solution.Response))
}
