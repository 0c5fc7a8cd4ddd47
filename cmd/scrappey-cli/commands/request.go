package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/textutil"
	"scrappey-go/lib/util/serviceutil"
	"strings"

	"github.com/spf13/cobra"
	"github.com/titanous/json5"
)

type requestFlags struct {
	headers     []string
	data        string
	session     string
	actionsFile string
	passthrough []string

	requestType  string
	proxy        string
	proxyCountry string
	premiumProxy bool
	mobileProxy  bool
	noProxy      bool

	cloudflare    bool
	datadome      bool
	kasada        bool
	solveCaptchas bool

	cookies     string
	userAgent   string
	cssSelector string
	innerText   bool
	screenshot  bool
	video       bool
	remoteMs    int
	retries     int
}

func addRequestFlags(cmd *cobra.Command, withData bool) *requestFlags {
	f := &requestFlags{}
	flags := cmd.Flags()
	flags.StringArrayVarP(&f.headers, "header", "H", nil, "A header to send to the target, as 'name: value'.")
	if withData {
		flags.StringVar(&f.data, "data", "", "The body to send, json is sent as json and anything else as a string.")
	}
	flags.StringVar(&f.session, "session", "", "Run the request inside an existing session.")
	flags.StringVar(&f.actionsFile, "actions", "", "A json5 file with the browser actions to run.")
	flags.StringArrayVar(&f.passthrough, "opt", nil, "Any other option as key=value, values that parse as json are sent as json.")

	flags.StringVar(&f.requestType, "request-type", "", "Either 'browser' or 'request'.")
	flags.StringVar(&f.proxy, "proxy", "", "Use your own proxy.")
	flags.StringVar(&f.proxyCountry, "proxy-country", "", "Pick the country of the proxy, like UnitedStates.")
	flags.BoolVar(&f.premiumProxy, "premium-proxy", false, "Use a premium residential proxy.")
	flags.BoolVar(&f.mobileProxy, "mobile-proxy", false, "Use a mobile proxy.")
	flags.BoolVar(&f.noProxy, "no-proxy", false, "Do not use a proxy.")

	flags.BoolVar(&f.cloudflare, "cloudflare", false, "Enable the cloudflare bypass.")
	flags.BoolVar(&f.datadome, "datadome", false, "Enable the datadome bypass.")
	flags.BoolVar(&f.kasada, "kasada", false, "Enable the kasada bypass.")
	flags.BoolVar(&f.solveCaptchas, "solve-captchas", false, "Automatically solve captchas found on the page.")

	flags.StringVar(&f.cookies, "cookies", "", "Cookies to send, as 'a=1; b=2'.")
	flags.StringVar(&f.userAgent, "user-agent", "", "Override the user agent.")
	flags.StringVar(&f.cssSelector, "css", "", "Ask the api to only return the elements matching a css selector.")
	flags.BoolVar(&f.innerText, "inner-text", false, "Ask the api to return the text of the page.")
	flags.BoolVar(&f.screenshot, "screenshot", false, "Take a screenshot of the page.")
	flags.BoolVar(&f.video, "video", false, "Record a video of the page.")
	flags.IntVar(&f.remoteMs, "remote-timeout", 0, "How long the remote browser waits for the page, in milliseconds.")
	flags.IntVar(&f.retries, "retries", 0, "How many times the api retries a failed page load.")
	return f
}

func (f *requestFlags) options() (scrappey.Options, error) {
	opts := scrappey.Options{
		RequestType:                scrappey.RequestType(f.requestType),
		Proxy:                      f.proxy,
		ProxyCountry:               f.proxyCountry,
		PremiumProxy:               f.premiumProxy,
		MobileProxy:                f.mobileProxy,
		NoProxy:                    f.noProxy,
		CloudflareBypass:           f.cloudflare,
		DatadomeBypass:             f.datadome,
		KasadaBypass:               f.kasada,
		AutomaticallySolveCaptchas: f.solveCaptchas,
		Cookies:                    f.cookies,
		UserAgent:                  f.userAgent,
		CssSelector:                f.cssSelector,
		InnerText:                  f.innerText,
		Screenshot:                 f.screenshot,
		Video:                      f.video,
		Timeout:                    f.remoteMs,
		Retries:                    f.retries,
	}

	headers, err := parseHeaders(f.headers)
	if err != nil {
		return scrappey.Options{}, err
	}
	opts.CustomHeaders = headers

	if f.actionsFile != "" {
		actions, err := readActions(f.actionsFile)
		if err != nil {
			return scrappey.Options{}, err
		}
		opts.BrowserActions = actions
	}

	extra, err := parsePassthrough(f.passthrough)
	if err != nil {
		return scrappey.Options{}, err
	}
	opts.Extra = extra
	return opts, nil
}

func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, v := range values {
		name, value, ok := textutil.SplitPair(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, expected 'name: value'", v)
		}
		headers[strings.ToLower(name)] = value
	}
	return headers, nil
}

// parseValue decodes `s` as json when it is json and keeps it as a string otherwise.
func parseValue(s string) any {
	var value any
	err := json.Unmarshal([]byte(s), &value)
	if err != nil {
		return s
	}
	return value
}

func parsePassthrough(values []string) (map[string]any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	extra := make(map[string]any, len(values))
	for _, v := range values {
		key, value, ok := textutil.SplitPair(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid option %q, expected key=value", v)
		}
		extra[key] = parseValue(value)
	}
	return extra, nil
}

// readActions reads a json5 list of browser actions. The file is normalized
// to plain json first so the actions decode with their own json decoder.
func readActions(path string) ([]scrappey.Action, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var generic any
	err = json5.Unmarshal(contents, &generic)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if object, ok := generic.(map[string]any); ok {
		if nested, ok := object["browserActions"]; ok {
			generic = nested
		}
	}
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	var actions []scrappey.Action
	err = json.Unmarshal(normalized, &actions)
	if err != nil {
		return nil, fmt.Errorf("decode actions in %s: %w", path, err)
	}
	return actions, nil
}

type requestVerb struct {
	name     string
	short    string
	withData bool
	build    func(url string, postData any, opts scrappey.Options) scrappey.Command
}

var requestVerbs = []requestVerb{
	{
		name:  "get",
		short: "Fetches a page with a GET request.",
		build: func(url string, _ any, opts scrappey.Options) scrappey.Command {
			return scrappey.Get(url, opts)
		},
	},
	{
		name:     "post",
		short:    "Sends a POST request.",
		withData: true,
		build:    scrappey.Post,
	},
	{
		name:     "put",
		short:    "Sends a PUT request.",
		withData: true,
		build:    scrappey.Put,
	},
	{
		name:     "patch",
		short:    "Sends a PATCH request.",
		withData: true,
		build:    scrappey.Patch,
	},
	{
		name:  "delete",
		short: "Sends a DELETE request.",
		build: func(url string, _ any, opts scrappey.Options) scrappey.Command {
			return scrappey.Delete(url, opts)
		},
	},
}

func newRequestCmd(verb requestVerb) *cobra.Command {
	var flags *requestFlags
	var out *outputFlags

	use := verb.name + " <url>"
	if verb.withData {
		use += " [--data <body>]"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: verb.short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts, err := flags.options()
			if err != nil {
				serviceutil.Fatal("invalid options", err)
			}
			var postData any
			if flags.data != "" {
				postData = parseValue(flags.data)
			}

			command := verb.build(args[0], postData, opts)
			if flags.session != "" {
				command = command.InSession(flags.session)
			}

			res, err := send(cmd.Context(), command)
			if err != nil {
				serviceutil.Fatal(fmt.Sprintf("%s failed", verb.name), err)
			}
			err = printResponse(cmd.Context(), cmd.OutOrStdout(), res, *out)
			if err != nil {
				serviceutil.Fatal("failed to print response", err)
			}
		},
	}
	flags = addRequestFlags(cmd, verb.withData)
	out = addOutputFlags(cmd)
	return cmd
}

func init() {
	for _, verb := range requestVerbs {
		rootCmd.AddCommand(newRequestCmd(verb))
	}
}
