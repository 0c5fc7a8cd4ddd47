package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/textutil"
	"scrappey-go/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

type demoStep struct {
	name    string
	title   string
	antibot bool
	run     func(ctx context.Context, w io.Writer) error
}

var demoSteps = []demoStep{
	{name: "get", title: "Basic GET Request", run: demoGet},
	{name: "post", title: "POST Request", run: demoPost},
	{name: "session", title: "Session Management", run: demoSession},
	{name: "actions", title: "Browser Actions", run: demoBrowserActions},
	{name: "extract", title: "Data Extraction", run: demoExtraction},
	{name: "screenshot", title: "Screenshot Capture", run: demoScreenshot},
	{name: "workflow", title: "Complex Workflow", run: demoWorkflow},
	{name: "cloudflare", title: "Cloudflare Bypass", antibot: true, run: demoCloudflare},
	{name: "captcha", title: "Captcha Solving", antibot: true, run: demoCaptcha},
}

var (
	demoAntibot bool
	demoOnly    []string
)

func init() {
	demoCmd.Flags().BoolVar(&demoAntibot, "antibot", false, "Also run the antibot examples, they use more credits.")
	demoCmd.Flags().StringSliceVar(&demoOnly, "only", nil, "Only run the named examples.")
	rootCmd.AddCommand(demoCmd)
}

func selectDemoSteps(antibot bool, only []string) []demoStep {
	selected := map[string]bool{}
	for _, name := range only {
		selected[name] = true
	}
	var out []demoStep
	for _, step := range demoSteps {
		if len(selected) > 0 {
			if selected[step.name] {
				out = append(out, step)
			}
			continue
		}
		if step.antibot && !antibot {
			continue
		}
		out = append(out, step)
	}
	return out
}

// runDemo runs the steps one after the other and stops at the first failure.
func runDemo(ctx context.Context, w io.Writer, steps []demoStep) error {
	for _, step := range steps {
		fmt.Fprintf(w, "\n=== %s ===\n\n", step.title)
		err := step.run(ctx, w)
		if err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	fmt.Fprintln(w, "\nall examples completed")
	return nil
}

var demoCmd = &cobra.Command{
	Use:   "demo [--antibot] [--only <name>,...]",
	Short: "Runs a tour of the api: requests, sessions, browser actions and captures.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := runDemo(cmd.Context(), cmd.OutOrStdout(), selectDemoSteps(demoAntibot, demoOnly))
		if err != nil {
			serviceutil.Fatal("demo failed", err)
		}
	},
}

func demoGet(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://httpbin.rs/get", scrappey.Options{}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	fmt.Fprintf(w, "status: %d\n", res.Solution.StatusCode)
	fmt.Fprintf(w, "session: %s\n", res.Session)
	return nil
}

func demoPost(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Post(
		"https://httpbin.rs/post",
		map[string]any{"name": "John Doe", "email": "john@example.com"},
		scrappey.Options{CustomHeaders: map[string]string{"content-type": "application/json"}},
	))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	fmt.Fprintf(w, "verified: %t\n", res.Solution.Verified)
	return nil
}

func demoSession(ctx context.Context, w io.Writer) (err error) {
	created, err := send(ctx, scrappey.CreateSession(scrappey.Options{}))
	if err != nil {
		return err
	}
	session := created.Session
	fmt.Fprintf(w, "created session: %s\n", session)

	defer func() {
		_, destroyErr := send(ctx, scrappey.DestroySession(session))
		if destroyErr != nil {
			err = errors.Join(err, destroyErr)
			return
		}
		fmt.Fprintln(w, "session destroyed")
	}()

	res, err := send(ctx, scrappey.Get("https://httpbin.rs/cookies/set/session_token/abc123", scrappey.Options{}).InSession(session))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "set cookie: %s\n", res.Data)

	res, err = send(ctx, scrappey.Get("https://httpbin.rs/cookies", scrappey.Options{}).InSession(session))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "cookies: %s\n", textutil.Truncate(textutil.OneLine(res.Solution.InnerText), 100))
	return nil
}

func demoBrowserActions(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://example.com", scrappey.Options{
		BrowserActions: []scrappey.Action{
			scrappey.WaitForSelector("h1", 0),
			scrappey.ExecuteJS("document.querySelector('h1').innerText"),
			scrappey.ExecuteJS("Array.from(document.links).map(l => l.href)"),
		},
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	results := res.Solution.JavascriptReturn
	if len(results) > 0 {
		fmt.Fprintf(w, "heading: %v\n", results[0])
	}
	if len(results) > 1 {
		links, _ := results[1].([]any)
		fmt.Fprintf(w, "links found: %d\n", len(links))
	}
	return nil
}

func demoExtraction(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://example.com", scrappey.Options{
		CssSelector:   "h1",
		InnerText:     true,
		IncludeLinks:  true,
		IncludeImages: true,
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	fmt.Fprintf(w, "inner text: %s\n", textutil.Truncate(textutil.OneLine(res.Solution.InnerText), 200))
	return nil
}

func demoScreenshot(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://example.com", scrappey.Options{
		Screenshot:       true,
		ScreenshotWidth:  1920,
		ScreenshotHeight: 1080,
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	screenshot := res.Solution.Screenshot
	fmt.Fprintf(w, "screenshot captured: %t\n", screenshot != "")
	if screenshot != "" {
		fmt.Fprintf(w, "screenshot size: %d bytes (base64)\n", len(screenshot))
	}
	return nil
}

// workflowActions waits for the page, reads the heading if there is one and
// clicks "load more" until it disappears, at most five times.
var workflowActions = []scrappey.Action{
	scrappey.WaitForLoadState(scrappey.LoadStateNetworkIdle),
	scrappey.If(
		"document.querySelector('h1') !== null",
		[]scrappey.Action{scrappey.ExecuteJS("document.querySelector('h1').textContent")},
		[]scrappey.Action{scrappey.ExecuteJS("'No heading found'")},
	),
	scrappey.While(
		"document.querySelector('.load-more') !== null",
		5,
		scrappey.Click(".load-more"),
		scrappey.Wait(1000),
	),
}

func demoWorkflow(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://example.com", scrappey.Options{
		BrowserActions: workflowActions,
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	fmt.Fprintf(w, "javascript results: %v\n", res.Solution.JavascriptReturn)
	return nil
}

func demoCloudflare(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://nowsecure.nl", scrappey.Options{
		CloudflareBypass: true,
		PremiumProxy:     true,
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	fmt.Fprintf(w, "verified: %t\n", res.Solution.Verified)
	fmt.Fprintf(w, "status: %d\n", res.Solution.StatusCode)
	return nil
}

func demoCaptcha(ctx context.Context, w io.Writer) error {
	res, err := send(ctx, scrappey.Get("https://example.com", scrappey.Options{
		AutomaticallySolveCaptchas: true,
		AlwaysLoad:                 []string{"recaptcha", "hcaptcha", "turnstile"},
	}))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "data: %s\n", res.Data)
	return nil
}
