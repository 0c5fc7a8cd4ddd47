package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"scrappey-go/lib/htmlutil"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const fragmentLength = 500

type outputFlags struct {
	json     bool
	selector string
	markdown bool
	links    bool
}

func addOutputFlags(cmd *cobra.Command) *outputFlags {
	out := &outputFlags{}
	cmd.Flags().BoolVar(&out.json, "json", false, "Print the raw response body.")
	cmd.Flags().StringVar(&out.selector, "select", "", "Print the text of every element of the page matching a css selector.")
	cmd.Flags().BoolVar(&out.markdown, "markdown", false, "Print the page converted to markdown.")
	cmd.Flags().BoolVar(&out.links, "links", false, "Print the links found on the page.")
	return out
}

func printJson(w io.Writer, raw []byte) error {
	var indented bytes.Buffer
	err := json.Indent(&indented, raw, "", "  ")
	if err != nil {
		// not json, print it as it came
		_, err = w.Write(raw)
		fmt.Fprintln(w)
		return err
	}
	indented.WriteByte('\n')
	_, err = indented.WriteTo(w)
	return err
}

func printResponse(ctx context.Context, w io.Writer, res scrappey.Response, out outputFlags) error {
	switch {
	case out.json:
		return printJson(w, res.Raw)
	case out.selector != "":
		doc, err := res.Document()
		if err != nil {
			return err
		}
		for _, text := range htmlutil.SelectText(doc, out.selector) {
			fmt.Fprintln(w, text)
		}
		return nil
	case out.markdown:
		markdown, err := htmlutil.Markdown(res.Solution.Response, res.Solution.CurrentUrl)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, markdown)
		return nil
	case out.links:
		doc, err := res.Document()
		if err != nil {
			return err
		}
		base, _ := url.Parse(res.Solution.CurrentUrl)
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Text", "Href"})
		for _, anchor := range htmlutil.GetAnchors(ctx, doc.Selection, base) {
			t.AppendRow(table.Row{textutil.Truncate(anchor.Name, 60), anchor.Href})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	}
	printFragments(w, res)
	return nil
}

// printFragments prints the parts of a response worth looking at in a terminal.
func printFragments(w io.Writer, res scrappey.Response) {
	solution := res.Solution
	fmt.Fprintf(w, "data: %s\n", res.Data)
	if res.Error != "" {
		fmt.Fprintf(w, "error: %s\n", res.Error)
	}
	if solution.StatusCode != 0 {
		fmt.Fprintf(w, "status: %d\n", solution.StatusCode)
	}
	fmt.Fprintf(w, "verified: %t\n", solution.Verified)
	if res.Session != "" {
		fmt.Fprintf(w, "session: %s\n", res.Session)
	}
	if solution.CurrentUrl != "" {
		fmt.Fprintf(w, "url: %s\n", solution.CurrentUrl)
	}
	if res.TimeElapsed > 0 {
		fmt.Fprintf(w, "elapsed: %.0fms\n", res.TimeElapsed)
	}

	text := solution.InnerText
	if text == "" {
		text = solution.Response
	}
	if text != "" {
		fmt.Fprintf(w, "text: %s\n", textutil.Truncate(textutil.OneLine(text), fragmentLength))
	}
	for i, value := range solution.JavascriptReturn {
		encoded, err := json.Marshal(value)
		if err != nil {
			encoded = []byte(fmt.Sprint(value))
		}
		fmt.Fprintf(w, "javascript[%d]: %s\n", i, encoded)
	}
	if solution.ScreenshotUrl != "" {
		fmt.Fprintf(w, "screenshot: %s\n", solution.ScreenshotUrl)
	}
	if solution.VideoUrl != "" {
		fmt.Fprintf(w, "video: %s\n", solution.VideoUrl)
	}
	if solution.Ws != "" {
		fmt.Fprintf(w, "ws: %s\n", solution.Ws)
	}
	if solution.WsEndpoint != "" {
		fmt.Fprintf(w, "ws endpoint: %s\n", solution.WsEndpoint)
	}
}
