package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("scrappey-go/lib/htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.Data == "script" || node.Data == "style" {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText drops non printable characters and collapses whitespace.
func CleanText(s string) string {
	cleaned := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			cleaned.WriteRune(c)
		}
	}
	out := strings.TrimSpace(cleaned.String())
	return innerWhitespace.ReplaceAllString(out, " ")
}

// SelectText returns the cleaned text of every element matching `css`.
func SelectText(doc *goquery.Document, css string) []string {
	sel := doc.Find(css)
	out := make([]string, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, CleanText(GetText(n)))
	}
	return out
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors collects the <a> elements of `sel`, hrefs are resolved against
// `base` when it is not nil.
func GetAnchors(ctx context.Context, sel *goquery.Selection, base *url.URL) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Find("a[href]").Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := CleanText(GetText(n))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

// Markdown converts a page to markdown. Relative links and images are
// resolved against `pageUrl` first, it may be empty.
func Markdown(page string, pageUrl string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", err
	}

	base, err := url.Parse(pageUrl)
	if pageUrl != "" && err == nil && base.IsAbs() {
		resolve := func(attr string) func(int, *goquery.Selection) {
			return func(_ int, sel *goquery.Selection) {
				value, _ := sel.Attr(attr)
				ref, err := url.Parse(strings.TrimSpace(value))
				if err != nil {
					return
				}
				sel.SetAttr(attr, base.ResolveReference(ref).String())
			}
		}
		doc.Find("a[href]").Each(resolve("href"))
		doc.Find("img[src]").Each(resolve("src"))
	}

	converter := md.NewConverter("", true, nil)
	return converter.Convert(doc.Selection), nil
}
