// Package render turns untrusted model output into display-safe HTML.
package render

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedTags = []string{"strong", "b", "em", "i", "code", "pre", "p", "br", "ul", "ol", "li", "a"}

// contents of these elements never reach the output
var droppedContent = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Noscript: true,
	atom.Template: true,
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.SkipElementsContent("script", "style", "iframe", "noscript", "template")
	return p
}

var allowed = func() map[atom.Atom]bool {
	m := make(map[atom.Atom]bool, len(allowedTags))
	for _, tag := range allowedTags {
		m[atom.Lookup([]byte(tag))] = true
	}
	return m
}()

// Sanitize keeps safelisted formatting tags and escapes everything else.
func Sanitize(content string) string {
	return policy.Sanitize(escapeUnknown(content, false))
}

// Render sanitizes content and turns newlines outside <pre> into <br>.
func Render(content string) string {
	return policy.Sanitize(escapeUnknown(content, true))
}

// escapeUnknown rewrites tags outside the safelist as literal text so that
// model output like List<int> stays visible. The policy enforces the rest.
func escapeUnknown(content string, breakLines bool) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	dropDepth, preDepth := 0, 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := string(z.Raw())
		name, _ := z.TagName()
		tag := atom.Lookup(name)

		switch tt {
		case html.TextToken:
			if dropDepth > 0 {
				continue
			}
			if breakLines && preDepth == 0 {
				raw = strings.ReplaceAll(raw, "\n", "<br>")
			}
			b.WriteString(raw)
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			switch {
			case droppedContent[tag]:
				if tt == html.StartTagToken {
					dropDepth++
				} else if tt == html.EndTagToken && dropDepth > 0 {
					dropDepth--
				}
			case dropDepth > 0:
			case !allowed[tag]:
				b.WriteString(html.EscapeString(raw))
			default:
				if tag == atom.Pre {
					if tt == html.StartTagToken {
						preDepth++
					} else if tt == html.EndTagToken && preDepth > 0 {
						preDepth--
					}
				}
				b.WriteString(raw)
			}
		}
	}
}
