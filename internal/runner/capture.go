package runner

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/webapi/pkg/requests"
	"github.com/tidwall/gjson"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// extractCaptures evaluates every capture against body. Captures that do not
// match are left out of the result.
func extractCaptures(body []byte, captures map[string]requests.Capture) (map[string]string, error) {
	if len(captures) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(captures))
	var doc *goquery.Document

	for name, c := range captures {
		switch {
		case c.JSON != "":
			if !gjson.ValidBytes(body) {
				return out, fmt.Errorf("capture %q: response is not valid JSON", name)
			}
			if res := gjson.GetBytes(body, c.JSON); res.Exists() {
				out[name] = res.String()
			}
		case c.HTML != "":
			if doc == nil {
				parsed, err := parseHTML(body)
				if err != nil {
					return out, fmt.Errorf("capture %q: %w", name, err)
				}
				doc = parsed
			}
			if val, ok := selectHTML(doc, c.HTML, c.Attr); ok {
				out[name] = val
			}
		}
	}
	return out, nil
}

func parseHTML(body []byte) (*goquery.Document, error) {
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func selectHTML(doc *goquery.Document, selector, attr string) (string, bool) {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return "", false
	}
	if attr == "" {
		return strings.TrimSpace(node.Text()), true
	}
	val, ok := node.Attr(attr)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(val), true
}

func snippet(body string) string {
	const maxLen = 512
	s := strings.TrimSpace(body)
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
