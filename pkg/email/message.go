package email

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Message is a rendered email ready to send.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

var (
	textPolicy    = bluemonday.StrictPolicy()
	whitespace    = regexp.MustCompile(`\s+`)
	lineBreaks    = regexp.MustCompile(`(?i)<br\s*/?>|</(li|tr)>`)
	blockBreaks   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|ul|ol|table)>`)
	anchorHref    = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// PlainText derives the text/plain alternative of an HTML body. Links whose
// text differs from their target keep the target in parentheses.
func PlainText(body string) string {
	body = anchorHref.ReplaceAllStringFunc(body, func(match string) string {
		parts := anchorHref.FindStringSubmatch(match)
		href, text := html.UnescapeString(parts[1]), parts[2]
		if strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(text))) == href {
			return text
		}
		return text + " (" + parts[1] + ")"
	})
	body = whitespace.ReplaceAllString(body, " ")
	body = lineBreaks.ReplaceAllString(body, "$0\n")
	body = blockBreaks.ReplaceAllString(body, "$0\n\n")
	text := html.UnescapeString(textPolicy.Sanitize(body))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text) + "\n"
}
