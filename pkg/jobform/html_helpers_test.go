package jobform_test

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseHTML(t *testing.T, page []byte) *html.Node {
	t.Helper()
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && match(cur) {
			out = append(out, cur)
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}

func byTagAttr(tag, key, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Data != tag {
			return false
		}
		got, ok := attr(n, key)
		return ok && got == value
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// selectOptionValues returns the option values of the select named name.
func selectOptionValues(t *testing.T, doc *html.Node, name string) (values []string, selected string) {
	t.Helper()
	selects := findAll(doc, byTagAttr("select", "name", name))
	if len(selects) != 1 {
		t.Fatalf("expected one select %q, found %d", name, len(selects))
	}
	for _, opt := range findAll(selects[0], func(n *html.Node) bool { return n.Data == "option" }) {
		value, _ := attr(opt, "value")
		values = append(values, value)
		if hasAttr(opt, "selected") {
			selected = value
		}
	}
	return values, selected
}

func hiddenInputs(form *html.Node) map[string]string {
	out := map[string]string{}
	for _, input := range findAll(form, byTagAttr("input", "type", "hidden")) {
		name, _ := attr(input, "name")
		value, _ := attr(input, "value")
		out[name] = value
	}
	return out
}
