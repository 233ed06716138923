// Package render fills mustache-style placeholders in HTML templates.
//
// A template is any element carrying an id attribute in a template document.
// Rendering substitutes every {{name}} in the element's inner HTML with the
// HTML-escaped value of name. Names without a value are rendered as
// {{-name-}} so that a missing value stands out on the page without being
// mistaken for an unrendered placeholder.
package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrEmptyTemplate    = errors.New("template has no element")
)

//go:embed pages.html
var pagesHTML string

var placeholderRE = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

type template struct {
	source  string
	context *html.Node
}

// Templates is safe for concurrent use once built.
type Templates struct {
	byID map[string]template
}

// Parse collects every element with an id in the document read from r.
func Parse(r io.Reader) (*Templates, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	t := &Templates{byID: make(map[string]template)}
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			if id := attr(n, "id"); id != "" {
				src, err := innerHTML(n)
				if err != nil {
					return err
				}
				t.byID[id] = template{
					source:  src,
					context: &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: n.DataAtom},
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return t, nil
}

// Default returns the page templates compiled into the binary.
func Default() (*Templates, error) {
	return Parse(strings.NewReader(pagesHTML))
}

// Has reports whether a template with this id exists.
func (t *Templates) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// Render fills the template id with values and returns its first element.
func (t *Templates) Render(id string, values map[string]string) (*Fragment, error) {
	tmpl, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	filled := placeholderRE.ReplaceAllStringFunc(tmpl.source, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-2])
		if v, ok := values[name]; ok {
			return html.EscapeString(v)
		}
		return "{{-" + name + "-}}"
	})

	nodes, err := html.ParseFragment(strings.NewReader(filled), tmpl.context)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", id, err)
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return &Fragment{root: n}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrEmptyTemplate, id)
}

// Fragment is a rendered element detached from any document.
type Fragment struct {
	root *html.Node
}

// HTML returns the inner HTML of the fragment.
func (f *Fragment) HTML() string {
	s, _ := innerHTML(f.root)
	return s
}

// OuterHTML includes the fragment's own element.
func (f *Fragment) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, f.root)
	return buf.String()
}

// Attr returns the value of an attribute on the fragment's element.
func (f *Fragment) Attr(key string) string {
	return attr(f.root, key)
}

// Append moves child's element to the end of f. child must not be reused.
func (f *Fragment) Append(child *Fragment) {
	f.root.AppendChild(child.root)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func innerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
