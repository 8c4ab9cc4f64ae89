// Package notes reads speaker notes out of a Reveal.js deck's HTML.
package notes

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoSlidesContainer is returned when the document has no .slides element.
var ErrNoSlidesContainer = errors.New("could not find .slides container in HTML")

// Extract returns the notes of every top-level slide section, in order.
// Slides without an aside.notes yield an empty string.
func Extract(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	container := doc.Find(".slides").First()
	if container.Length() == 0 {
		return nil, ErrNoSlidesContainer
	}

	notes := make([]string, 0)
	container.ChildrenFiltered("section").Each(func(_ int, section *goquery.Selection) {
		aside := section.Find("aside.notes").First()
		if aside.Length() == 0 {
			notes = append(notes, "")
			return
		}
		notes = append(notes, Text(aside.Get(0)))
	})
	return notes, nil
}

// ExtractFile runs Extract on the file at path.
func ExtractFile(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	notes, err := Extract(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return notes, nil
}

// Text renders the text under n. Block elements and line breaks in the source
// start new lines; other whitespace runs collapse to one space and blank lines
// are dropped. Inline elements stay on their line, so "a <em>b</em> c" is one
// line rather than one line per text node.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			}
		}

		block := isBlock(n)
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	walk(n)

	lines := make([]string, 0)
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Br, atom.Dd,
		atom.Div, atom.Dl, atom.Dt, atom.Figcaption, atom.Figure, atom.Footer,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Header, atom.Hr,
		atom.Li, atom.Ol, atom.P, atom.Pre, atom.Section, atom.Table, atom.Tr, atom.Ul:
		return true
	}
	return false
}
