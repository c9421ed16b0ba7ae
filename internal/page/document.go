// Package page models the host page the viewer draws into: an HTML node
// tree that can be mutated element by element and rendered for browsers.
//
// A Document is not safe for concurrent use. Every mutation and render is
// expected to run on the Loop that owns the page.
package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed host.html
var hostHTML string

// Mutation is sent to subscribers after the document changes.
type Mutation struct {
	Version uint64
}

// Document is an in-memory HTML page.
type Document struct {
	root     *html.Node
	version  uint64
	handlers map[*html.Node]map[string][]func(Event)

	listenersMu sync.Mutex
	listeners   []chan Mutation
}

// Parse builds a document from HTML source.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{
		root:     root,
		handlers: make(map[*html.Node]map[string][]func(Event)),
	}, nil
}

// NewDefault returns the stock host page: a viewer container and a
// refresh button under a heading.
func NewDefault(title string) *Document {
	doc, err := Parse(strings.NewReader(hostHTML))
	if err != nil {
		// host.html is embedded and known to parse
		panic(err)
	}
	if title != "" {
		doc.SetTitle(title)
	}
	return doc
}

// SetTitle replaces the text of the <title> and first <h1> elements.
func (d *Document) SetTitle(title string) {
	for _, a := range []atom.Atom{atom.Title, atom.H1} {
		if n := findNode(d.root, func(n *html.Node) bool { return n.DataAtom == a }); n != nil {
			d.replaceChildren(n, []*html.Node{{Type: html.TextNode, Data: title}})
		}
	}
	d.touch()
}

// Version counts mutations since the document was created.
func (d *Document) Version() uint64 {
	return d.version
}

// GetElementByID returns the attached element with the given id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	n := findNode(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && getAttr(n, "id") == id
	})
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	n := findNode(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// CreateElement returns a detached element. It is not visible to
// GetElementByID until appended somewhere in the tree.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return &Element{
		doc: d,
		node: &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: atom.Lookup([]byte(tag)),
		},
	}
}

// Render writes the whole page.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the page, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Subscribe returns a channel that receives a Mutation after each change.
// Slow subscribers miss intermediate versions.
func (d *Document) Subscribe() chan Mutation {
	ch := make(chan Mutation, 10)
	d.listenersMu.Lock()
	d.listeners = append(d.listeners, ch)
	d.listenersMu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (d *Document) Unsubscribe(ch chan Mutation) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()

	for i, listener := range d.listeners {
		if listener == ch {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (d *Document) touch() {
	d.version++
	m := Mutation{Version: d.version}

	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	for _, ch := range d.listeners {
		select {
		case ch <- m:
		default:
		}
	}
}

func (d *Document) replaceChildren(n *html.Node, children []*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		d.forget(c)
		c = next
	}
	for _, c := range children {
		n.AppendChild(c)
	}
}

// forget drops event handlers registered anywhere under n.
func (d *Document) forget(n *html.Node) {
	delete(d.handlers, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
