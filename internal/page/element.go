package page

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Event is delivered to listeners registered with AddEventListener.
type Event struct {
	Type   string
	Target *Element
}

// Element is a handle on one node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Tag returns the lowercase tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// ID returns the element's id attribute.
func (e *Element) ID() string {
	return getAttr(e.node, "id")
}

// Attr returns the value of an attribute and whether it is set.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any previous value.
func (e *Element) SetAttr(key, val string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Key == key {
			e.node.Attr[i].Val = val
			e.doc.touch()
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
	e.doc.touch()
}

// SetClass sets the class attribute.
func (e *Element) SetClass(class string) {
	e.SetAttr("class", class)
}

// SetStyle sets one inline style property, keeping declaration order.
func (e *Element) SetStyle(prop, val string) {
	style, _ := e.Attr("style")
	decls := splitStyle(style)

	replaced := false
	for i, d := range decls {
		if d[0] == prop {
			decls[i][1] = val
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{prop, val})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1]+";")
	}
	e.SetAttr("style", strings.Join(parts, " "))
}

// Style returns the value of an inline style property.
func (e *Element) Style(prop string) string {
	style, _ := e.Attr("style")
	for _, d := range splitStyle(style) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// AppendChild attaches child as the last child of e, detaching it from any
// previous parent first.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
	e.doc.touch()
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{doc: e.doc, node: c})
		}
	}
	return out
}

// SetInnerHTML replaces the element's children with the parsed fragment.
func (e *Element) SetInnerHTML(fragment string) error {
	var nodes []*html.Node
	if strings.TrimSpace(fragment) != "" {
		var err error
		nodes, err = html.ParseFragment(strings.NewReader(fragment), e.node)
		if err != nil {
			return fmt.Errorf("failed to parse fragment: %w", err)
		}
	}
	e.doc.replaceChildren(e.node, nodes)
	e.doc.touch()
	return nil
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// OuterHTML renders the element itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// TextContent concatenates every text node under the element.
func (e *Element) TextContent() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// AddEventListener registers fn for events of the given type on e.
func (e *Element) AddEventListener(event string, fn func(Event)) {
	byType, ok := e.doc.handlers[e.node]
	if !ok {
		byType = make(map[string][]func(Event))
		e.doc.handlers[e.node] = byType
	}
	byType[event] = append(byType[event], fn)
}

// Dispatch runs the listeners for event on e synchronously and reports
// whether there were any.
func (e *Element) Dispatch(event string) bool {
	fns := e.doc.handlers[e.node][event]
	ev := Event{Type: event, Target: e}
	for _, fn := range fns {
		fn(ev)
	}
	return len(fns) > 0
}

func splitStyle(style string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		decls = append(decls, [2]string{strings.TrimSpace(prop), strings.TrimSpace(val)})
	}
	return decls
}
