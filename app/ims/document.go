package ims

import (
	"bytes"
	"fmt"
	"log/slog"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// Node is an element of the IMS export. Names are local names; namespace
// prefixes are dropped.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

func (n *Node) Attr(name string) string {
	return n.Attrs[name]
}

func (n *Node) Child(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// ChildText returns the character data of the first child named name.
func (n *Node) ChildText(name string) string {
	if child := n.Child(name); child != nil {
		return child.Text
	}
	return ""
}

type Document struct {
	Roots []*Node
	// Truncated is set when parsing stopped with elements still open.
	Truncated bool
}

// Walk visits every element in document order.
func (d *Document) Walk(fn func(*Node)) {
	var visit func(*Node)
	visit = func(n *Node) {
		fn(n)
		for _, child := range n.Children {
			visit(child)
		}
	}
	for _, root := range d.Roots {
		visit(root)
	}
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Run(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("feed document is empty")
	}

	pp := xpp.NewXMLPullParser(bytes.NewReader(data), false, charset.NewReaderLabel)

	doc := &Document{}
	var stack []*Node

	for {
		event, err := pp.Next()
		if err != nil {
			if len(doc.Roots) == 0 {
				return nil, fmt.Errorf("failed to parse feed document: %w", err)
			}
			slog.Warn("Feed document is malformed, keeping elements parsed so far", "open_elements", len(stack), "error", err)
			doc.Truncated = len(stack) > 0
			return doc, nil
		}

		switch event {
		case xpp.StartTag:
			node := &Node{
				Name:  pp.Name,
				Attrs: make(map[string]string, len(pp.Attrs)),
			}
			for _, attr := range pp.Attrs {
				node.Attrs[attr.Name.Local] = attr.Value
			}

			if len(stack) == 0 {
				doc.Roots = append(doc.Roots, node)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xpp.EndTag:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xpp.Text:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += pp.Text
			}

		case xpp.EndDocument:
			if len(doc.Roots) == 0 {
				return nil, fmt.Errorf("feed document has no elements")
			}
			doc.Truncated = len(stack) > 0
			return doc, nil
		}
	}
}
