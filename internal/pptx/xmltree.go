package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// OOXML namespaces, transitional and strict
const (
	nsPresentation        = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsPresentationStrict  = "http://purl.oclc.org/ooxml/presentationml/main"
	nsDrawing             = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsDrawingStrict       = "http://purl.oclc.org/ooxml/drawingml/main"
	nsRelationships       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRelationshipsStrict = "http://purl.oclc.org/ooxml/officeDocument/relationships"
)

// node is an element of a parsed XML document
type node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*node
	Text     string
}

// newDecoder returns an XML decoder that understands non-UTF-8 declared encodings
func newDecoder(data []byte) *xml.Decoder {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder
}

// parseTree decodes a complete document into a node tree
func parseTree(data []byte) (*node, error) {
	decoder := newDecoder(data)

	var root *node
	var stack []*node

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("document has more than one root element")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].Name.Local)
	}
	return root, nil
}

// is reports whether the node has the local name and one of the given namespaces.
// A bare prefix is accepted for documents that forgot to declare their namespaces.
func (n *node) is(local string, spaces ...string) bool {
	if n.Name.Local != local {
		return false
	}
	if len(spaces) == 0 {
		return true
	}
	for _, space := range spaces {
		if n.Name.Space == space {
			return true
		}
	}
	return false
}

func (n *node) isPresentation(local string) bool {
	return n.is(local, nsPresentation, nsPresentationStrict, "p")
}

func (n *node) isDrawing(local string) bool {
	return n.is(local, nsDrawing, nsDrawingStrict, "a")
}

// attr returns the value of the attribute with the given local name and namespace
func (n *node) attr(local string, spaces ...string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local != local {
			continue
		}
		if len(spaces) == 0 {
			return a.Value, true
		}
		for _, space := range spaces {
			if a.Name.Space == space {
				return a.Value, true
			}
		}
	}
	return "", false
}

// relAttr returns a relationship-namespaced attribute such as r:embed
func (n *node) relAttr(local string) (string, bool) {
	return n.attr(local, nsRelationships, nsRelationshipsStrict, "r")
}

// walk visits the node and its descendants in document order.
// Returning false from fn skips the node's children.
func (n *node) walk(fn func(*node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// contains reports whether any descendant (or the node itself) satisfies match
func (n *node) contains(match func(*node) bool) bool {
	found := false
	n.walk(func(c *node) bool {
		if found {
			return false
		}
		if match(c) {
			found = true
			return false
		}
		return true
	})
	return found
}

// first returns the first node in document order with the given local name
func (n *node) first(local string) *node {
	var result *node
	n.walk(func(c *node) bool {
		if result != nil {
			return false
		}
		if c.Name.Local == local {
			result = c
			return false
		}
		return true
	})
	return result
}
