package manifestxml

import (
	"encoding/xml"
	"strings"
)

// Node is a generic XML element used to exchange per-element markup with
// builders and serializers.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// NewNode returns an empty element called name.
func NewNode(name string) Node {
	return Node{XMLName: xml.Name{Local: name}}
}

// Name is the local element name.
func (n Node) Name() string {
	return n.XMLName.Local
}

// Attr returns the trimmed value of the named attribute.
func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute; empty values are not written.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == name {
			if value == "" {
				n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			} else {
				n.Attrs[i].Value = value
			}
			return
		}
	}
	if value != "" {
		n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	}
}

// Text is the trimmed character data of the element.
func (n Node) Text() string {
	return strings.TrimSpace(n.Content)
}

// Child returns the first child called name.
func (n Node) Child(name string) (Node, bool) {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c, true
		}
	}
	return Node{}, false
}

// ChildText returns the text of the first child called name, or "".
func (n Node) ChildText(name string) string {
	c, ok := n.Child(name)
	if !ok {
		return ""
	}
	return c.Text()
}

// ChildrenNamed returns every child called name in document order.
func (n Node) ChildrenNamed(name string) []Node {
	var out []Node
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			out = append(out, c)
		}
	}
	return out
}

// AddChild appends child.
func (n *Node) AddChild(child Node) {
	n.Children = append(n.Children, child)
}

// AddText appends a child called name holding text; empty text is skipped.
func (n *Node) AddText(name, text string) {
	if text == "" {
		return
	}
	c := NewNode(name)
	c.Content = text
	n.AddChild(c)
}
