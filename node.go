package docxedit

import (
	"encoding/xml"
	"strings"
)

// XML namespaces used by WordprocessingML packages.
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsWStrict = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	nsR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT      = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// xmlNode is a generic element tree used for the descendant lookups the decoder needs.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []xmlNode  `xml:",any"`
}

func isW(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == nsW || name.Space == nsWStrict)
}

// attr returns the WordprocessingML attribute with the given local name.
func (n *xmlNode) attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Local != local {
			continue
		}
		if a.Name.Space == nsW || a.Name.Space == nsWStrict || a.Name.Space == "" {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first direct child with the given local name, or nil.
func (n *xmlNode) child(local string) *xmlNode {
	if n == nil {
		return nil
	}
	for i := range n.Nodes {
		if isW(n.Nodes[i].XMLName, local) {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *xmlNode) children(local string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Nodes {
		if isW(n.Nodes[i].XMLName, local) {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// walk visits the descendants of n in document order. Returning false from fn
// skips the subtree of the visited node.
func (n *xmlNode) walk(fn func(*xmlNode) bool) {
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if fn(c) {
			c.walk(fn)
		}
	}
}

// descendants returns every descendant with the given local name, without
// descending into matches.
func (n *xmlNode) descendants(local string) []*xmlNode {
	var out []*xmlNode
	n.walk(func(c *xmlNode) bool {
		if isW(c.XMLName, local) {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}

func (n *xmlNode) hasDescendant(local string) bool {
	found := false
	n.walk(func(c *xmlNode) bool {
		if found {
			return false
		}
		if isW(c.XMLName, local) {
			found = true
			return false
		}
		return true
	})
	return found
}

// text concatenates every w:t under n in document order.
func (n *xmlNode) text() (string, bool) {
	ts := n.descendants("t")
	if len(ts) == 0 {
		return "", false
	}
	var sb strings.Builder
	for _, t := range ts {
		sb.WriteString(t.Text)
	}
	return sb.String(), true
}
