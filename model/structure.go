package model

import (
	"fmt"
	"unicode/utf8"
)

// NodeType identifies the kind of content a document node carries.
type NodeType string

// Node types.
const (
	NodeTitle     NodeType = "title"
	NodeHeading   NodeType = "heading"
	NodeParagraph NodeType = "paragraph"
	NodeList      NodeType = "list"
	NodeListItem  NodeType = "list_item"
	NodeTable     NodeType = "table"
	NodeImage     NodeType = "image"
	NodeCode      NodeType = "code"
	NodeQuote     NodeType = "quote"
	NodeFormula   NodeType = "formula"
	NodeFootnote  NodeType = "footnote"
	NodeGroup     NodeType = "group"
	NodePageBreak NodeType = "page_break"
)

// ContentLayer classifies where a node lives on the page.
type ContentLayer string

// Content layers. Body is the default and is omitted from JSON.
const (
	LayerBody     ContentLayer = "body"
	LayerHeader   ContentLayer = "header"
	LayerFooter   ContentLayer = "footer"
	LayerFootnote ContentLayer = "footnote"
)

// DocumentStructure is the hierarchical document tree: a flat slice of nodes
// in reading order, forming a tree through integer index references. Parents
// always precede their children in the slice.
type DocumentStructure struct {
	Nodes []DocumentNode `json:"nodes"`
}

// DocumentNode is one element of the document tree. The payload fields are
// type-tagged by Type: Text for text-bearing nodes, Level for headings,
// Ordered for lists, Grid for tables, and so on.
type DocumentNode struct {
	// ID is a deterministic hash of the node's content and structural
	// position, stable across re-extraction of unchanged input.
	ID string `json:"id"`

	// Type discriminates the payload.
	Type NodeType `json:"node_type"`

	// Text is the node's text content. Empty for container nodes
	// (List, Quote, Group, PageBreak) and tables.
	Text string `json:"text,omitempty"`

	// Level is the heading level (1-6). Only set for Heading nodes.
	Level int `json:"level,omitempty"`

	// Ordered reports whether a List node is numbered.
	Ordered bool `json:"ordered,omitempty"`

	// Language is the code-block language hint for Code nodes.
	Language string `json:"language,omitempty"`

	// Label is an optional label for Group nodes.
	Label string `json:"label,omitempty"`

	// Description is alt text for Image nodes.
	Description string `json:"description,omitempty"`

	// ImageIndex references ExtractionResult.Images for Image nodes.
	// -1 when the image was not separately extracted.
	ImageIndex int `json:"image_index,omitempty"`

	// Grid is the structured cell grid for Table nodes.
	Grid *TableGrid `json:"grid,omitempty"`

	// ContentLayer classifies the node; empty means LayerBody.
	ContentLayer ContentLayer `json:"content_layer,omitempty"`

	// Parent is the index of the parent node, nil for root-level nodes.
	// When present it is always strictly less than this node's own index.
	Parent *int `json:"parent,omitempty"`

	// Children are the indices of child nodes in reading order.
	Children []int `json:"children,omitempty"`

	// Page is the 1-indexed page this node starts on, 0 if unknown.
	Page int `json:"page_number,omitempty"`

	// PageEnd is the 1-indexed page this node ends on, for nodes spanning
	// multiple pages. 0 when the node fits on Page.
	PageEnd int `json:"page_number_end,omitempty"`

	// BBox locates the node on the page when the format provides geometry.
	BBox *BoundingBox `json:"bbox,omitempty"`

	// Annotations are inline formatting runs over Text, keyed by byte
	// offsets into Text.
	Annotations []TextAnnotation `json:"annotations,omitempty"`
}

// AnnotationKind identifies an inline formatting run.
type AnnotationKind string

// Annotation kinds.
const (
	AnnotationBold          AnnotationKind = "bold"
	AnnotationItalic        AnnotationKind = "italic"
	AnnotationUnderline     AnnotationKind = "underline"
	AnnotationStrikethrough AnnotationKind = "strikethrough"
	AnnotationCode          AnnotationKind = "code"
	AnnotationSubscript     AnnotationKind = "subscript"
	AnnotationSuperscript   AnnotationKind = "superscript"
	AnnotationLink          AnnotationKind = "link"
)

// TextAnnotation marks an inline formatting run over a node's own text.
// Offsets are bytes into the node text, not global document offsets, and must
// fall on UTF-8 codepoint boundaries.
type TextAnnotation struct {
	// Start is the inclusive start byte offset.
	Start int `json:"start"`

	// End is the exclusive end byte offset. Start <= End <= len(text).
	End int `json:"end"`

	// Kind identifies the formatting.
	Kind AnnotationKind `json:"kind"`

	// URL is the link target. Required iff Kind is AnnotationLink.
	URL string `json:"url,omitempty"`
}

// Validate checks the annotation against the node text it refers to.
func (a TextAnnotation) Validate(text string) error {
	if a.Start < 0 || a.Start > a.End || a.End > len(text) {
		return fmt.Errorf("annotation range [%d,%d) out of bounds for text of %d bytes", a.Start, a.End, len(text))
	}
	if !utf8.RuneStart(byteAt(text, a.Start)) || (a.End < len(text) && !utf8.RuneStart(text[a.End])) {
		return fmt.Errorf("annotation range [%d,%d) not on codepoint boundaries", a.Start, a.End)
	}
	if a.Kind == AnnotationLink && a.URL == "" {
		return fmt.Errorf("link annotation at [%d,%d) has no url", a.Start, a.End)
	}
	return nil
}

func byteAt(s string, i int) byte {
	if i >= len(s) {
		return 0
	}
	return s[i]
}

// Validate verifies the structural invariants of the tree:
//
//   - every parent index precedes the referencing node (no cycles),
//   - every child index is in bounds and follows the referencing node,
//   - parent/child references are bidirectionally consistent,
//   - every annotation is within the bounds of its node's text.
//
// It returns a descriptive error for the first violation found.
func (s *DocumentStructure) Validate() error {
	for i := range s.Nodes {
		n := &s.Nodes[i]

		if n.Parent != nil {
			p := *n.Parent
			if p < 0 || p >= len(s.Nodes) {
				return fmt.Errorf("node %d: parent index %d out of bounds", i, p)
			}
			if p >= i {
				return fmt.Errorf("node %d: parent index %d does not precede node", i, p)
			}
			if !containsIndex(s.Nodes[p].Children, i) {
				return fmt.Errorf("node %d: parent %d does not list it as a child", i, p)
			}
		}

		for _, c := range n.Children {
			if c < 0 || c >= len(s.Nodes) {
				return fmt.Errorf("node %d: child index %d out of bounds", i, c)
			}
			if c <= i {
				return fmt.Errorf("node %d: child index %d does not follow node", i, c)
			}
			child := &s.Nodes[c]
			if child.Parent == nil || *child.Parent != i {
				return fmt.Errorf("node %d: child %d does not reference it as parent", i, c)
			}
		}

		for _, a := range n.Annotations {
			if err := a.Validate(n.Text); err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
		}
	}
	return nil
}

// Roots returns the indices of all root-level nodes in reading order.
func (s *DocumentStructure) Roots() []int {
	var roots []int
	for i := range s.Nodes {
		if s.Nodes[i].Parent == nil {
			roots = append(roots, i)
		}
	}
	return roots
}

func containsIndex(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
