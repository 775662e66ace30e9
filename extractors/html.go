package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	mdtable "github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// HTMLExtractor walks the DOM into typed blocks: headings with levels,
// paragraphs with inline annotations, tables, lists, code, and quotes.
// Documents whose markup defeats the structural walk fall back to a
// whole-document markdown conversion.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Name() string { return "html" }

func (e *HTMLExtractor) SupportedMimeTypes() []string {
	return []string{format.MimeHTML, "application/xhtml+xml"}
}

var (
	sanitizeOnce   sync.Once
	sanitizePolicy *bluemonday.Policy

	mdOnce      sync.Once
	mdConverter *converter.Converter
)

func htmlPolicy() *bluemonday.Policy {
	sanitizeOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("html", "head", "title", "body", "table", "thead", "tbody", "tr", "th", "td")
		sanitizePolicy = p
	})
	return sanitizePolicy
}

func markdownConverter() *converter.Converter {
	mdOnce.Do(func() {
		mdConverter = converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				mdtable.NewTablePlugin(),
			),
		)
	})
	return mdConverter
}

func (e *HTMLExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	if opts.SanitizeHTML {
		data = htmlPolicy().SanitizeBytes(data)
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	raw := &model.RawExtraction{}
	if title := findTitle(doc); title != "" {
		raw.Metadata.Title = title
	}

	walkHTML(doc, raw)

	if len(raw.Blocks) == 0 {
		// Markup the walk cannot shape (framesets, div soup). Render the
		// whole document as markdown so the text is not lost.
		md, err := markdownConverter().ConvertString(string(data))
		if err == nil && strings.TrimSpace(md) != "" {
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockParagraph,
				Text:       strings.TrimSpace(md),
				TableIndex: -1,
				ImageIndex: -1,
			})
		}
	}

	return raw, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// walkHTML recurses through the DOM, cutting blocks at structural elements.
func walkHTML(n *html.Node, raw *model.RawExtraction) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Nav:
			return

		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			text, anns := collectRichText(n)
			if text != "" {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:        model.BlockHeading,
					Text:        text,
					Level:       int(n.Data[1] - '0'),
					Annotations: anns,
					TableIndex:  -1,
					ImageIndex:  -1,
				})
			}
			return

		case atom.P:
			text, anns := collectRichText(n)
			if text != "" {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:        model.BlockParagraph,
					Text:        text,
					Annotations: anns,
					TableIndex:  -1,
					ImageIndex:  -1,
				})
			}
			return

		case atom.Pre:
			text := collectText(n)
			if text != "" {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:       model.BlockCode,
					Text:       text,
					Language:   codeLanguage(n),
					TableIndex: -1,
					ImageIndex: -1,
				})
			}
			return

		case atom.Blockquote:
			text, anns := collectRichText(n)
			if text != "" {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:        model.BlockQuote,
					Text:        text,
					Annotations: anns,
					TableIndex:  -1,
					ImageIndex:  -1,
				})
			}
			return

		case atom.Ul, atom.Ol:
			extractList(n, n.DataAtom == atom.Ol, raw)
			return

		case atom.Table:
			if t, ok := extractHTMLTable(n); ok {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:       model.BlockTable,
					TableIndex: len(raw.Tables),
					ImageIndex: -1,
				})
				raw.Tables = append(raw.Tables, t)
			}
			return

		case atom.Img:
			if alt := attrValue(n, "alt"); alt != "" {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:       model.BlockImage,
					Text:       alt,
					TableIndex: -1,
					ImageIndex: -1,
				})
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, raw)
	}
}

func extractList(n *html.Node, ordered bool, raw *model.RawExtraction) {
	var items []*html.Node
	var findItems func(*html.Node)
	findItems = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				items = append(items, c)
				continue
			}
			findItems(c.FirstChild)
		}
	}
	findItems(n.FirstChild)
	if len(items) == 0 {
		return
	}

	raw.Blocks = append(raw.Blocks, model.Block{
		Kind:       model.BlockList,
		Ordered:    ordered,
		TableIndex: -1,
		ImageIndex: -1,
	})
	for _, li := range items {
		text, anns := collectRichText(li)
		if text == "" {
			continue
		}
		raw.Blocks = append(raw.Blocks, model.Block{
			Kind:        model.BlockListItem,
			Text:        text,
			Annotations: anns,
			TableIndex:  -1,
			ImageIndex:  -1,
		})
	}
}

// extractHTMLTable reads a <table> into grid form. Leading rows made
// entirely of <th> cells (or inside <thead>) count as header rows.
func extractHTMLTable(n *html.Node) (model.RawTable, bool) {
	var cells [][]string
	headerRows := 0
	counting := true

	var visitRows func(*html.Node, bool)
	visitRows = func(c *html.Node, inHead bool) {
		for ; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead:
				visitRows(c.FirstChild, true)
			case atom.Tbody, atom.Tfoot:
				visitRows(c.FirstChild, false)
			case atom.Tr:
				row, allHeader := extractRow(c)
				if len(row) == 0 {
					continue
				}
				if counting && (inHead || allHeader) {
					headerRows++
				} else {
					counting = false
				}
				cells = append(cells, row)
			}
		}
	}
	visitRows(n.FirstChild, false)

	if len(cells) == 0 {
		return model.RawTable{}, false
	}
	return model.RawTable{Cells: cells, HeaderRows: headerRows}, true
}

func extractRow(tr *html.Node) (row []string, allHeader bool) {
	allHeader = true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom != atom.Td && c.DataAtom != atom.Th {
			continue
		}
		if c.DataAtom == atom.Td {
			allHeader = false
		}
		row = append(row, collectText(c))
	}
	return row, allHeader
}

func codeLanguage(pre *html.Node) string {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			for _, class := range strings.Fields(attrValue(c, "class")) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collectText gathers visible text from a subtree, collapsing whitespace.
func collectText(n *html.Node) string {
	text, _ := collectRichText(n)
	return text
}

// annotationfor maps an inline element to its formatting kind.
func annotationFor(n *html.Node) (model.AnnotationKind, bool) {
	switch n.DataAtom {
	case atom.B, atom.Strong:
		return model.AnnotationBold, true
	case atom.I, atom.Em:
		return model.AnnotationItalic, true
	case atom.U:
		return model.AnnotationUnderline, true
	case atom.S, atom.Del, atom.Strike:
		return model.AnnotationStrikethrough, true
	case atom.Code:
		return model.AnnotationCode, true
	case atom.Sub:
		return model.AnnotationSubscript, true
	case atom.Sup:
		return model.AnnotationSuperscript, true
	case atom.A:
		return model.AnnotationLink, true
	}
	return "", false
}

// collectRichText gathers a subtree's text with whitespace collapsed and
// records inline formatting runs as byte-offset annotations over the result.
func collectRichText(root *html.Node) (string, []model.TextAnnotation) {
	var sb strings.Builder
	var anns []model.TextAnnotation

	appendText := func(s string) {
		words := strings.Fields(s)
		if len(words) == 0 {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Join(words, " "))
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			appendText(n.Data)
			return
		}
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript:
			return
		case atom.Br:
			return
		}

		kind, annotated := annotationFor(n)
		start := sb.Len()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if !annotated {
			return
		}

		// The joining space added before the first word belongs to the
		// enclosing text, not the run.
		text := sb.String()
		for start < len(text) && text[start] == ' ' {
			start++
		}
		if start >= len(text) {
			return
		}
		a := model.TextAnnotation{Start: start, End: len(text), Kind: kind}
		if kind == model.AnnotationLink {
			a.URL = attrValue(n, "href")
			if a.URL == "" {
				return
			}
		}
		anns = append(anns, a)
	}
	walk(root)

	return sb.String(), anns
}
