package extractors

import (
	"context"
	"strconv"
	"strings"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// TextExtractor handles plain text. It claims text/* as a family fallback so
// unrecognized textual types still extract.
type TextExtractor struct{}

func (e *TextExtractor) Name() string { return "text" }

func (e *TextExtractor) SupportedMimeTypes() []string {
	return []string{format.MimePlainText, "text/*"}
}

func (e *TextExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	raw := &model.RawExtraction{}
	for _, para := range splitParagraphs(string(data)) {
		raw.Blocks = append(raw.Blocks, model.Block{
			Kind:       model.BlockParagraph,
			Text:       para,
			TableIndex: -1,
			ImageIndex: -1,
		})
	}
	return raw, nil
}

// splitParagraphs cuts text on blank lines, normalizing line endings.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// MarkdownExtractor parses markdown into typed blocks: ATX headings, fenced
// code, lists, block quotes, pipe tables, and paragraphs.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Name() string { return "markdown" }

func (e *MarkdownExtractor) SupportedMimeTypes() []string {
	return []string{format.MimeMarkdown}
}

func (e *MarkdownExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	raw := &model.RawExtraction{}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var para []string
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		raw.Blocks = append(raw.Blocks, model.Block{
			Kind:       model.BlockParagraph,
			Text:       strings.Join(para, " "),
			TableIndex: -1,
			ImageIndex: -1,
		})
		para = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushPara()

		case strings.HasPrefix(trimmed, "#"):
			flushPara()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			if level > 6 || (level < len(trimmed) && trimmed[level] != ' ') {
				// Not a heading (e.g. a hashtag); treat as paragraph text.
				para = append(para, trimmed)
				continue
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockHeading,
				Text:       strings.TrimSpace(trimmed[level:]),
				Level:      level,
				TableIndex: -1,
				ImageIndex: -1,
			})

		case strings.HasPrefix(trimmed, "```"):
			flushPara()
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var code []string
			i++
			for ; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					break
				}
				code = append(code, lines[i])
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockCode,
				Text:       strings.Join(code, "\n"),
				Language:   lang,
				TableIndex: -1,
				ImageIndex: -1,
			})

		case strings.HasPrefix(trimmed, ">"):
			flushPara()
			var quote []string
			for ; i < len(lines); i++ {
				q := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(q, ">") {
					i--
					break
				}
				quote = append(quote, strings.TrimSpace(strings.TrimPrefix(q, ">")))
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockQuote,
				Text:       strings.Join(quote, " "),
				TableIndex: -1,
				ImageIndex: -1,
			})

		case isListItem(trimmed):
			flushPara()
			ordered := trimmed[0] >= '0' && trimmed[0] <= '9'
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockList,
				Ordered:    ordered,
				TableIndex: -1,
				ImageIndex: -1,
			})
			for ; i < len(lines); i++ {
				item := strings.TrimSpace(lines[i])
				if !isListItem(item) {
					i--
					break
				}
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:       model.BlockListItem,
					Text:       stripListMarker(item),
					TableIndex: -1,
					ImageIndex: -1,
				})
			}

		case strings.HasPrefix(trimmed, "|") && i+1 < len(lines) && isTableSeparator(strings.TrimSpace(lines[i+1])):
			flushPara()
			header := splitTableRow(trimmed)
			cells := [][]string{header}
			i += 2
			for ; i < len(lines); i++ {
				row := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(row, "|") {
					i--
					break
				}
				cells = append(cells, splitTableRow(row))
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockTable,
				TableIndex: len(raw.Tables),
				ImageIndex: -1,
			})
			raw.Tables = append(raw.Tables, model.RawTable{Cells: cells, HeaderRows: 1})

		default:
			para = append(para, trimmed)
		}
	}
	flushPara()

	return raw, nil
}

func isListItem(line string) bool {
	if len(line) < 2 {
		return false
	}
	if (line[0] == '-' || line[0] == '*' || line[0] == '+') && line[1] == ' ' {
		return true
	}
	// Ordered markers: "1. " or "12. "
	j := 0
	for j < len(line) && line[j] >= '0' && line[j] <= '9' {
		j++
	}
	return j > 0 && j+1 < len(line) && line[j] == '.' && line[j+1] == ' '
}

func stripListMarker(line string) string {
	if line[0] == '-' || line[0] == '*' || line[0] == '+' {
		return strings.TrimSpace(line[1:])
	}
	if idx := strings.Index(line, ". "); idx > 0 {
		if _, err := strconv.Atoi(line[:idx]); err == nil {
			return strings.TrimSpace(line[idx+2:])
		}
	}
	return line
}

// isTableSeparator matches the |---|---| row under a pipe-table header.
func isTableSeparator(line string) bool {
	if !strings.HasPrefix(line, "|") {
		return false
	}
	seen := false
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ':
			if r == '-' {
				seen = true
			}
		default:
			return false
		}
	}
	return seen
}

func splitTableRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
