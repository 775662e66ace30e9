package structure

import (
	"fmt"

	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/tables"
)

// Config controls structure building.
type Config struct {
	// KClusters is the number of font-size clusters used to infer heading
	// levels when the format carries none.
	KClusters int

	// OCRCoverageThreshold is the minimum OCR confidence a heading candidate
	// needs. Candidates below it are demoted to paragraphs.
	OCRCoverageThreshold float64
}

// DefaultConfig returns the structure building defaults.
func DefaultConfig() Config {
	return Config{
		KClusters:            3,
		OCRCoverageThreshold: 0.5,
	}
}

// Heading clusters must be noticeably larger than body text: at least this
// ratio over the body centroid and at least this absolute gap in points.
const (
	minHeadingFontRatio = 1.15
	minHeadingFontGap   = 1.0
)

// Build assembles a document tree from raw blocks. Nesting follows the block
// types: list items nest under the nearest preceding list, and every block
// nests under the nearest preceding heading of strictly lower level. If the
// assembled tree fails validation it degrades to a flat, parent-less node
// list rather than returning an invalid structure.
func Build(raw *model.RawExtraction, cfg Config) *model.DocumentStructure {
	if cfg.KClusters <= 0 {
		cfg.KClusters = DefaultConfig().KClusters
	}

	blocks := inferHeadingLevels(raw.Blocks, cfg)
	s := assemble(blocks, raw)

	if err := s.Validate(); err != nil {
		flatten(s)
	}
	return s
}

// nodeID generates the deterministic identifier for a node. The hash folds
// the type discriminant, text, page, and the node's ordinal position; the
// ordinal keeps duplicate content on the same page distinguishable.
func nodeID(nodeType model.NodeType, text string, page, index int) string {
	typeHash := foldHash(string(nodeType))
	textHash := foldHash(text)

	// Unpaged content hashes as the sentinel, distinct from page 1.
	pageHash := ^uint64(0)
	if page > 0 {
		pageHash = uint64(page)
	}

	combined := typeHash*65599 + textHash
	combined = combined*65599 + pageHash
	combined = combined*65599 + uint64(index)

	return fmt.Sprintf("node-%x", combined)
}

func foldHash(s string) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		h = h*31 + uint64(s[i])
	}
	return h
}

// inferHeadingLevels assigns levels to heading blocks that carry none.
// Candidates with font sizes are clustered into KClusters groups by 1-D
// k-means; the most populated cluster is assumed to be body text and every
// cluster whose centroid is not clearly above it is demoted. Remaining
// clusters map to levels 1..k by descending centroid. Candidates below the
// OCR coverage threshold, or without any font size, demote to paragraphs.
func inferHeadingLevels(blocks []model.Block, cfg Config) []model.Block {
	var candidates []int
	for i, b := range blocks {
		if b.Kind == model.BlockHeading && b.Level == 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return blocks
	}

	out := make([]model.Block, len(blocks))
	copy(out, blocks)

	// Cluster over every sized block, body text included, so the dominant
	// cluster reflects actual body font size.
	var sizes []float64
	for _, b := range out {
		if b.FontSize > 0 {
			sizes = append(sizes, b.FontSize)
		}
	}

	levelFor := clusterHeadingLevels(sizes, cfg.KClusters)

	for _, i := range candidates {
		b := &out[i]
		if b.Confidence > 0 && b.Confidence < cfg.OCRCoverageThreshold {
			b.Kind = model.BlockParagraph
			continue
		}
		if b.FontSize <= 0 {
			b.Kind = model.BlockParagraph
			continue
		}
		level, ok := levelFor(b.FontSize)
		if !ok {
			b.Kind = model.BlockParagraph
			continue
		}
		b.Level = level
	}
	return out
}

// clusterHeadingLevels clusters font sizes and returns a lookup from a font
// size to its inferred heading level. Sizes falling into the body cluster,
// or into clusters too close to the body centroid, report no level.
func clusterHeadingLevels(sizes []float64, k int) func(float64) (int, bool) {
	none := func(float64) (int, bool) { return 0, false }
	if len(sizes) == 0 {
		return none
	}

	centroids, counts := kmeans1D(sizes, k)
	if len(centroids) < 2 {
		// One cluster means one font size band: no heading evidence.
		return none
	}

	// The most populated cluster is body text.
	body := 0
	for i := range counts {
		if counts[i] > counts[body] {
			body = i
		}
	}
	bodySize := centroids[body]

	// Heading levels by descending centroid, skipping the body cluster and
	// anything not clearly larger than body.
	type cl struct {
		centroid float64
		index    int
	}
	var heads []cl
	for i, c := range centroids {
		if i == body {
			continue
		}
		if c < bodySize*minHeadingFontRatio || c-bodySize < minHeadingFontGap {
			continue
		}
		heads = append(heads, cl{centroid: c, index: i})
	}
	if len(heads) == 0 {
		return none
	}
	for i := 0; i < len(heads); i++ {
		for j := i + 1; j < len(heads); j++ {
			if heads[j].centroid > heads[i].centroid {
				heads[i], heads[j] = heads[j], heads[i]
			}
		}
	}

	levelByCluster := make(map[int]int, len(heads))
	for rank, h := range heads {
		levelByCluster[h.index] = rank + 1
	}

	return func(size float64) (int, bool) {
		nearest := nearestCentroid(size, centroids)
		level, ok := levelByCluster[nearest]
		return level, ok
	}
}

// kmeans1D clusters values into at most k groups, returning the centroids and
// member counts. Centroids initialize evenly across the value range; empty
// clusters drop out.
func kmeans1D(values []float64, k int) (centroids []float64, counts []int) {
	if len(values) == 0 {
		return nil, nil
	}
	if k > len(values) {
		k = len(values)
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return []float64{lo}, []int{len(values)}
	}

	centroids = make([]float64, k)
	if k == 1 {
		centroids[0] = (lo + hi) / 2
	} else {
		for i := range centroids {
			centroids[i] = lo + (hi-lo)*float64(i)/float64(k-1)
		}
	}

	for iter := 0; iter < 32; iter++ {
		sums := make([]float64, len(centroids))
		counts = make([]int, len(centroids))
		for _, v := range values {
			c := nearestCentroid(v, centroids)
			sums[c] += v
			counts[c]++
		}

		moved := false
		next := centroids[:0]
		nextCounts := counts[:0]
		for i := range centroids {
			if counts[i] == 0 {
				moved = true
				continue
			}
			mean := sums[i] / float64(counts[i])
			if mean != centroids[i] {
				moved = true
			}
			next = append(next, mean)
			nextCounts = append(nextCounts, counts[i])
		}
		centroids = next
		counts = nextCounts
		if !moved {
			break
		}
	}
	return centroids, counts
}

func nearestCentroid(v float64, centroids []float64) int {
	best := 0
	bestDist := dist(v, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := dist(v, centroids[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func dist(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// assemble builds the node slice with parent/child indices. A heading stack
// tracks the innermost open heading per level; non-heading blocks attach to
// the top of the stack. Consecutive list items without an explicit list
// block get a synthesized list parent.
func assemble(blocks []model.Block, raw *model.RawExtraction) *model.DocumentStructure {
	s := &model.DocumentStructure{}

	// Stack of open heading node indices, innermost last.
	var headings []int
	// Index of the open list node, -1 when none.
	openList := -1

	attach := func(idx int, parent int) {
		if parent < 0 {
			return
		}
		p := parent
		s.Nodes[idx].Parent = &p
		s.Nodes[parent].Children = append(s.Nodes[parent].Children, idx)
	}

	currentParent := func() int {
		if len(headings) > 0 {
			return headings[len(headings)-1]
		}
		return -1
	}

	for _, b := range blocks {
		if b.Kind != model.BlockListItem {
			openList = -1
		}

		switch b.Kind {
		case model.BlockTitle:
			appendNode(s, model.DocumentNode{
				Type: model.NodeTitle,
				Text: b.Text,
			}, b)
			headings = headings[:0]

		case model.BlockHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			// Pop headings at the same or deeper level.
			for len(headings) > 0 && s.Nodes[headings[len(headings)-1]].Level >= level {
				headings = headings[:len(headings)-1]
			}
			idx := appendNode(s, model.DocumentNode{
				Type:  model.NodeHeading,
				Text:  b.Text,
				Level: level,
			}, b)
			attach(idx, currentParent())
			headings = append(headings, idx)

		case model.BlockList:
			idx := appendNode(s, model.DocumentNode{
				Type:    model.NodeList,
				Ordered: b.Ordered,
			}, b)
			attach(idx, currentParent())
			openList = idx

		case model.BlockListItem:
			if openList < 0 {
				idx := appendNode(s, model.DocumentNode{
					Type:    model.NodeList,
					Ordered: b.Ordered,
				}, b)
				attach(idx, currentParent())
				openList = idx
			}
			idx := appendNode(s, model.DocumentNode{
				Type: model.NodeListItem,
				Text: b.Text,
			}, b)
			attach(idx, openList)

		case model.BlockTable:
			node := model.DocumentNode{Type: model.NodeTable}
			if b.TableIndex >= 0 && b.TableIndex < len(raw.Tables) {
				grid := tables.Normalize(raw.Tables[b.TableIndex])
				node.Grid = &grid
			}
			idx := appendNode(s, node, b)
			attach(idx, currentParent())

		case model.BlockImage:
			idx := appendNode(s, model.DocumentNode{
				Type:        model.NodeImage,
				Description: b.Text,
				ImageIndex:  b.ImageIndex,
			}, b)
			attach(idx, currentParent())

		case model.BlockCode:
			idx := appendNode(s, model.DocumentNode{
				Type:     model.NodeCode,
				Text:     b.Text,
				Language: b.Language,
			}, b)
			attach(idx, currentParent())

		case model.BlockQuote:
			idx := appendNode(s, model.DocumentNode{
				Type: model.NodeQuote,
				Text: b.Text,
			}, b)
			attach(idx, currentParent())

		case model.BlockFormula:
			idx := appendNode(s, model.DocumentNode{
				Type: model.NodeFormula,
				Text: b.Text,
			}, b)
			attach(idx, currentParent())

		case model.BlockFootnote:
			idx := appendNode(s, model.DocumentNode{
				Type:         model.NodeFootnote,
				Text:         b.Text,
				ContentLayer: model.LayerFootnote,
			}, b)
			attach(idx, currentParent())

		case model.BlockPageBreak:
			appendNode(s, model.DocumentNode{Type: model.NodePageBreak}, b)

		default:
			idx := appendNode(s, model.DocumentNode{
				Type: model.NodeParagraph,
				Text: b.Text,
			}, b)
			attach(idx, currentParent())
		}
	}
	return s
}

// appendNode finalizes shared node fields and assigns the deterministic ID.
func appendNode(s *model.DocumentStructure, node model.DocumentNode, b model.Block) int {
	idx := len(s.Nodes)
	node.Page = b.Page
	node.BBox = b.BBox
	node.Annotations = b.Annotations
	if b.Layer != "" && b.Layer != model.LayerBody && node.ContentLayer == "" {
		node.ContentLayer = b.Layer
	}
	node.ID = nodeID(node.Type, idText(node, b), b.Page, idx)
	s.Nodes = append(s.Nodes, node)
	return idx
}

// idText selects the text that participates in the node's identifier.
// Container nodes without text hash their description or label instead.
func idText(node model.DocumentNode, b model.Block) string {
	if node.Text != "" {
		return node.Text
	}
	if node.Description != "" {
		return node.Description
	}
	return b.Text
}

// flatten strips all parent/child references, leaving a flat node list.
func flatten(s *model.DocumentStructure) {
	for i := range s.Nodes {
		s.Nodes[i].Parent = nil
		s.Nodes[i].Children = nil
	}
}
