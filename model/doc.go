// Package model defines the canonical output types shared by every format
// extractor: the extraction result, the hierarchical document structure, the
// table grid, chunks, and the raw per-format representation that extractors
// hand to the pipeline for normalization.
//
// The document structure is an arena: a flat slice of nodes in reading order
// with integer parent/child indices. No node ever holds a pointer to another
// node, so the tree serializes compactly and cannot form cycles.
package model
