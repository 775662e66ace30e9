// Package structure converts the typed block sequence a format extractor
// produces into the canonical hierarchical document tree. Node identifiers
// are deterministic hashes over content and structural position, so the ID
// of an unchanged node survives re-extraction even when unrelated content
// moves elsewhere in the document.
//
// When a format carries no explicit heading levels, levels are inferred by
// clustering font sizes. The inferred headings are a best-effort heuristic
// and should be treated as probabilistic, not guaranteed.
package structure
