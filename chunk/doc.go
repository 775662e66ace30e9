// Package chunk segments document text into overlapping windows for
// downstream embedding and retrieval. Windows prefer sentence and whitespace
// boundaries within a small backtrack budget, and consecutive chunks overlap
// by a configurable amount so no context is lost at the seams.
package chunk
