// Package keywords scores and ranks keyphrases from extracted text.
//
// Two algorithms are available: YAKE, which scores terms by statistical
// position and co-occurrence features within a sliding window, and RAKE,
// which scores stopword-delimited candidate phrases by word degree to
// frequency ratio. Results are deterministic for identical input: ties are
// broken by first occurrence position.
package keywords
