// Package cache avoids recomputing extraction for identical inputs.
//
// The key is a fingerprint over the input bytes, the MIME type, and a
// canonicalized serialization of the effective config, so configs that
// differ only in field order hit the same entry. At most one computation
// runs per fingerprint; concurrent callers attach to the in-flight one.
// Cache failures degrade to bypass: extraction still succeeds when the
// optional persistent store is unavailable.
package cache
