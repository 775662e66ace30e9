// Package registry is the plugin substrate of the extraction engine: it maps
// MIME types to document extractors and maintains the named OCR backends and
// the ordered post-processor and validator plugins.
//
// A Registry is safe for concurrent use. Lookups take a read lock; all
// mutations (register, unregister, clear) take the write lock, so a reader
// never observes a partially applied registration change.
package registry

import (
	"sort"
	"strings"
	"sync"
)

// extractorBinding is one registered extractor with the MIME patterns it
// claims. Later registrations for an already-claimed exact MIME type replace
// the previous binding for that type.
type extractorBinding struct {
	name      string
	patterns  []string
	extractor DocumentExtractor
	seq       int
}

// hookEntry is a registered post-processor or validator. Lower priority runs
// first; ties are broken by registration order.
type hookEntry[T any] struct {
	name     string
	priority int
	seq      int
	fn       T
}

// Registry holds all plugin registrations for one engine. The zero value is
// not usable; call New.
type Registry struct {
	mu sync.RWMutex

	// exact MIME type -> binding; wildcard patterns kept separately in
	// registration order.
	exact     map[string]*extractorBinding
	wildcards []*extractorBinding
	byName    map[string]*extractorBinding
	order     []*extractorBinding

	// built-in fallbacks, fixed at engine construction.
	builtinExact     map[string]DocumentExtractor
	builtinWildcards map[string]DocumentExtractor

	backends     map[string]OCRBackend
	backendOrder []string

	processors []hookEntry[PostProcessor]
	validators []hookEntry[Validator]

	seq int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		exact:            make(map[string]*extractorBinding),
		byName:           make(map[string]*extractorBinding),
		builtinExact:     make(map[string]DocumentExtractor),
		builtinWildcards: make(map[string]DocumentExtractor),
		backends:         make(map[string]OCRBackend),
	}
}

// RegisterBuiltin installs a built-in fallback extractor for every MIME type
// it supports. Built-ins are consulted only when no registered extractor
// claims the type, and are unaffected by ClearExtractors.
func (r *Registry) RegisterBuiltin(e DocumentExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range e.SupportedMimeTypes() {
		if fam, ok := strings.CutSuffix(m, "/*"); ok {
			r.builtinWildcards[fam] = e
		} else {
			r.builtinExact[m] = e
		}
	}
}

// RegisterExtractor registers an extractor for every MIME type it supports.
// An exact MIME type already claimed by an earlier registration is rebound to
// the new extractor.
func (r *Registry) RegisterExtractor(e DocumentExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeExtractorLocked(e.Name())

	b := &extractorBinding{
		name:      e.Name(),
		patterns:  e.SupportedMimeTypes(),
		extractor: e,
		seq:       r.seq,
	}
	r.seq++

	for _, m := range b.patterns {
		if strings.HasSuffix(m, "/*") {
			r.wildcards = append(r.wildcards, b)
		} else {
			r.exact[m] = b
		}
	}
	r.byName[b.name] = b
	r.order = append(r.order, b)
}

// UnregisterExtractor removes the named extractor. Removing an absent name
// succeeds silently.
func (r *Registry) UnregisterExtractor(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeExtractorLocked(name)
}

func (r *Registry) removeExtractorLocked(name string) {
	b, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	for m, bound := range r.exact {
		if bound == b {
			delete(r.exact, m)
		}
	}
	r.wildcards = removeBinding(r.wildcards, b)
	r.order = removeBinding(r.order, b)
}

func removeBinding(list []*extractorBinding, b *extractorBinding) []*extractorBinding {
	out := list[:0]
	for _, x := range list {
		if x != b {
			out = append(out, x)
		}
	}
	return out
}

// ListExtractors returns registered extractor names in registration order.
func (r *Registry) ListExtractors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.order))
	for _, b := range r.order {
		names = append(names, b.name)
	}
	return names
}

// ClearExtractors removes all registered extractors. Built-ins remain.
func (r *Registry) ClearExtractors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exact = make(map[string]*extractorBinding)
	r.wildcards = nil
	r.byName = make(map[string]*extractorBinding)
	r.order = nil
}

// Resolve selects the extractor for a MIME type: a registered exact match
// first, then the most recently registered matching wildcard, then built-in
// exact and wildcard fallbacks. The second return is false when nothing
// claims the type.
func (r *Registry) Resolve(mimeType string) (DocumentExtractor, bool) {
	mimeType = canonicalMime(mimeType)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.exact[mimeType]; ok {
		return b.extractor, true
	}
	family := mimeFamily(mimeType)
	var best *extractorBinding
	for _, b := range r.wildcards {
		for _, p := range b.patterns {
			if fam, ok := strings.CutSuffix(p, "/*"); ok && fam == family {
				if best == nil || b.seq > best.seq {
					best = b
				}
			}
		}
	}
	if best != nil {
		return best.extractor, true
	}

	if e, ok := r.builtinExact[mimeType]; ok {
		return e, true
	}
	if e, ok := r.builtinWildcards[family]; ok {
		return e, true
	}
	return nil, false
}

// canonicalMime strips parameters ("; charset=utf-8") and lowercases.
func canonicalMime(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

func mimeFamily(m string) string {
	if i := strings.IndexByte(m, '/'); i >= 0 {
		return m[:i]
	}
	return m
}

// RegisterOCRBackend registers a backend under a name, replacing any
// previous backend with the same name.
func (r *Registry) RegisterOCRBackend(name string, b OCRBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; !exists {
		r.backendOrder = append(r.backendOrder, name)
	}
	r.backends[name] = b
}

// UnregisterOCRBackend removes the named backend; absent names succeed
// silently.
func (r *Registry) UnregisterOCRBackend(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; !exists {
		return
	}
	delete(r.backends, name)
	for i, n := range r.backendOrder {
		if n == name {
			r.backendOrder = append(r.backendOrder[:i], r.backendOrder[i+1:]...)
			break
		}
	}
}

// OCRBackendByName looks up a registered backend.
func (r *Registry) OCRBackendByName(name string) (OCRBackend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// ListOCRBackends returns backend names in registration order.
func (r *Registry) ListOCRBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.backendOrder))
	copy(out, r.backendOrder)
	return out
}

// ClearOCRBackends removes all registered backends.
func (r *Registry) ClearOCRBackends() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends = make(map[string]OCRBackend)
	r.backendOrder = nil
}

// RegisterPostProcessor registers a post-processor. Lower priority runs
// first; equal priorities run in registration order. Re-registering a name
// replaces the previous entry.
func (r *Registry) RegisterPostProcessor(name string, p PostProcessor, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = upsertHook(r.processors, name, priority, &r.seq, p)
}

// UnregisterPostProcessor removes the named post-processor; absent names
// succeed silently.
func (r *Registry) UnregisterPostProcessor(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = removeHook(r.processors, name)
}

// ListPostProcessors returns names in execution order.
func (r *Registry) ListPostProcessors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hookNames(r.processors)
}

// ClearPostProcessors removes all post-processors.
func (r *Registry) ClearPostProcessors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = nil
}

// PostProcessors returns (name, plugin) pairs in execution order.
func (r *Registry) PostProcessors() []NamedPostProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NamedPostProcessor, len(r.processors))
	for i, h := range r.processors {
		out[i] = NamedPostProcessor{Name: h.name, Plugin: h.fn}
	}
	return out
}

// RegisterValidator registers a validator. Ordering rules match
// RegisterPostProcessor.
func (r *Registry) RegisterValidator(name string, v Validator, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = upsertHook(r.validators, name, priority, &r.seq, v)
}

// UnregisterValidator removes the named validator; absent names succeed
// silently.
func (r *Registry) UnregisterValidator(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = removeHook(r.validators, name)
}

// ListValidators returns names in execution order.
func (r *Registry) ListValidators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return hookNames(r.validators)
}

// ClearValidators removes all validators.
func (r *Registry) ClearValidators() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = nil
}

// Validators returns (name, plugin) pairs in execution order.
func (r *Registry) Validators() []NamedValidator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NamedValidator, len(r.validators))
	for i, h := range r.validators {
		out[i] = NamedValidator{Name: h.name, Plugin: h.fn}
	}
	return out
}

// NamedPostProcessor pairs a post-processor with its registered name.
type NamedPostProcessor struct {
	Name   string
	Plugin PostProcessor
}

// NamedValidator pairs a validator with its registered name.
type NamedValidator struct {
	Name   string
	Plugin Validator
}

func upsertHook[T any](hooks []hookEntry[T], name string, priority int, seq *int, fn T) []hookEntry[T] {
	hooks = removeHook(hooks, name)
	hooks = append(hooks, hookEntry[T]{name: name, priority: priority, seq: *seq, fn: fn})
	*seq++
	sort.SliceStable(hooks, func(i, j int) bool {
		if hooks[i].priority != hooks[j].priority {
			return hooks[i].priority < hooks[j].priority
		}
		return hooks[i].seq < hooks[j].seq
	})
	return hooks
}

func removeHook[T any](hooks []hookEntry[T], name string) []hookEntry[T] {
	for i, h := range hooks {
		if h.name == name {
			return append(hooks[:i:i], hooks[i+1:]...)
		}
	}
	return hooks
}

func hookNames[T any](hooks []hookEntry[T]) []string {
	names := make([]string, len(hooks))
	for i, h := range hooks {
		names[i] = h.name
	}
	return names
}
