package scribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tsawler/scribe/model"
)

func TestBatchExtractBytesOrderAndIsolation(t *testing.T) {
	eng := New()
	defer eng.Close()

	inputs := []BytesInput{
		{Data: []byte("first document"), MimeType: "text/plain"},
		{Data: []byte("x"), MimeType: "application/x-nope"},
		{Data: []byte("third document"), MimeType: "text/plain"},
	}
	items := eng.BatchExtractBytes(context.Background(), inputs, nil)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, item := range items {
		if item.Index != i {
			t.Errorf("item %d has Index %d", i, item.Index)
		}
	}
	if items[0].Err != nil || !strings.Contains(items[0].Result.Content, "first document") {
		t.Errorf("item 0 = %+v, want success", items[0])
	}
	if !IsKind(items[1].Err, KindUnsupportedFormat) {
		t.Errorf("item 1 err = %v, want unsupported format", items[1].Err)
	}
	if items[1].Result != nil {
		t.Error("item 1 has both a result and an error")
	}
	if items[2].Err != nil || !strings.Contains(items[2].Result.Content, "third document") {
		t.Errorf("item 2 = %+v, want success; a failed sibling must not affect it", items[2])
	}
}

func TestBatchExtractFiles(t *testing.T) {
	eng := New()
	defer eng.Close()

	dir := t.TempDir()
	good := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(good, []byte("file body"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.txt")

	items := eng.BatchExtractFiles(context.Background(), []string{good, missing}, nil)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Path != good || items[0].Err != nil || items[0].Result.Content != "file body" {
		t.Errorf("item 0 = %+v, want extracted file", items[0])
	}
	if !IsKind(items[1].Err, KindIO) {
		t.Errorf("item 1 err = %v, want kind %s", items[1].Err, KindIO)
	}
}

// gateExtractor blocks inside Extract until released, recording the peak
// number of concurrent calls.
type gateExtractor struct {
	mu      sync.Mutex
	active  int
	peak    int
	release chan struct{}
	started atomic.Int64
}

func (g *gateExtractor) Name() string                 { return "gate" }
func (g *gateExtractor) SupportedMimeTypes() []string { return []string{"application/x-gate"} }

func (g *gateExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	g.mu.Lock()
	g.active++
	if g.active > g.peak {
		g.peak = g.active
	}
	g.mu.Unlock()
	g.started.Add(1)

	<-g.release

	g.mu.Lock()
	g.active--
	g.mu.Unlock()
	return &model.RawExtraction{Blocks: []model.Block{{
		Kind: model.BlockParagraph, Text: string(data),
		TableIndex: -1, ImageIndex: -1,
	}}}, nil
}

func TestBatchConcurrencyBound(t *testing.T) {
	eng := New()
	defer eng.Close()
	gate := &gateExtractor{release: make(chan struct{})}
	eng.RegisterExtractor(gate)

	off := false
	cfg := &ExtractionConfig{UseCache: &off, MaxConcurrentExtractions: 2}
	inputs := make([]BytesInput, 6)
	for i := range inputs {
		inputs[i] = BytesInput{Data: []byte{byte('a' + i)}, MimeType: "application/x-gate"}
	}

	done := make(chan []BatchItem)
	go func() { done <- eng.BatchExtractBytes(context.Background(), inputs, cfg) }()

	// With a limit of 2, only the first two extractions may start while the
	// gate is shut.
	waitFor(t, func() bool { return gate.started.Load() == 2 })
	close(gate.release)
	items := <-done

	gate.mu.Lock()
	peak := gate.peak
	gate.mu.Unlock()
	if peak > 2 {
		t.Errorf("peak concurrency %d, want <= 2", peak)
	}
	for i, item := range items {
		if item.Err != nil {
			t.Errorf("item %d failed: %v", i, item.Err)
		}
	}
}

func TestBatchCancelledContext(t *testing.T) {
	eng := New()
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := eng.BatchExtractBytes(ctx, []BytesInput{
		{Data: []byte("a"), MimeType: "text/plain"},
		{Data: []byte("b"), MimeType: "text/plain"},
	}, nil)
	for i, item := range items {
		if item.Err == nil {
			t.Errorf("item %d succeeded under a cancelled context", i)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}
