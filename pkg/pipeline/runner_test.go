package pipeline

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topolab/pkg/cache"
	"github.com/matzehuels/topolab/pkg/observability"
	"github.com/matzehuels/topolab/pkg/topo"
)

// fakeFetcher serves a canned raw topology and records calls.
type fakeFetcher struct {
	raw    *topo.RawTopology
	err    error
	cached bool
	calls  int
}

func (f *fakeFetcher) Server() string  { return "https://nsp.example.com" }
func (f *fakeFetcher) Network() string { return "L2Topology" }

func (f *fakeFetcher) FetchTopologyCached(ctx context.Context, refresh bool) (*topo.RawTopology, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	return f.raw, f.cached, nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// testRaw builds a small fabric: two devices joined by a two-member LAG
// (reported from both directions), one plain link, and an orphan device.
func testRaw() *topo.RawTopology {
	return &topo.RawTopology{
		Source:  "https://nsp.example.com",
		Network: "L2Topology",
		Devices: []topo.Device{
			{ID: "spine1", Ports: []topo.RawPort{
				{ID: "1/1/1", LAG: "lag-1"},
				{ID: "1/1/2", LAG: "lag-1"},
				{ID: "1/1/3"},
			}},
			{ID: "leaf1", Ports: []topo.RawPort{
				{ID: "1/1/1", LAG: "lag-1"},
				{ID: "1/1/2", LAG: "lag-1"},
			}},
			{ID: "leaf2", Ports: []topo.RawPort{{ID: "eth1"}}},
			{ID: "orphan"},
		},
		Links: []topo.RawLink{
			{ANode: "spine1", APort: "1/1/1", BNode: "leaf1", BPort: "1/1/1"},
			{ANode: "leaf1", APort: "1/1/2", BNode: "spine1", BPort: "1/1/2"},
			{ANode: "spine1", APort: "1/1/3", BNode: "leaf2", BPort: "eth1"},
		},
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	fetcher := &fakeFetcher{raw: testRaw()}

	result, err := runner.Execute(context.Background(), Options{
		Fetcher: fetcher,
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}

	want := Stats{Nodes: 4, Links: 2, LAGs: 2, Duplicates: 1, Isolated: 1}
	got := result.Stats
	got.FetchTime, got.NormalizeTime, got.LayoutTime = 0, 0, 0
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}

	if len(result.Lab.Topology.Nodes) != 4 || len(result.Lab.Topology.Links) != 2 {
		t.Errorf("lab nodes/links = %d/%d, want 4/2",
			len(result.Lab.Topology.Nodes), len(result.Lab.Topology.Links))
	}
	if spec := result.Lab.Topology.Nodes["spine1"]; spec.Kind != "nokia-sros" {
		t.Errorf("spine1 kind = %q, want nokia-sros", spec.Kind)
	}

	if len(result.Layout.Positions) != 4 {
		t.Errorf("layout positions = %d, want 4", len(result.Layout.Positions))
	}
	if err := result.Layout.Covers(result.Graph); err != nil {
		t.Errorf("layout does not cover graph: %v", err)
	}

	if len(result.Diagram.Nodes) != 4 || len(result.Diagram.Links) != 2 {
		t.Errorf("diagram nodes/links = %d/%d, want 4/2",
			len(result.Diagram.Nodes), len(result.Diagram.Links))
	}
	if result.Diagram.Orientation != "horizontal" {
		t.Errorf("orientation = %q, want horizontal", result.Diagram.Orientation)
	}

	if result.CacheInfo.FetchHit || result.CacheInfo.LayoutHit {
		t.Errorf("CacheInfo = %+v, want no hits without a cache", result.CacheInfo)
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("Execute without a source should fail")
	}
}

func TestRunnerExecuteFetchError(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	fetchErr := errors.New("connection refused")

	_, err := runner.Execute(context.Background(), Options{
		Fetcher: &fakeFetcher{err: fetchErr},
		Logger:  quietLogger(),
	})
	if !errors.Is(err, fetchErr) {
		t.Errorf("Execute error = %v, want wrapped fetch error", err)
	}
}

func TestRunnerExecuteMalformedTopology(t *testing.T) {
	raw := testRaw()
	raw.Links = append(raw.Links, topo.RawLink{
		ANode: "spine1", APort: "1/1/3", BNode: "ghost", BPort: "eth0",
	})

	runner := NewRunner(nil, nil, quietLogger())
	_, err := runner.Execute(context.Background(), Options{
		Fetcher: &fakeFetcher{raw: raw},
		Logger:  quietLogger(),
	})

	var malformed *topo.MalformedTopologyError
	if !errors.As(err, &malformed) {
		t.Fatalf("Execute error = %v, want MalformedTopologyError", err)
	}
	if malformed.Device != "ghost" {
		t.Errorf("Device = %q, want ghost", malformed.Device)
	}
}

func TestRunnerFetchFromFile(t *testing.T) {
	raw := testRaw()
	raw.Source = ""
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := topo.WriteRawFile(raw, path); err != nil {
		t.Fatalf("WriteRawFile: %v", err)
	}

	runner := NewRunner(nil, nil, quietLogger())
	got, hit, err := runner.FetchWithCacheInfo(context.Background(), Options{
		InputFile: path,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatalf("FetchWithCacheInfo: %v", err)
	}
	if hit {
		t.Error("file reads should never count as cache hits")
	}
	if got.Source != path {
		t.Errorf("Source = %q, want input path", got.Source)
	}
	if len(got.Links) != 3 {
		t.Errorf("links = %d, want 3", len(got.Links))
	}
}

func TestRunnerFetchFromFileMissing(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	_, _, err := runner.FetchWithCacheInfo(context.Background(), Options{
		InputFile: filepath.Join(t.TempDir(), "missing.json"),
		Logger:    quietLogger(),
	})
	if err == nil {
		t.Error("missing input file should fail")
	}
}

func TestRunnerLayoutCaching(t *testing.T) {
	dir := t.TempDir()
	fileCache, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fileCache, nil, quietLogger())
	defer runner.Close()

	ctx := context.Background()
	g, _, err := runner.Normalize(ctx, testRaw(), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	opts := Options{Logger: quietLogger()}
	first, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		t.Fatalf("first layout: %v", err)
	}
	if hit {
		t.Error("first layout should miss the cache")
	}

	second, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if !hit {
		t.Error("second layout should hit the cache")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached layout differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	// Different options key differently
	vertical := Options{Orientation: "vertical", Logger: quietLogger()}
	_, hit, err = runner.ComputeLayoutWithCacheInfo(ctx, g, vertical)
	if err != nil {
		t.Fatalf("vertical layout: %v", err)
	}
	if hit {
		t.Error("different orientation should miss the cache")
	}
}

func TestRunnerExecuteLayoutCacheAcrossRuns(t *testing.T) {
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fileCache, nil, quietLogger())
	defer runner.Close()

	opts := Options{
		Fetcher: &fakeFetcher{raw: testRaw(), cached: true},
		Logger:  quietLogger(),
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first run should compute the layout")
	}
	if !first.CacheInfo.FetchHit {
		t.Error("fetcher cache hit should be reported")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should reuse the cached layout")
	}
	if second.GraphHash != first.GraphHash {
		t.Errorf("GraphHash changed across runs: %q vs %q", first.GraphHash, second.GraphHash)
	}
}

// recordingHooks counts pipeline stage events.
type recordingHooks struct {
	observability.NoopPipelineHooks
	fetchStarts        int
	fetchCompletes     int
	normalizeCompletes int
	layoutCompletes    int
	exportCompletes    int
	exportFormats      []string
}

func (h *recordingHooks) OnFetchStart(ctx context.Context, server, network string) {
	h.fetchStarts++
}

func (h *recordingHooks) OnFetchComplete(ctx context.Context, server, network string, linkCount int, duration time.Duration, err error) {
	h.fetchCompletes++
}

func (h *recordingHooks) OnNormalizeComplete(ctx context.Context, nodeCount, linkCount int, duration time.Duration, err error) {
	h.normalizeCompletes++
}

func (h *recordingHooks) OnLayoutComplete(ctx context.Context, orientation string, duration time.Duration, err error) {
	h.layoutCompletes++
}

func (h *recordingHooks) OnExportComplete(ctx context.Context, formats []string, duration time.Duration, err error) {
	h.exportCompletes++
	h.exportFormats = append(h.exportFormats, formats...)
}

func TestRunnerEmitsPipelineHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := NewRunner(nil, nil, quietLogger())
	_, err := runner.Execute(context.Background(), Options{
		Fetcher: &fakeFetcher{raw: testRaw()},
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if hooks.fetchStarts != 1 || hooks.fetchCompletes != 1 {
		t.Errorf("fetch events = %d/%d, want 1/1", hooks.fetchStarts, hooks.fetchCompletes)
	}
	if hooks.normalizeCompletes != 1 {
		t.Errorf("normalize completes = %d, want 1", hooks.normalizeCompletes)
	}
	if hooks.layoutCompletes != 1 {
		t.Errorf("layout completes = %d, want 1", hooks.layoutCompletes)
	}
	if hooks.exportCompletes != 2 {
		t.Errorf("export completes = %d, want 2 (lab and coords)", hooks.exportCompletes)
	}
	if !reflect.DeepEqual(hooks.exportFormats, []string{FormatLab, FormatCoords}) {
		t.Errorf("export formats = %v, want [%s %s]", hooks.exportFormats, FormatLab, FormatCoords)
	}
}

func TestRunnerClose(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	if err := runner.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
