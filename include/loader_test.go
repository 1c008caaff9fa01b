package include

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vcrobe/nojs-include/dom"
	"github.com/vcrobe/nojs-include/dom/htmldom"
)

const testPage = `<!DOCTYPE html><html><head><title>t</title></head><body><div id="components-root"></div></body></html>`

// stubFetcher serves fragments from a map and records every request.
type stubFetcher struct {
	files map[string]string
	calls []string

	// onFetch, if set, runs before each response is returned.
	onFetch func(path string)
}

func (f *stubFetcher) Fetch(ctx context.Context, path string) (*Response, error) {
	f.calls = append(f.calls, path)
	if f.onFetch != nil {
		f.onFetch(path)
	}
	body, ok := f.files[path]
	if !ok {
		return &Response{StatusCode: http.StatusNotFound, Body: "not found"}, nil
	}
	return &Response{StatusCode: http.StatusOK, Body: body}, nil
}

func newTestDoc(t *testing.T, page string) *htmldom.Document {
	t.Helper()
	doc, err := htmldom.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func headStyles(doc *htmldom.Document) []string {
	var out []string
	for _, s := range doc.Head().QueryAll("style") {
		out = append(out, s.TextContent())
	}
	return out
}

func inner(t *testing.T, doc *htmldom.Document, id string) string {
	t.Helper()
	el, ok := doc.ElementByID(id)
	if !ok {
		t.Fatalf("Expected #%s to exist", id)
	}
	return htmldom.InnerHTML(el)
}

// TestRun_HeaderFooterScenario covers the canonical two-component page: a
// header with a style and a footer with a script.
func TestRun_HeaderFooterScenario(t *testing.T) {
	// Arrange
	doc := newTestDoc(t, testPage)
	var ran []htmldom.Script
	doc.OnScript = func(s htmldom.Script) { ran = append(ran, s) }

	fetcher := &stubFetcher{files: map[string]string{
		"html-includes/header.html": `<style>.h{color:red}</style><div>Header</div>`,
		"html-includes/footer.html": `<div>Footer</div><script>window.footerLoaded=true</script>`,
	}}
	cfg := &Config{Components: []Descriptor{
		{Name: "header", ContainerID: "c1"},
		{Name: "footer", ContainerID: "c2"},
	}}
	logger, _ := newTestLogger()

	// Act
	report, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg)

	// Assert
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Failed()) != 0 {
		t.Fatalf("Expected no failures, got %v", report.Failed())
	}
	if diff := cmp.Diff([]string{".h{color:red}"}, headStyles(doc)); diff != "" {
		t.Errorf("Head styles mismatch (-want +got):\n%s", diff)
	}
	if got := inner(t, doc, "c1"); got != "<div>Header</div>" {
		t.Errorf("Expected #c1 to hold the header markup, got %q", got)
	}
	if got := inner(t, doc, "c2"); got != "<div>Footer</div><script>window.footerLoaded=true</script>" {
		t.Errorf("Expected #c2 to hold the footer markup, got %q", got)
	}
	if diff := cmp.Diff([]htmldom.Script{{Text: "window.footerLoaded=true"}}, ran); diff != "" {
		t.Errorf("Executed scripts mismatch (-want +got):\n%s", diff)
	}
}

// TestRun_ContainersCreatedBeforeFetching verifies that every placeholder
// exists, in order, before the first fragment request.
func TestRun_ContainersCreatedBeforeFetching(t *testing.T) {
	doc := newTestDoc(t, testPage)
	root, _ := doc.ElementByID("components-root")

	var seenAtFirstFetch []string
	fetcher := &stubFetcher{files: map[string]string{}}
	fetcher.onFetch = func(string) {
		if seenAtFirstFetch != nil {
			return
		}
		seenAtFirstFetch = []string{}
		for _, c := range root.ChildNodes() {
			seenAtFirstFetch = append(seenAtFirstFetch, c.(dom.Element).ID())
		}
	}
	cfg := &Config{Components: []Descriptor{
		{Name: "a", ContainerID: "ca"},
		{Name: "b", ContainerID: "cb"},
		{Name: "c", ContainerID: "cc"},
	}}
	logger, _ := newTestLogger()

	report, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Containers != 3 {
		t.Errorf("Expected 3 containers, got %d", report.Containers)
	}
	if diff := cmp.Diff([]string{"ca", "cb", "cc"}, seenAtFirstFetch); diff != "" {
		t.Errorf("Containers at first fetch mismatch (-want +got):\n%s", diff)
	}
	want := []string{"html-includes/a.html", "html-includes/b.html", "html-includes/c.html"}
	if diff := cmp.Diff(want, fetcher.calls); diff != "" {
		t.Errorf("Fetch order mismatch (-want +got):\n%s", diff)
	}
}

// TestRun_FailedComponentDoesNotStopOthers verifies per-component isolation.
func TestRun_FailedComponentDoesNotStopOthers(t *testing.T) {
	doc := newTestDoc(t, testPage)
	fetcher := &stubFetcher{files: map[string]string{
		"html-includes/one.html":   `<p>one</p>`,
		"html-includes/three.html": `<p>three</p>`,
	}}
	cfg := &Config{Components: []Descriptor{
		{Name: "one", ContainerID: "c1"},
		{Name: "missing", ContainerID: "c2"},
		{Name: "three", ContainerID: "c3"},
	}}
	logger, logs := newTestLogger()

	report, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := inner(t, doc, "c1"); got != "<p>one</p>" {
		t.Errorf("Expected #c1 content, got %q", got)
	}
	if got := inner(t, doc, "c2"); got != "" {
		t.Errorf("Expected #c2 to stay empty, got %q", got)
	}
	if got := inner(t, doc, "c3"); got != "<p>three</p>" {
		t.Errorf("Expected #c3 content, got %q", got)
	}

	failed := report.Failed()
	if len(failed) != 1 || failed[0].Descriptor.Name != "missing" {
		t.Fatalf("Expected only 'missing' to fail, got %v", failed)
	}
	var statusErr *StatusError
	if !errors.As(failed[0].Err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected a 404 StatusError, got %v", failed[0].Err)
	}
	if !strings.Contains(logs.String(), "component=missing") || !strings.Contains(logs.String(), "hint=") {
		t.Errorf("Expected failure log with component name and hint, got:\n%s", logs.String())
	}
}

func TestRun_TransportError(t *testing.T) {
	doc := newTestDoc(t, testPage)
	boom := errors.New("connection refused")
	fetcher := FetcherFunc(func(ctx context.Context, path string) (*Response, error) {
		return nil, boom
	})
	cfg := &Config{Components: []Descriptor{{Name: "x", ContainerID: "cx"}}}
	logger, _ := newTestLogger()

	report, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var fetchErr *FetchError
	if !errors.As(report.Results[0].Err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %v", report.Results[0].Err)
	}
	if !errors.Is(fetchErr, boom) || fetchErr.Path != "html-includes/x.html" {
		t.Errorf("Unexpected FetchError: %+v", fetchErr)
	}
}

// TestRun_RootMissing verifies nothing is created or fetched without a root.
func TestRun_RootMissing(t *testing.T) {
	doc := newTestDoc(t, `<html><body><div id="elsewhere"></div></body></html>`)
	fetcher := &stubFetcher{files: map[string]string{}}
	cfg := &Config{Components: []Descriptor{{Name: "a", ContainerID: "ca"}}}
	logger, logs := newTestLogger()

	report, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg)

	if !errors.Is(err, ErrRootMissing) {
		t.Fatalf("Expected ErrRootMissing, got %v", err)
	}
	if report != nil {
		t.Errorf("Expected no report, got %+v", report)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("Expected zero fetches, got %v", fetcher.calls)
	}
	if _, ok := doc.ElementByID("ca"); ok {
		t.Error("Expected no container to be created")
	}
	if strings.Count(logs.String(), "level=ERROR") != 1 {
		t.Errorf("Expected exactly one error log, got:\n%s", logs.String())
	}
}

func TestRun_ConfigMissing(t *testing.T) {
	doc := newTestDoc(t, testPage)
	fetcher := &stubFetcher{}
	logger, _ := newTestLogger()

	_, err := NewLoader(doc, fetcher, logger).Run(context.Background(), nil)

	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("Expected ErrConfigMissing, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("Expected zero fetches, got %v", fetcher.calls)
	}
}

// TestRun_StyleOrderAcrossComponents verifies head styles follow component
// order, then order within each fragment, including nested styles.
func TestRun_StyleOrderAcrossComponents(t *testing.T) {
	doc := newTestDoc(t, testPage)
	fetcher := &stubFetcher{files: map[string]string{
		"html-includes/a.html": `<style media="print">.a1{}</style><div><style>.a2{}</style></div>`,
		"html-includes/b.html": `<style>.b1{}</style><p>b</p><style>.b2{}</style>`,
	}}
	cfg := &Config{Components: []Descriptor{
		{Name: "a", ContainerID: "ca"},
		{Name: "b", ContainerID: "cb"},
	}}
	logger, _ := newTestLogger()

	if _, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if diff := cmp.Diff([]string{".a1{}", ".a2{}", ".b1{}", ".b2{}"}, headStyles(doc)); diff != "" {
		t.Errorf("Head styles mismatch (-want +got):\n%s", diff)
	}
	for _, s := range doc.Head().QueryAll("style") {
		if _, ok := s.Attr("media"); ok {
			t.Error("Expected hoisted styles to carry no attributes")
		}
	}
	if got := inner(t, doc, "cb"); got != "<p>b</p>" {
		t.Errorf("Expected top-level styles to be left out of #cb, got %q", got)
	}
}

// TestRun_LoadingTwiceDuplicatesStyles verifies styles are never deduplicated.
func TestRun_LoadingTwiceDuplicatesStyles(t *testing.T) {
	doc := newTestDoc(t, testPage)
	fetcher := &stubFetcher{files: map[string]string{
		"html-includes/card.html": `<style>.card{}</style><div class="card"></div>`,
	}}
	cfg := &Config{Components: []Descriptor{
		{Name: "card", ContainerID: "k1"},
		{Name: "card", ContainerID: "k2", DataKey: "second"},
	}}
	logger, _ := newTestLogger()

	if _, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if diff := cmp.Diff([]string{".card{}", ".card{}"}, headStyles(doc)); diff != "" {
		t.Errorf("Head styles mismatch (-want +got):\n%s", diff)
	}
}

// TestRun_MissingPlaceholder verifies the decision for containers removed
// before their fragment arrives: reported unless optional, nothing hoisted.
func TestRun_MissingPlaceholder(t *testing.T) {
	doc := newTestDoc(t, testPage)
	root, _ := doc.ElementByID("components-root")
	fetcher := &stubFetcher{files: map[string]string{
		"html-includes/gone.html":     `<style>.gone{}</style><p>gone</p>`,
		"html-includes/optional.html": `<p>optional</p>`,
	}}
	// Drop the containers as soon as the first request goes out.
	fetcher.onFetch = func(string) {
		for _, c := range root.ChildNodes() {
			el := c.(dom.Element)
			el.SetID("renamed-" + el.ID())
		}
		fetcher.onFetch = nil
	}
	cfg := &Config{Components: []Descriptor{
		{Name: "gone", ContainerID: "g"},
		{Name: "optional", ContainerID: "o", Optional: true},
	}}
	logger, logs := newTestLogger()

	report, err := NewLoader(doc, fetcher, logger).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, res := range report.Results {
		if !errors.Is(res.Err, ErrPlaceholderMissing) {
			t.Errorf("Expected ErrPlaceholderMissing for %s, got %v", res.Descriptor.Name, res.Err)
		}
	}
	if got := headStyles(doc); len(got) != 0 {
		t.Errorf("Expected nothing hoisted, got %v", got)
	}
	if strings.Count(logs.String(), "level=WARN") != 1 {
		t.Errorf("Expected exactly one warning (non-optional component), got:\n%s", logs.String())
	}
	if strings.Contains(logs.String(), "level=ERROR") {
		t.Errorf("Expected no error logs, got:\n%s", logs.String())
	}
}

// TestRun_FetchTimeout verifies that a fetch exceeding FetchTimeout fails
// only its own component.
func TestRun_FetchTimeout(t *testing.T) {
	// Arrange
	doc := newTestDoc(t, testPage)
	fetcher := FetcherFunc(func(ctx context.Context, path string) (*Response, error) {
		if strings.Contains(path, "slow") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &Response{StatusCode: http.StatusOK, Body: "<p>fast</p>"}, nil
	})
	cfg := &Config{Components: []Descriptor{
		{Name: "slow", ContainerID: "c1"},
		{Name: "fast", ContainerID: "c2"},
	}}
	logger, _ := newTestLogger()
	loader := NewLoader(doc, fetcher, logger)
	loader.FetchTimeout = 20 * time.Millisecond

	// Act
	report, err := loader.Run(context.Background(), cfg)

	// Assert
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	var fetchErr *FetchError
	if !errors.As(report.Results[0].Err, &fetchErr) || !errors.Is(fetchErr, context.DeadlineExceeded) {
		t.Errorf("Expected FetchError wrapping DeadlineExceeded, got %v", report.Results[0].Err)
	}
	if report.Results[1].Err != nil {
		t.Errorf("Expected the next component to load, got %v", report.Results[1].Err)
	}
	if got := inner(t, doc, "c2"); got != "<p>fast</p>" {
		t.Errorf("Expected #c2 content, got %q", got)
	}
}
