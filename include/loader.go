package include

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vcrobe/nojs-include/dom"
)

// LocalServerHint is attached to every load failure. The usual cause is a
// page opened straight from disk (file://), where fragment requests fail.
const LocalServerHint = "if the page was opened from a file:// URL, serve it over HTTP instead " +
	"(e.g. `includeserve -dir .`, then open http://localhost:8000/index.html)"

// Result records what happened to one component.
type Result struct {
	Descriptor Descriptor
	Styles     int   // style elements hoisted into the head
	Nodes      int   // top-level nodes inserted into the container
	Scripts    int   // scripts activated
	Err        error // nil when the component loaded fully
}

// Report summarises a Run.
type Report struct {
	// Containers is the number of placeholders created.
	Containers int

	// Results has one entry per component, in configuration order.
	Results []Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Loader provisions containers and loads fragments into them.
type Loader struct {
	doc     dom.Document
	fetcher Fetcher
	logger  *slog.Logger

	// FetchTimeout bounds each fragment request. Zero means no timeout: a
	// hung request stalls every component after it.
	FetchTimeout time.Duration
}

// NewLoader creates a loader for doc. A nil logger falls back to slog.Default().
func NewLoader(doc dom.Document, fetcher Fetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		doc:     doc,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run provisions every container, then loads the components one at a time in
// configuration order, each to completion before the next starts.
//
// The returned error is non-nil only for fatal conditions (ErrConfigMissing,
// ErrRootMissing), which stop the run before any fragment is requested.
// Failures of individual components are logged and recorded in the Report;
// they never stop the remaining components.
func (l *Loader) Run(ctx context.Context, cfg *Config) (*Report, error) {
	if cfg == nil {
		l.logger.Error(ErrConfigMissing.Error())
		return nil, ErrConfigMissing
	}

	containers, err := Provision(l.doc, cfg)
	if err != nil {
		l.logger.Error("Failed to create component containers", "root", cfg.Root(), "error", err)
		return nil, err
	}
	l.logger.Debug("Created component containers", "root", cfg.Root(), "count", len(containers))

	report := &Report{
		Containers: len(containers),
		Results:    make([]Result, 0, len(cfg.Components)),
	}
	for _, d := range cfg.Components {
		res := l.Load(ctx, cfg.Dir(), d)
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// Load retrieves one component's fragment from dir and distributes it into
// its container and the document head. Errors are logged and returned in the
// Result; work already done for the component is not rolled back.
func (l *Loader) Load(ctx context.Context, dir string, d Descriptor) Result {
	res := Result{Descriptor: d}
	res.Err = l.load(ctx, dir, d, &res)

	switch {
	case res.Err == nil:
		l.logger.Debug("Loaded component", "component", d.Name,
			"styles", res.Styles, "nodes", res.Nodes, "scripts", res.Scripts)
	case errors.Is(res.Err, ErrPlaceholderMissing):
		if d.Optional {
			l.logger.Debug("Skipped optional component without container", "component", d.Name, "container", d.ContainerID)
		} else {
			l.logger.Warn("Discarded component, container not found", "component", d.Name, "container", d.ContainerID)
		}
	default:
		l.logger.Error("Error loading component", "component", d.Name, "error", res.Err, "hint", LocalServerHint)
	}
	return res
}

func (l *Loader) load(ctx context.Context, dir string, d Descriptor, res *Result) (err error) {
	defer l.guard(d.Name, &err)

	body, err := l.retrieve(ctx, dir, d)
	if err != nil {
		return err
	}

	container, ok := l.doc.ElementByID(d.ContainerID)
	if !ok {
		return fmt.Errorf("%w: #%s", ErrPlaceholderMissing, d.ContainerID)
	}

	fragment, err := l.doc.ParseHTML(body)
	if err != nil {
		return fmt.Errorf("failed to parse component %s: %w", d.Name, err)
	}

	if res.Styles, err = HoistStyles(l.doc, fragment.Root); err != nil {
		return err
	}
	if res.Nodes, err = Transplant(container, fragment.Body); err != nil {
		return err
	}
	if res.Scripts, err = ActivateScripts(l.doc, container); err != nil {
		return err
	}
	return nil
}

func (l *Loader) retrieve(ctx context.Context, dir string, d Descriptor) (string, error) {
	p := d.Path(dir)
	if l.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.FetchTimeout)
		defer cancel()
	}

	resp, err := l.fetcher.Fetch(ctx, p)
	if err != nil {
		return "", &FetchError{Name: d.Name, Path: p, Err: err}
	}
	if !resp.OK() {
		return "", &StatusError{Name: d.Name, Path: p, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
