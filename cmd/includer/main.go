// Command includer prerenders a page: it runs the include loader against the
// host HTML file on disk, exactly as the browser would at load time, and writes
// the composed page. Scripts are activated but not executed; the browser runs
// them when it loads the prerendered page. Host page scripts marked with the
// data-nojs-include attribute start the loader and are left out of the output.
//
// Usage:
//
//	includer -config page.hcl [-out prerendered.html] [-strict] [-v]
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/vcrobe/nojs-include/config"
	"github.com/vcrobe/nojs-include/dom"
	"github.com/vcrobe/nojs-include/dom/htmldom"
	"github.com/vcrobe/nojs-include/fetch"
	"github.com/vcrobe/nojs-include/include"
)

// errComponentsFailed is returned in -strict mode when any component failed.
var errComponentsFailed = errors.New("one or more components failed to load")

func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "includer:", err)
		os.Exit(1)
	}
}

// run encapsulates the command so it can be tested without exiting.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("includer", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "page.hcl", "The path to the HCL page file.")
	outPath := flags.String("out", "", "Where to write the composed page. Overrides the page file's output; \"-\" means stdout.")
	strict := flags.Bool("strict", false, "Exit with an error if any component fails to load.")
	verbose := flags.Bool("v", false, "Enable debug logging.")
	if err := flags.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// 1. Load the page file
	page, err := config.LoadFile(*configPath)
	if err != nil {
		return err
	}
	siteDir := filepath.Join(page.Dir(), filepath.Dir(page.Page))
	hostPath := filepath.Join(page.Dir(), page.Page)

	// 2. Parse the host page
	src, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("failed to read host page: %w", err)
	}
	doc, err := htmldom.Parse(bytes.NewReader(src))
	if err != nil {
		return err
	}

	// 3. Run the loader; fragments resolve relative to the host page
	loader := include.NewLoader(doc, &fetch.FS{FS: os.DirFS(siteDir)}, logger)
	started := time.Now()
	report, err := loader.Run(ctx, &page.Include)
	if err != nil {
		return err
	}
	logger.Info("Composed page", "page", hostPath,
		"components", len(report.Results), "failed", len(report.Failed()),
		"elapsed", time.Since(started))

	// 4. Drop the browser bootstrap; the components are already in place
	removed := 0
	for _, el := range []dom.Element{doc.Head(), doc.Body()} {
		if el == nil {
			continue
		}
		n, err := include.RemoveBootstrap(el)
		if err != nil {
			return err
		}
		removed += n
	}
	logger.Debug("Removed bootstrap scripts", "count", removed)

	// 5. Write the result
	var out bytes.Buffer
	if err := doc.Render(&out); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	dest := page.Output
	if dest != "" {
		dest = filepath.Join(page.Dir(), dest)
	}
	if *outPath != "" {
		dest = *outPath
	}
	if dest == "" || dest == "-" {
		if _, err := stdout.Write(out.Bytes()); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := atomic.WriteFile(dest, &out); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		logger.Info("Wrote page", "path", dest)
	}

	if *strict && len(report.Failed()) > 0 {
		return errComponentsFailed
	}
	return nil
}
