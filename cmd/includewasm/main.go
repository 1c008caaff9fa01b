//go:build js || wasm
// +build js wasm

// Command includewasm is the browser build of the include loader. It exposes
// nojsInclude.init(pageConfig) to the host page.
package main

import (
	"context"
	"errors"
	"log/slog"
	"syscall/js"

	"github.com/vcrobe/nojs-include/console"
	"github.com/vcrobe/nojs-include/dom/jsdom"
	"github.com/vcrobe/nojs-include/fetch"
	"github.com/vcrobe/nojs-include/include"
)

var errNoDocument = errors.New("no document: nojsInclude must run in a page")

func main() {
	// 1. Route diagnostics to the browser console
	logger := slog.New(console.NewHandler(&slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// 2. Expose the entry point; the page calls it once wasm has started
	initFunc := js.FuncOf(func(this js.Value, args []js.Value) any {
		var raw js.Value
		if len(args) > 0 {
			raw = args[0]
		}
		return newPromise(func(resolve, reject func(any)) {
			report, err := start(context.Background(), raw, logger)
			if err != nil {
				reject(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve(js.ValueOf(summary(report)))
		})
	})
	js.Global().Set("nojsInclude", js.ValueOf(map[string]any{"init": initFunc}))

	// Keep the Go program running
	select {}
}

// start decodes the page config, waits for the document and runs the loader.
func start(ctx context.Context, raw js.Value, logger *slog.Logger) (*include.Report, error) {
	cfg, err := decodeConfig(stringify(raw))
	if err != nil {
		logger.Error("Include loader not started", "error", err)
		return nil, err
	}

	doc, ok := jsdom.Global()
	if !ok {
		logger.Error("Include loader not started", "error", errNoDocument)
		return nil, errNoDocument
	}
	waitForDOM(doc)

	fetcher, err := fetch.NewHTTP(js.Global().Get("location").Get("href").String(), nil)
	if err != nil {
		logger.Error("Include loader not started", "error", err)
		return nil, err
	}
	return include.NewLoader(doc, fetcher, logger).Run(ctx, cfg)
}

func stringify(v js.Value) string {
	if v.IsUndefined() || v.IsNull() {
		return ""
	}
	return js.Global().Get("JSON").Call("stringify", v).String()
}

// waitForDOM blocks until DOMContentLoaded when the document is still loading.
func waitForDOM(doc *jsdom.Document) {
	if doc.ReadyState() != "loading" {
		return
	}
	ready := make(chan struct{})
	var onReady js.Func
	onReady = js.FuncOf(func(this js.Value, args []js.Value) any {
		onReady.Release()
		close(ready)
		return nil
	})
	doc.Value().Call("addEventListener", "DOMContentLoaded", onReady)
	<-ready
}

// newPromise runs work in its own goroutine; blocking inside a js.FuncOf
// callback would stall the event loop that fetch responses arrive on.
func newPromise(work func(resolve, reject func(any))) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go work(
			func(v any) { resolve.Invoke(v) },
			func(v any) { reject.Invoke(v) },
		)
		executor.Release()
		return nil
	})
	return js.Global().Get("Promise").New(executor)
}
