//go:build !wasm
// +build !wasm

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "includewasm must be built with GOOS=js GOARCH=wasm")
	os.Exit(2)
}
