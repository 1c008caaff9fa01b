package fetch

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/vcrobe/nojs-include/include"
)

// Compile-time assertion to ensure FS implements the include.Fetcher interface.
var _ include.Fetcher = (*FS)(nil)

// FS serves fragments from a file system rooted at the page's directory,
// answering with the status codes a static file server would use.
type FS struct {
	FS fs.FS
}

// Fetch implements include.Fetcher.
func (f *FS) Fetch(ctx context.Context, p string) (*include.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := path.Clean(strings.TrimPrefix(p, "/"))
	if !fs.ValidPath(name) {
		return &include.Response{StatusCode: http.StatusBadRequest}, nil
	}

	data, err := fs.ReadFile(f.FS, name)
	switch {
	case err == nil:
		return &include.Response{StatusCode: http.StatusOK, Body: string(data)}, nil
	case errors.Is(err, fs.ErrNotExist):
		return &include.Response{StatusCode: http.StatusNotFound}, nil
	case errors.Is(err, fs.ErrPermission):
		return &include.Response{StatusCode: http.StatusForbidden}, nil
	}
	return nil, err
}
