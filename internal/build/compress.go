package build

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// BrotliSuffix is appended to the name of a pre-compressed file.
const BrotliSuffix = ".br"

var compressible = sets.New(".html", ".css", ".js", ".svg", ".json", ".xml", ".txt")

// Compress returns data brotli-compressed at the best level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressTree writes a .br file next to every text asset below root. Files
// that do not get smaller are left uncompressed and stale .br files removed.
func CompressTree(ctx context.Context, root string, concurrency int) error {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && compressible.Has(strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errors.FileSystemError("scan output for compression").WithCause(err).WithContext("root", root).Build()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return compressFile(file)
		})
	}
	return g.Wait()
}

func compressFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return errors.FileSystemError("read file for compression").WithCause(err).WithContext("path", path).Build()
	}
	packed, err := Compress(data)
	if err != nil {
		return errors.InternalError("brotli compression failed").WithCause(err).WithContext("path", path).Build()
	}
	target := path + BrotliSuffix
	if len(packed) >= len(data) {
		_ = os.Remove(target)
		return nil
	}
	return writeFile(target, packed)
}
