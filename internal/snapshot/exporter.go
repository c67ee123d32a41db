// Package snapshot dumps the whole catalog to a timestamped file on disk.
//
// # Usage
//
//	exp, err := snapshot.NewExporter(catalog, "./snapshots", snapshot.FormatYAML)
//	result, err := exp.Export(ctx)
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/services"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// timestampLayout sorts lexically and contains no characters that are
// awkward in file names.
const timestampLayout = "20060102T150405.000Z"

// maxNameAttempts bounds the numbered suffixes tried when a snapshot with
// the same timestamp already exists.
const maxNameAttempts = 100

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format %q", s)
	}
}

// Observer receives the outcome of every export. *metrics.Metrics implements it.
type Observer interface {
	ObserveSnapshot(books int, duration time.Duration, err error)
}

// Document is the on-disk layout of a snapshot.
type Document struct {
	GeneratedAt time.Time       `json:"generatedAt" yaml:"generatedAt"`
	Count       int             `json:"count" yaml:"count"`
	Books       []entities.Book `json:"books" yaml:"books"`
}

// Result describes a written snapshot.
type Result struct {
	Path  string
	Books int
}

type Exporter struct {
	books    services.BookLister
	dir      string
	format   Format
	observer Observer
	now      func() time.Time
}

func NewExporter(books services.BookLister, dir string, format Format) (*Exporter, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is not set")
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	return &Exporter{
		books:  books,
		dir:    dir,
		format: format,
		now:    time.Now,
	}, nil
}

// SetObserver attaches an observer notified after every Export.
func (e *Exporter) SetObserver(o Observer) {
	e.observer = o
}

// Format returns the default format used by Export.
func (e *Exporter) Format() Format {
	return e.format
}

// Export writes the catalog in the exporter's default format.
func (e *Exporter) Export(ctx context.Context) (Result, error) {
	return e.ExportAs(ctx, e.format)
}

// ExportAs writes the catalog in the given format. The file appears under
// its final name only once it is complete, and exports sharing a timestamp
// get numbered names instead of overwriting each other.
func (e *Exporter) ExportAs(ctx context.Context, format Format) (result Result, err error) {
	start := e.now()
	if e.observer != nil {
		defer func() {
			e.observer.ObserveSnapshot(result.Books, e.now().Sub(start), err)
		}()
	}

	books, err := e.books.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}
	if books == nil {
		books = []entities.Book{}
	}

	doc := Document{
		GeneratedAt: start.UTC(),
		Count:       len(books),
		Books:       books,
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, ".catalog-*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, format, doc); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close snapshot file: %w", err)
	}
	path, err := e.publish(tmp.Name(), doc.GeneratedAt, format)
	if err != nil {
		return Result{}, fmt.Errorf("publish snapshot: %w", err)
	}

	return Result{Path: path, Books: len(books)}, nil
}

// publish links the finished temp file under the first free name for ts.
// An existing snapshot is never replaced.
func (e *Exporter) publish(tmp string, ts time.Time, format Format) (string, error) {
	stamp := ts.Format(timestampLayout)
	for i := 0; i < maxNameAttempts; i++ {
		name := fmt.Sprintf("catalog-%s.%s", stamp, format)
		if i > 0 {
			name = fmt.Sprintf("catalog-%s-%d.%s", stamp, i, format)
		}
		path := filepath.Join(e.dir, name)
		err := os.Link(tmp, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free snapshot name for %s", stamp)
}

func encode(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// Read decodes a snapshot file written by Export, choosing the decoder by
// file extension.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case string(FormatYAML), "yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return doc, nil
}
