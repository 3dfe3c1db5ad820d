package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/Davide-02/certifi-ai/internal/extract/adapters"
	"github.com/Davide-02/certifi-ai/internal/model"
	"github.com/Davide-02/certifi-ai/internal/textutil"
)

// ErrFileTooLarge is returned for inputs above the configured size cap
var ErrFileTooLarge = errors.New("file exceeds size limit")

// Document is one input file read into memory
type Document struct {
	Path     string
	Data     []byte
	FileHash string // hex sha256 of Data
	Text     string // Normalized text from the matching adapter
	Adapter  string
	Table    *model.CompensationTable // Optional monetary hints
}

// Loader reads a file once and derives its text and table hints from the
// same bytes.
type Loader struct {
	registry *adapters.Registry
	tables   adapters.TableSource
	maxBytes int64
	logger   *slog.Logger
}

// NewLoader creates a loader. A nil registry uses the built-in adapters, a
// nil table source disables table hints, maxBytes <= 0 means no cap.
func NewLoader(registry *adapters.Registry, tables adapters.TableSource, maxBytes int64, logger *slog.Logger) *Loader {
	if registry == nil {
		registry = adapters.NewRegistry()
	}
	if tables == nil {
		tables = adapters.NoopTables{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{registry: registry, tables: tables, maxBytes: maxBytes, logger: logger}
}

// Load reads path and gathers its text and table hints concurrently.
// Table failures are logged and dropped; text failures are returned.
func (l *Loader) Load(ctx context.Context, path string) (*Document, error) {
	data, err := l.read(path)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	doc := &Document{
		Path:     path,
		Data:     data,
		FileHash: hex.EncodeToString(sum[:]),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, adapter, err := l.registry.Text(gctx, path, data)
		if err != nil {
			return fmt.Errorf("extract text: %w", err)
		}
		doc.Text = textutil.Normalize(text)
		doc.Adapter = adapter
		return nil
	})
	g.Go(func() error {
		table, err := l.tables.Compensation(gctx, path, data)
		if err != nil {
			l.logger.Warn("compensation table ignored", "path", path, "error", err)
			return nil
		}
		doc.Table = table
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (l *Loader) read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, info.Size(), l.maxBytes)
	}

	var r io.Reader = f
	if l.maxBytes > 0 {
		r = io.LimitReader(f, l.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, l.maxBytes)
	}
	return data, nil
}
