package artifact

import (
	"context"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// PhaseName is the pipeline phase the Writer runs as.
const PhaseName = "write"

// Writer writes a build as data.dictionary, one <index>.dictionary per
// inverted index, and manifest.json.
type Writer struct {
	dir         string
	compression string
	log         *slog.Logger
}

// NewWriter creates a Writer for dir. compression is CompressionXZ or
// CompressionNone.
func NewWriter(dir, compression string, log *slog.Logger) *Writer {
	return &Writer{dir: dir, compression: compression, log: log}
}

func (w *Writer) Name() string { return PhaseName }

// Write replaces the artifacts in the output directory. The old manifest is
// removed first and the new one written only after every artifact, so an
// interrupted run leaves no manifest. It returns the number of records
// written.
func (w *Writer) Write(ctx context.Context, build domain.Build) (int, error) {
	if w.compression != CompressionXZ && w.compression != CompressionNone {
		return 0, fmt.Errorf("compression %q: %w", w.compression, domain.ErrValidation)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w: %w", domain.ErrSerialization, err)
	}
	if err := os.Remove(filepath.Join(w.dir, ManifestFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove stale manifest: %w: %w", domain.ErrSerialization, err)
	}

	dict := build.Dictionary
	manifest := &Manifest{
		BuildID:     build.ID,
		CreatedAt:   build.CreatedAt,
		Version:     build.Version,
		Compression: w.compression,
		Entries:     len(dict.Data),
	}

	entries := dict.Entries()
	info, err := w.writeArtifact(dataName, len(entries), entries)
	if err != nil {
		return 0, err
	}
	manifest.Artifacts = append(manifest.Artifacts, info)
	total := len(entries)

	for _, kind := range domain.AllIndexKinds {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		postings := dict.Index(kind).Postings()
		info, err := w.writeArtifact(string(kind), len(postings), postings)
		if err != nil {
			return total, err
		}
		manifest.Artifacts = append(manifest.Artifacts, info)
		total += len(postings)
	}

	if err := writeManifest(w.dir, manifest); err != nil {
		return total, fmt.Errorf("%w: %w", domain.ErrSerialization, err)
	}

	w.log.Debug("artifacts written",
		slog.String("dir", w.dir),
		slog.Int("files", len(manifest.Artifacts)),
		slog.Int("records", total),
	)
	return total, nil
}

// writeArtifact gob-encodes v into <dir>/<name>.dictionary through the
// configured compression, hashing the bytes as they hit the disk.
func (w *Writer) writeArtifact(name string, records int, v any) (ArtifactInfo, error) {
	file := fileName(name)
	fail := func(err error) (ArtifactInfo, error) {
		return ArtifactInfo{}, fmt.Errorf("write %s: %w: %w", file, domain.ErrSerialization, err)
	}

	tmp, err := os.CreateTemp(w.dir, "."+file+"-*")
	if err != nil {
		return fail(err)
	}
	defer os.Remove(tmp.Name())

	h := blake3.New()
	counter := &countingWriter{}
	sink := io.MultiWriter(tmp, h, counter)

	var enc io.WriteCloser = nopWriteCloser{sink}
	if w.compression == CompressionXZ {
		xw, err := xz.NewWriter(sink)
		if err != nil {
			tmp.Close()
			return fail(fmt.Errorf("create xz writer: %w", err))
		}
		enc = xw
	}

	if err := gob.NewEncoder(enc).Encode(v); err != nil {
		tmp.Close()
		return fail(err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.dir, file)); err != nil {
		return fail(err)
	}

	return ArtifactInfo{
		Name:    name,
		File:    file,
		Records: records,
		Size:    counter.n,
		BLAKE3:  hex.EncodeToString(h.Sum(nil)),
	}, nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
