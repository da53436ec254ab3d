package artifact

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/heartmarshall/syngdict/internal/domain"
)

// Load reads the build in dir, verifying every artifact against the
// manifest before decoding it.
func Load(dir string) (domain.Build, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return domain.Build{}, err
	}

	dict := domain.NewDictionary()

	var entries []domain.WordEntry
	if err := readArtifact(dir, m, dataName, &entries); err != nil {
		return domain.Build{}, err
	}
	for _, e := range entries {
		dict.Data[e.WordID] = e
	}

	for _, kind := range domain.AllIndexKinds {
		var postings []domain.Posting
		if err := readArtifact(dir, m, string(kind), &postings); err != nil {
			return domain.Build{}, err
		}
		ix := dict.Index(kind)
		for _, p := range postings {
			ix[p.Key] = p.IDs
		}
	}

	if len(dict.Data) != m.Entries {
		return domain.Build{}, fmt.Errorf("manifest lists %d entries, data has %d: %w", m.Entries, len(dict.Data), ErrChecksumMismatch)
	}
	if err := dict.CheckIntegrity(); err != nil {
		return domain.Build{}, fmt.Errorf("load %s: %w", dir, err)
	}

	return domain.Build{
		ID:         m.BuildID,
		CreatedAt:  m.CreatedAt,
		Version:    m.Version,
		Dictionary: dict,
	}, nil
}

func readArtifact(dir string, m *Manifest, name string, v any) error {
	info, ok := m.Artifact(name)
	if !ok {
		return fmt.Errorf("artifact %s missing from manifest: %w", name, domain.ErrNotFound)
	}

	raw, err := os.ReadFile(filepath.Join(dir, info.File))
	if err != nil {
		return fmt.Errorf("read %s: %w", info.File, err)
	}
	sum := blake3.Sum256(raw)
	if int64(len(raw)) != info.Size || hex.EncodeToString(sum[:]) != info.BLAKE3 {
		return fmt.Errorf("%s: %w", info.File, ErrChecksumMismatch)
	}

	var r io.Reader = bytes.NewReader(raw)
	switch m.Compression {
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("open xz %s: %w", info.File, err)
		}
		r = xr
	case CompressionNone:
	default:
		return fmt.Errorf("compression %q: %w", m.Compression, domain.ErrValidation)
	}

	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", info.File, err)
	}
	return nil
}
