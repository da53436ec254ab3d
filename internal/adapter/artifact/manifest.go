// Package artifact writes a compiled dictionary as a directory of
// checksummed files and reads it back.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/syngdict/internal/domain"
)

const (
	// ManifestFile is written last; a directory without it is incomplete.
	ManifestFile = "manifest.json"
	dataName     = "data"
	fileSuffix   = ".dictionary"
)

// Compression values.
const (
	CompressionXZ   = "xz"
	CompressionNone = "none"
)

// ErrChecksumMismatch reports an artifact whose content does not match
// its manifest entry.
var ErrChecksumMismatch = errors.New("artifact checksum mismatch")

// Manifest describes one output directory.
type Manifest struct {
	BuildID     uuid.UUID      `json:"build_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Version     string         `json:"version,omitempty"`
	Compression string         `json:"compression"`
	Entries     int            `json:"entries"`
	Artifacts   []ArtifactInfo `json:"artifacts"`
}

// ArtifactInfo is the manifest record of one file.
type ArtifactInfo struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Records int    `json:"records"`
	Size    int64  `json:"size"`
	BLAKE3  string `json:"blake3"`
}

// Artifact returns the record for name.
func (m *Manifest) Artifact(name string) (ArtifactInfo, bool) {
	for _, a := range m.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return ArtifactInfo{}, false
}

// ReadManifest reads the manifest of dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("manifest in %s: %w", dir, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeFileAtomic(dir, ManifestFile, data)
}

// writeFileAtomic writes data to a temporary file in dir and renames it
// into place.
func writeFileAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

func fileName(name string) string {
	return name + fileSuffix
}
