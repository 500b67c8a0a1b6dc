package cart

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileRecordSuffix is appended to the encoded key to name a record file.
const fileRecordSuffix = ".json"

// FilePersister stores each cart record as a JSON file inside a directory.
type FilePersister struct {
	dir    string
	logger zerolog.Logger
}

// NewFilePersister creates the directory if needed and returns a persister
// rooted there.
func NewFilePersister(dir string, logger zerolog.Logger) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory %s: %w", dir, err)
	}

	logger = logger.With().Str("component", "cart-file-persister").Logger()
	logger.Info().Str("dir", dir).Msg("file cart persister initialised")

	return &FilePersister{dir: dir, logger: logger}, nil
}

// Load reads the record for key. A missing file is not an error.
func (p *FilePersister) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(p.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}
	return data, nil
}

// Save writes the record for key through a temporary file and rename so a
// reader never sees a partial record.
func (p *FilePersister) Save(ctx context.Context, key string, data []byte) error {
	target := p.path(key)

	tmp, err := os.CreateTemp(p.dir, ".cart-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary cart file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cart file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cart file: %w", err)
	}

	p.logger.Debug().Str("file", target).Int("bytes", len(data)).Msg("cart file written")
	return nil
}

func (p *FilePersister) path(key string) string {
	return filepath.Join(p.dir, recordFileName(key))
}

// recordFileName hex encodes the key so distinct keys never share a file
// and no key can name a path outside the directory.
func recordFileName(key string) string {
	return hex.EncodeToString([]byte(key)) + fileRecordSuffix
}
