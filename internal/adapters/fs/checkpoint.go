// Package fs persists ingest checkpoints as JSON files on local disk.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/bft-labs/fixship/internal/domain"
)

const checkpointFile = "checkpoint.json"

// CheckpointStore writes the checkpoint atomically via a temp file rename,
// so a crash mid-write never leaves a torn file behind.
type CheckpointStore struct {
	dir string
}

// NewCheckpointStore creates a store rooted at dir, creating it if needed.
func NewCheckpointStore(dir string) (*CheckpointStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create checkpoint dir")
	}
	return &CheckpointStore{dir: dir}, nil
}

// Load reads the last saved checkpoint. A missing file yields a zero
// checkpoint and no error.
func (s *CheckpointStore) Load(ctx context.Context) (domain.Checkpoint, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, checkpointFile))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Checkpoint{}, nil
		}
		return domain.Checkpoint{}, errors.Wrap(err, "read checkpoint")
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return domain.Checkpoint{}, errors.Wrap(err, "parse checkpoint")
	}
	return cp, nil
}

// Save persists the checkpoint.
func (s *CheckpointStore) Save(ctx context.Context, cp domain.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal checkpoint")
	}

	path := filepath.Join(s.dir, checkpointFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write checkpoint")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename checkpoint")
	}
	return nil
}
