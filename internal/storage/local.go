package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/lexcorpus/internal/domain"
)

// LocalStore keeps artifacts in a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed and returns a store on it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: invalid artifact key %q", domain.ErrMissingRequiredField, key)
	}
	return filepath.Join(s.dir, key), nil
}

// Put writes the artifact through a temporary file so readers never see a
// partial artifact.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return domain.ErrStorageOperationFail.WithCause(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.ErrStorageOperationFail.WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ErrStorageOperationFail.WithCause(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.ErrStorageOperationFail.WithCause(err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrArtifactNotFound.WithCause(err)
		}
		return nil, domain.ErrStorageOperationFail.WithCause(err)
	}
	return data, nil
}

func (s *LocalStore) Head(ctx context.Context, key string) (*ObjectMetadata, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	path, _ := s.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.ErrStorageOperationFail.WithCause(err)
	}

	sum := sha256.Sum256(data)
	return &ObjectMetadata{
		ContentLength: info.Size(),
		ContentType:   ContentTypeJSONL,
		ETag:          hex.EncodeToString(sum[:]),
		LastModified:  info.ModTime(),
	}, nil
}

func (s *LocalStore) Location(key string) string {
	return filepath.Join(s.dir, key)
}
