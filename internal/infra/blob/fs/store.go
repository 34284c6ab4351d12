// Package fs stores pattern payloads as files under a root directory, with
// a JSON sidecar per object carrying the attributes the filesystem cannot.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"studycore/internal/blob/core"
)

const metaSuffix = ".meta.json"

type metaFile struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Store persists objects under Root. Keys map to relative file paths after
// sanitization; traversal outside Root is rejected.
type Store struct {
	root string
}

var _ core.Store = (*Store)(nil)

// NewStore creates the root directory if needed and returns a store over it.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("fs blob store: root directory required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("fs blob store: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("fs blob store: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverFS }

// Root returns the absolute root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	if err := ctx.Err(); err != nil {
		return core.Info{}, err
	}
	rel, err := sanitizeKey(key)
	if err != nil {
		return core.Info{}, err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return core.Info{}, fmt.Errorf("fs blob store: create parent: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".put-*")
	if err != nil {
		return core.Info{}, fmt.Errorf("fs blob store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return core.Info{}, fmt.Errorf("fs blob store: write payload: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return core.Info{}, fmt.Errorf("fs blob store: place payload: %w", err)
	}

	meta := metaFile{
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
		ETag:        hex.EncodeToString(hasher.Sum(nil)),
		Size:        size,
		UpdatedAt:   time.Now().UTC(),
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return core.Info{}, fmt.Errorf("fs blob store: encode metadata: %w", err)
	}
	if err := os.WriteFile(full+metaSuffix, raw, 0o640); err != nil {
		return core.Info{}, fmt.Errorf("fs blob store: write metadata: %w", err)
	}
	return s.infoFor(rel, meta), nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, core.Info, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return nil, core.Info{}, err
	}
	rel, err := sanitizeKey(key)
	if err != nil {
		return nil, core.Info{}, err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.Info{}, core.ErrNotFound
		}
		return nil, core.Info{}, fmt.Errorf("fs blob store: open payload: %w", err)
	}
	return f, info, nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	if err := ctx.Err(); err != nil {
		return core.Info{}, err
	}
	rel, err := sanitizeKey(key)
	if err != nil {
		return core.Info{}, err
	}
	meta, err := s.readMeta(rel)
	if err != nil {
		return core.Info{}, err
	}
	return s.infoFor(rel, meta), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound
		}
		return fmt.Errorf("fs blob store: delete payload: %w", err)
	}
	if err := os.Remove(full + metaSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs blob store: delete metadata: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var infos []core.Info
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		meta, err := s.readMeta(key)
		if err != nil {
			return err
		}
		infos = append(infos, s.infoFor(key, meta))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs blob store: list: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) PresignURL(ctx context.Context, key string, opts core.SignedURLOptions) (string, error) {
	return "", core.ErrUnsupported
}

func (s *Store) readMeta(rel string) (metaFile, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)) + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return metaFile{}, core.ErrNotFound
		}
		return metaFile{}, fmt.Errorf("fs blob store: read metadata: %w", err)
	}
	var meta metaFile
	if err := json.Unmarshal(raw, &meta); err != nil {
		return metaFile{}, fmt.Errorf("fs blob store: decode metadata: %w", err)
	}
	return meta, nil
}

func (s *Store) infoFor(rel string, meta metaFile) core.Info {
	return core.Info{
		Key:          rel,
		Size:         meta.Size,
		ContentType:  meta.ContentType,
		ETag:         meta.ETag,
		Metadata:     meta.Metadata,
		LastModified: meta.UpdatedAt,
		URL:          "file://" + path.Join(filepath.ToSlash(s.root), rel),
	}
}

// sanitizeKey normalizes a key to a clean relative slash path and rejects
// anything that would escape the root.
func sanitizeKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("fs blob store: empty key")
	}
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("fs blob store: invalid key %q", key)
	}
	return cleaned, nil
}
