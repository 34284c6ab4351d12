// Package pattern persists antenna pattern tables in a blob store and
// serves them to derivation through the domain loader interface.
package pattern

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"studycore/internal/blob/core"
	"studycore/pkg/domain"
)

const contentType = "application/json"

// Key returns the blob key for one pattern slot of one source.
func Key(sourceKey int, slot domain.PatternType) string {
	return fmt.Sprintf("sources/%d/%s.json", sourceKey, slot)
}

// Repository stores one JSON object per occupied pattern slot. It satisfies
// domain.PatternLoader, so derivation and replication can pull patterns for
// sources whose slots are not resident in memory.
type Repository struct {
	store core.Store
}

var _ domain.PatternLoader = (*Repository)(nil)

// NewRepository wraps a blob store.
func NewRepository(store core.Store) *Repository {
	return &Repository{store: store}
}

// Save writes the pattern into the slot named by its Type, replacing any
// previous payload for that slot.
func (r *Repository) Save(ctx context.Context, sourceKey int, p *domain.Pattern) (core.Info, error) {
	if p == nil {
		return core.Info{}, errors.New("pattern repository: nil pattern")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return core.Info{}, fmt.Errorf("pattern repository: encode %s pattern: %w", p.Type, err)
	}
	info, err := r.store.Put(ctx, Key(sourceKey, p.Type), bytes.NewReader(raw), core.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"name": p.Name, "slot": p.Type.String()},
	})
	if err != nil {
		return core.Info{}, fmt.Errorf("pattern repository: store %s pattern for source %d: %w", p.Type, sourceKey, err)
	}
	return info, nil
}

// Load returns the stored pattern for a slot, or nil when the slot is empty.
func (r *Repository) Load(ctx context.Context, sourceKey int, slot domain.PatternType) (*domain.Pattern, error) {
	rc, _, err := r.store.Get(ctx, Key(sourceKey, slot))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("pattern repository: fetch %s pattern for source %d: %w", slot, sourceKey, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("pattern repository: read %s pattern for source %d: %w", slot, sourceKey, err)
	}
	var p domain.Pattern
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("pattern repository: decode %s pattern for source %d: %w", slot, sourceKey, err)
	}
	p.Changed = false
	return &p, nil
}

func (r *Repository) LoadHorizontal(ctx context.Context, sourceKey int) (*domain.Pattern, error) {
	return r.Load(ctx, sourceKey, domain.PatternHorizontal)
}

func (r *Repository) LoadVertical(ctx context.Context, sourceKey int) (*domain.Pattern, error) {
	return r.Load(ctx, sourceKey, domain.PatternVertical)
}

func (r *Repository) LoadMatrix(ctx context.Context, sourceKey int) (*domain.Pattern, error) {
	return r.Load(ctx, sourceKey, domain.PatternMatrix)
}

// Delete removes one slot. Deleting an empty slot is not an error.
func (r *Repository) Delete(ctx context.Context, sourceKey int, slot domain.PatternType) error {
	err := r.store.Delete(ctx, Key(sourceKey, slot))
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("pattern repository: delete %s pattern for source %d: %w", slot, sourceKey, err)
	}
	return nil
}

// DeleteAll removes every stored slot for a source. Used when the source
// itself is deleted.
func (r *Repository) DeleteAll(ctx context.Context, sourceKey int) error {
	prefix := fmt.Sprintf("sources/%d/", sourceKey)
	infos, err := r.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("pattern repository: list patterns for source %d: %w", sourceKey, err)
	}
	for _, info := range infos {
		if err := r.store.Delete(ctx, info.Key); err != nil && !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("pattern repository: delete %s: %w", info.Key, err)
		}
	}
	return nil
}

// List reports the occupied slots for a source.
func (r *Repository) List(ctx context.Context, sourceKey int) ([]core.Info, error) {
	infos, err := r.store.List(ctx, fmt.Sprintf("sources/%d/", sourceKey))
	if err != nil {
		return nil, fmt.Errorf("pattern repository: list patterns for source %d: %w", sourceKey, err)
	}
	return infos, nil
}
