package taxonomy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/productlens/backend/internal/storage/models"
	"github.com/productlens/backend/pkg/logger"
)

// Store is the read collaborator supplying the tag vocabulary and the flat
// category list (each row carrying its parent id and level).
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Snapshot is an immutable view of the taxonomy. It is never mutated after
// construction; the cache replaces the whole snapshot on refresh, so any
// number of classification calls can read one snapshot concurrently.
type Snapshot struct {
	Tags       []models.Tag
	Categories []models.Category
	LoadedAt   time.Time

	byID map[string]models.Category
}

func newSnapshot(tags []models.Tag, categories []models.Category) *Snapshot {
	byID := make(map[string]models.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}

	return &Snapshot{
		Tags:       tags,
		Categories: categories,
		LoadedAt:   time.Now(),
		byID:       byID,
	}
}

// Path returns the root-to-leaf chain of category names for the given
// category. Broken parent pointers terminate the walk instead of erroring.
func (s *Snapshot) Path(cat models.Category) []string {
	names := []string{cat.Name}

	current := cat
	for current.ParentID != nil {
		parent, ok := s.byID[*current.ParentID]
		if !ok {
			break
		}
		names = append([]string{parent.Name}, names...)
		current = parent
	}

	return names
}

// AncestorCount returns the number of ancestors above the category.
func (s *Snapshot) AncestorCount(cat models.Category) int {
	return len(s.Path(cat)) - 1
}

// Cache holds the process-wide taxonomy snapshot. The snapshot is built
// lazily on first use and replaced wholesale by Refresh; readers always see
// either the old complete snapshot or the new complete one.
type Cache struct {
	store Store

	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Snapshot returns the current snapshot, loading it on first call.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := c.snap.Load(); snap != nil {
		return snap, nil
	}

	if err := c.Refresh(ctx, false); err != nil {
		return nil, err
	}

	return c.snap.Load(), nil
}

// Refresh reloads the taxonomy from the store. With force=false it is a
// no-op when a snapshot already exists. The new snapshot is fully built
// before the shared reference is swapped.
func (c *Cache) Refresh(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.snap.Load() != nil {
		return nil
	}

	tags, err := c.store.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}

	categories, err := c.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	c.snap.Store(newSnapshot(tags, categories))

	logger.Info("Taxonomy snapshot loaded",
		zap.Int("tags", len(tags)),
		zap.Int("categories", len(categories)),
		zap.Bool("forced", force),
	)

	return nil
}

// Loaded reports whether a snapshot is available without triggering a load.
func (c *Cache) Loaded() bool {
	return c.snap.Load() != nil
}
