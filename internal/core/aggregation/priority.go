package aggregation

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PriorityOrder ranks the data origins of one category, highest first.
// Origins not listed never win over a listed one.
type PriorityOrder struct {
	Category    Category
	Origins     []string
	Fingerprint string // SHA-256 of the raw YAML file
}

// rawPriority is the on-disk YAML shape.
type rawPriority struct {
	Category string   `yaml:"category"`
	Origins  []string `yaml:"origins"`
}

// PriorityProvider supplies the priority order used when a request carries
// no explicit data-origin filter.
type PriorityProvider interface {
	PriorityFor(ctx context.Context, category Category) ([]string, error)
}

// FileSystemPriorityRepository loads one priority order per *.yaml file.
// Orders are loaded once at startup and never reloaded.
type FileSystemPriorityRepository struct {
	dir    string
	orders map[Category]PriorityOrder
}

// NewFileSystemPriorityRepository eagerly loads all priority files from dir.
// A missing directory is valid and means no priorities are configured.
func NewFileSystemPriorityRepository(dir string) (*FileSystemPriorityRepository, error) {
	repo := &FileSystemPriorityRepository{
		dir:    dir,
		orders: make(map[Category]PriorityOrder),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewStaticPriorityRepository builds a repository from in-memory orders.
func NewStaticPriorityRepository(orders map[Category][]string) *FileSystemPriorityRepository {
	repo := &FileSystemPriorityRepository{orders: make(map[Category]PriorityOrder, len(orders))}
	for c, origins := range orders {
		repo.orders[c] = PriorityOrder{Category: c, Origins: append([]string(nil), origins...)}
	}
	return repo
}

func (r *FileSystemPriorityRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("priority dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("priority path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading priority dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading priority file %s: %w", path, err)
		}

		var raw rawPriority
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing priority file %s: %w", path, err)
		}
		if raw.Category == "" {
			continue // comment-only file
		}

		category := Category(strings.ToUpper(raw.Category))
		if !ValidCategory(category) {
			return fmt.Errorf("priority file %s: unknown category %q", path, raw.Category)
		}
		if len(raw.Origins) == 0 {
			return fmt.Errorf("priority %q: origins must not be empty", category)
		}
		seen := make(map[string]bool, len(raw.Origins))
		for _, o := range raw.Origins {
			if strings.TrimSpace(o) == "" {
				return fmt.Errorf("priority %q: blank origin", category)
			}
			if seen[o] {
				return fmt.Errorf("priority %q: origin %q listed twice", category, o)
			}
			seen[o] = true
		}
		if _, exists := r.orders[category]; exists {
			return fmt.Errorf("priority %q: duplicate category (check multiple YAML files)", category)
		}

		r.orders[category] = PriorityOrder{
			Category:    category,
			Origins:     raw.Origins,
			Fingerprint: fmt.Sprintf("%x", sha256.Sum256(data)),
		}
	}
	return nil
}

// PriorityFor returns the order for category, or nil when none is configured.
// A nil order means every origin counts.
func (r *FileSystemPriorityRepository) PriorityFor(_ context.Context, category Category) ([]string, error) {
	order, ok := r.orders[category]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), order.Origins...), nil
}

// Orders returns all loaded orders.
func (r *FileSystemPriorityRepository) Orders() []PriorityOrder {
	out := make([]PriorityOrder, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out
}
