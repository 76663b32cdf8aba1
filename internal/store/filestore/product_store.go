package filestore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

type ProductStore struct {
	mu   sync.RWMutex
	path string
}

func NewProductStore(path string) (*ProductStore, error) {
	if err := ensureFile(path); err != nil {
		return nil, err
	}
	return &ProductStore{path: path}, nil
}

var _ store.ProductStore = (*ProductStore)(nil)

func (s *ProductStore) readAll() ([]models.Product, error) {
	var products []models.Product
	if err := load(s.path, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductStore) Add(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readAll()
	if err != nil {
		return err
	}

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	products = append(products, *product)

	return save(s.path, products)
}

func matches(p models.Product, opts store.ListOptions) bool {
	if opts.Query != "" {
		q := strings.ToLower(opts.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if opts.Category != "" && p.Category != opts.Category {
		return false
	}
	return true
}

func (s *ProductStore) List(ctx context.Context, opts store.ListOptions) (*store.ProductPage, error) {
	opts.Normalize()

	s.mu.RLock()
	products, err := s.readAll()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matches(p, opts) {
			filtered = append(filtered, p)
		}
	}

	switch opts.Sort {
	case "asc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "desc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}

	total := int64(len(filtered))
	start := (opts.Page - 1) * opts.Limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + opts.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return store.BuildProductPage(filtered[start:end], total, opts.Page, opts.Limit), nil
}

func (s *ProductStore) All(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID.Hex() == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *ProductStore) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID.Hex() == id {
			patch.Apply(&products[i])
			products[i].UpdatedAt = time.Now()
			if err := save(s.path, products); err != nil {
				return nil, err
			}
			cp := products[i]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readAll()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID.Hex() == id {
			products = append(products[:i], products[i+1:]...)
			return save(s.path, products)
		}
	}
	return store.ErrNotFound
}
