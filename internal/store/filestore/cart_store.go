package filestore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

type CartStore struct {
	mu   sync.Mutex
	path string
}

func NewCartStore(path string) (*CartStore, error) {
	if err := ensureFile(path); err != nil {
		return nil, err
	}
	return &CartStore{path: path}, nil
}

var _ store.CartStore = (*CartStore)(nil)

func (s *CartStore) readAll() ([]models.Cart, error) {
	var carts []models.Cart
	if err := load(s.path, &carts); err != nil {
		return nil, err
	}
	return carts, nil
}

func (s *CartStore) Create(ctx context.Context) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.readAll()
	if err != nil {
		return nil, err
	}

	cart := models.Cart{
		ID:        primitive.NewObjectID(),
		Items:     []models.LineItem{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	carts = append(carts, cart)
	if err := save(s.path, carts); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, c := range carts {
		if c.ID.Hex() == id {
			cp := c
			if cp.Items == nil {
				cp.Items = []models.LineItem{}
			}
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// mutate runs fn on the cart's items under the store lock and persists the
// result, which is what makes concurrent merges on the same cart safe here.
func (s *CartStore) mutate(cartID string, fn func(items []models.LineItem) ([]models.LineItem, error)) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carts, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range carts {
		if carts[i].ID.Hex() != cartID {
			continue
		}
		items, err := fn(carts[i].Items)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.LineItem{}
		}
		carts[i].Items = items
		carts[i].UpdatedAt = time.Now()
		if err := save(s.path, carts); err != nil {
			return nil, err
		}
		cp := carts[i]
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (s *CartStore) AddProduct(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, store.ErrInvalidQuantity
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return s.mutate(cartID, func(items []models.LineItem) ([]models.LineItem, error) {
		return models.MergeItem(items, productOID, quantity), nil
	})
}

func (s *CartStore) RemoveProduct(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	return s.mutate(cartID, func(items []models.LineItem) ([]models.LineItem, error) {
		out := items[:0]
		for _, it := range items {
			if it.ProductID.Hex() != productID {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

func (s *CartStore) ReplaceItems(ctx context.Context, cartID string, items []models.LineItem) (*models.Cart, error) {
	if err := store.ValidateItems(items); err != nil {
		return nil, err
	}
	normalized := models.NormalizeItems(items)
	return s.mutate(cartID, func([]models.LineItem) ([]models.LineItem, error) {
		return normalized, nil
	})
}

func (s *CartStore) Clear(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.mutate(cartID, func([]models.LineItem) ([]models.LineItem, error) {
		return []models.LineItem{}, nil
	})
}
