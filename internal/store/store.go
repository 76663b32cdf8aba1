// Package store defines the backend-neutral persistence contracts. Two
// interchangeable implementations exist: mongostore (MongoDB) and filestore
// (flat JSON files), selected by configuration at boot.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// ErrNotFound is returned when the requested entity does not exist. Callers
// must be able to distinguish it from an I/O failure.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidQuantity is returned when a line-item quantity is below 1.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ValidateItems checks that every supplied line item carries a legal quantity.
func ValidateItems(items []models.LineItem) error {
	for _, it := range items {
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListOptions filters and paginates a product listing.
type ListOptions struct {
	// Query is matched case-insensitively as a substring of title or
	// description.
	Query string
	// Category is an exact match.
	Category string
	// Sort orders by price: "asc" or "desc". Empty keeps creation order.
	Sort  string
	Page  int
	Limit int
}

// Normalize clamps paging parameters to sane bounds.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
}

// ProductPage is one page of a product listing plus paging metadata.
type ProductPage struct {
	Products   []models.Product `json:"payload"`
	TotalDocs  int64            `json:"totalDocs"`
	Limit      int              `json:"limit"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	HasPrev    bool             `json:"hasPrevPage"`
	HasNext    bool             `json:"hasNextPage"`
	PrevPage   *int             `json:"prevPage"`
	NextPage   *int             `json:"nextPage"`
}

// BuildProductPage assembles paging metadata for an already-sliced page.
// An empty result still reports one (empty) page.
func BuildProductPage(products []models.Product, total int64, page, limit int) *ProductPage {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	p := &ProductPage{
		Products:   products,
		TotalDocs:  total,
		Limit:      limit,
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if p.Products == nil {
		p.Products = []models.Product{}
	}
	if p.HasPrev {
		prev := page - 1
		p.PrevPage = &prev
	}
	if p.HasNext {
		next := page + 1
		p.NextPage = &next
	}
	return p
}

type ProductStore interface {
	Add(ctx context.Context, p *models.Product) error
	List(ctx context.Context, opts ListOptions) (*ProductPage, error)
	// All returns the full catalog without paging; the live feed pushes it
	// verbatim to subscribers.
	All(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartStore interface {
	Create(ctx context.Context) (*models.Cart, error)
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	// AddProduct applies the merge rule atomically: concurrent adds for the
	// same product must sum their quantities, never overwrite each other.
	AddProduct(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error)
	// RemoveProduct drops the matching line item; removing an absent product
	// is a no-op, not an error.
	RemoveProduct(ctx context.Context, cartID, productID string) (*models.Cart, error)
	ReplaceItems(ctx context.Context, cartID string, items []models.LineItem) (*models.Cart, error)
	Clear(ctx context.Context, cartID string) (*models.Cart, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetCart(ctx context.Context, userID string, cartID primitive.ObjectID) error
}

// Stores bundles one backend's implementations for wiring.
type Stores struct {
	Products ProductStore
	Carts    CartStore
	Users    UserStore
}
