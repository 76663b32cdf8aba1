package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
	"storefront/internal/store"
)

const cartCollectionName = "carts"

type CartStore struct {
	collection *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{collection: db.Collection(cartCollectionName)}
}

var _ store.CartStore = (*CartStore)(nil)

func (s *CartStore) Create(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{
		Items:     []models.LineItem{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	result, err := s.collection.InsertOne(ctx, cart)
	if err != nil {
		return nil, fmt.Errorf("failed to insert cart: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = oid
	}
	return cart, nil
}

func (s *CartStore) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id %q: %w", id, store.ErrNotFound)
	}
	return s.getByObjectID(ctx, objID)
}

func (s *CartStore) getByObjectID(ctx context.Context, objID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.LineItem{}
	}
	return &cart, nil
}

// AddProduct performs the line-item merge as a pair of conditional updates so
// that concurrent adds to the same cart sum their quantities instead of
// overwriting each other. Neither update matching means the cart is missing
// or another add raced the guarded push; the loop settles which.
func (s *CartStore) AddProduct(ctx context.Context, cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, store.ErrInvalidQuantity
	}
	cartOID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id %q: %w", cartID, store.ErrNotFound)
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", productID, store.ErrNotFound)
	}

	for {
		// Increment the existing line item, if any.
		result, err := s.collection.UpdateOne(ctx,
			bson.M{"_id": cartOID, "items.product_id": productOID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": quantity},
				"$set": bson.M{"updated_at": time.Now()},
			})
		if err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		if result.MatchedCount == 1 {
			return s.getByObjectID(ctx, cartOID)
		}

		// No existing line item: push a new one, guarded against a
		// concurrent push for the same product.
		result, err = s.collection.UpdateOne(ctx,
			bson.M{"_id": cartOID, "items.product_id": bson.M{"$ne": productOID}},
			bson.M{
				"$push": bson.M{"items": models.LineItem{ProductID: productOID, Quantity: quantity}},
				"$set":  bson.M{"updated_at": time.Now()},
			})
		if err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
		if result.MatchedCount == 1 {
			return s.getByObjectID(ctx, cartOID)
		}

		if _, err := s.getByObjectID(ctx, cartOID); err != nil {
			return nil, err
		}
		// Cart exists, so a concurrent add won the push; retry the increment.
	}
}

func (s *CartStore) RemoveProduct(ctx context.Context, cartID, productID string) (*models.Cart, error) {
	cartOID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id %q: %w", cartID, store.ErrNotFound)
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		// An unparseable product id cannot be present in the cart; treat the
		// removal as the usual no-op.
		return s.getByObjectID(ctx, cartOID)
	}

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": cartOID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productOID}},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, store.ErrNotFound
	}
	return s.getByObjectID(ctx, cartOID)
}

func (s *CartStore) ReplaceItems(ctx context.Context, cartID string, items []models.LineItem) (*models.Cart, error) {
	if err := store.ValidateItems(items); err != nil {
		return nil, err
	}
	return s.setItems(ctx, cartID, models.NormalizeItems(items))
}

func (s *CartStore) Clear(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.setItems(ctx, cartID, []models.LineItem{})
}

func (s *CartStore) setItems(ctx context.Context, cartID string, items []models.LineItem) (*models.Cart, error) {
	cartOID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart id %q: %w", cartID, store.ErrNotFound)
	}

	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": cartOID},
		bson.M{"$set": bson.M{"items": items, "updated_at": time.Now()}})
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, store.ErrNotFound
	}
	return s.getByObjectID(ctx, cartOID)
}
