package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is a (product reference, quantity) pair inside a cart. A cart
// holds at most one line item per distinct product.
type LineItem struct {
	ProductID primitive.ObjectID `json:"product" bson:"product_id" binding:"required"`
	Quantity  int                `json:"quantity" bson:"quantity" binding:"required,gte=1"`
}

type Cart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Items     []LineItem         `json:"products" bson:"items"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// MergeItem applies the cart merge rule to an item slice: increment the
// quantity of an existing entry for the product, or append a new one.
func MergeItem(items []LineItem, productID primitive.ObjectID, quantity int) []LineItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, LineItem{ProductID: productID, Quantity: quantity})
}

// NormalizeItems collapses duplicate product entries in a caller-supplied
// item set, summing their quantities, so the one-entry-per-product invariant
// holds after a full replace.
func NormalizeItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = MergeItem(out, it.ProductID, it.Quantity)
	}
	return out
}
