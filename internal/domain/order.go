package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus tracks how far the placement workflow got for an order.
type OrderStatus string

const (
	// StatusCreated: persisted, confirmation not yet delivered.
	StatusCreated OrderStatus = "created"
	// StatusNotified: confirmation delivered, completion step pending.
	StatusNotified OrderStatus = "notified"
	// StatusComplete: every step has run.
	StatusComplete OrderStatus = "complete"
	// StatusAbandoned: confirmation retries ran out. Terminal, so the
	// reconciler no longer scans the order.
	StatusAbandoned OrderStatus = "abandoned"
)

type OrderLine struct {
	ProductID string `bson:"productId" json:"productId" mapstructure:"productId"`
	Quantity  int    `bson:"quantity" json:"quantity" mapstructure:"quantity"`
}

// Order is written once at placement. UserID references User.ID (hex), not
// the external user id. Status and the notify bookkeeping are the only fields
// that change afterwards.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID         string             `bson:"orderId" json:"orderId"`
	UserID          string             `bson:"userId" json:"userId"`
	Date            string             `bson:"date" json:"date"`
	Time            string             `bson:"time" json:"time"`
	Address         string             `bson:"address" json:"address"`
	Email           string             `bson:"email" json:"email"`
	Name            string             `bson:"name" json:"name"`
	ProductsOrdered []OrderLine        `bson:"productsOrdered" json:"productsOrdered"`
	TrackingID      string             `bson:"trackingId" json:"trackingId"`
	Price           float64            `bson:"price" json:"price"`
	Status          OrderStatus        `bson:"status" json:"status"`
	NotifyAttempts  int                `bson:"notifyAttempts" json:"notifyAttempts"`
	LastNotifyError string             `bson:"lastNotifyError,omitempty" json:"lastNotifyError,omitempty"`
	StockApplied    bool               `bson:"stockApplied" json:"stockApplied"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
