package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account status values stored on users.
const (
	AccountOpen   = "open"
	AccountClosed = "closed"
)

// Visibility values stored on products.
const (
	VisibilityOn  = "on"
	VisibilityOff = "off"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        string             `bson:"userId" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password" json:"-"`
	Phone         string             `bson:"phone" json:"phone"`
	AccountStatus string             `bson:"accountStatus" json:"accountStatus"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

type Seller struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SellerID        string             `bson:"sellerId" json:"sellerId"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	PhoneNumber     string             `bson:"phoneNumber" json:"phoneNumber"`
	Password        string             `bson:"password" json:"-"`
	BusinessName    string             `bson:"businessName" json:"businessName"`
	BusinessAddress string             `bson:"businessAddress" json:"businessAddress"`
	BusinessType    string             `bson:"businessType" json:"businessType"`
	EmailVerified   bool               `bson:"emailVerified" json:"emailVerified"`
	PhoneVerified   bool               `bson:"phoneVerified" json:"phoneVerified"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// Product is a catalog entry. ID is the document id that orders and carts
// reference; ProductID is the short display id assigned in batch.
type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ProductID      string             `bson:"productId,omitempty" json:"productId,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	Category       string             `bson:"category" json:"category"`
	Image          string             `bson:"img" json:"img"`
	Rating         float64            `bson:"rating" json:"rating"`
	InStockValue   int                `bson:"inStockValue" json:"inStockValue"`
	SoldStockValue int                `bson:"soldStockValue" json:"soldStockValue"`
	Visibility     string             `bson:"visibility" json:"visibility"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

type CartEntry struct {
	ProductID string `bson:"productId" json:"productId"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         string             `bson:"userId" json:"userId"`
	ProductsInCart []CartEntry        `bson:"productsInCart" json:"productsInCart"`
}

type Address struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID  string             `bson:"userId" json:"userId"`
	Address string             `bson:"address" json:"address"`
}
