package account

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Claims identify either a shopper (UserID) or a seller (SellerID).
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	SellerID string `json:"sellerId,omitempty"`
	jwt.StandardClaims
}

func (c *Claims) IsSeller() bool { return c.SellerID != "" }

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) sign(claims Claims) (string, error) {
	now := t.now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(t.ttl).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

func (t *Tokens) ForUser(userID string) (string, error) {
	return t.sign(Claims{UserID: userID})
}

func (t *Tokens) ForSeller(sellerID string) (string, error) {
	return t.sign(Claims{SellerID: sellerID})
}

// Parse accepts the raw token or the "Bearer <token>" form.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, errors.New("empty token")
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
