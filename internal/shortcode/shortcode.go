// Package shortcode generates the short identifiers handed out by the
// storefront: product display ids, seller ids, order ids, tracking ids and
// user ids. Every scheme is a Generator parameterized by alphabet, length and
// prefix, with a bounded collision-retry loop and an injectable random source.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	Digits = "0123456789"
	Base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
	Hex    = "0123456789abcdef"
)

// ErrExhausted is returned when every candidate within the retry budget was
// already taken.
var ErrExhausted = errors.New("shortcode: no free code within retry budget")

// Source yields uniformly distributed integers in [0, n).
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("shortcode: crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// CryptoSource is the default Source.
var CryptoSource Source = cryptoSource{}

// ExistsFunc reports whether code is already in use.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	Alphabet string
	Length   int
	Prefix   string
	// NonZeroLead keeps the first drawn character off Alphabet[0], so a
	// 6-digit code is always 100000-999999.
	NonZeroLead bool
	Uppercase   bool
	// MaxAttempts bounds Unique. Zero or less means a single attempt.
	MaxAttempts int
	Source      Source
}

func (g Generator) source() Source {
	if g.Source == nil {
		return CryptoSource
	}
	return g.Source
}

// Next draws one candidate code.
func (g Generator) Next() string {
	src := g.source()
	var b strings.Builder
	b.Grow(len(g.Prefix) + g.Length)
	b.WriteString(g.Prefix)
	for i := 0; i < g.Length; i++ {
		if i == 0 && g.NonZeroLead && len(g.Alphabet) > 1 {
			b.WriteByte(g.Alphabet[1+src.Intn(len(g.Alphabet)-1)])
			continue
		}
		b.WriteByte(g.Alphabet[src.Intn(len(g.Alphabet))])
	}
	if g.Uppercase {
		return strings.ToUpper(b.String())
	}
	return b.String()
}

// Attempts returns the effective retry budget.
func (g Generator) Attempts() int {
	if g.MaxAttempts < 1 {
		return 1
	}
	return g.MaxAttempts
}

// Unique draws candidates until exists reports one free.
func (g Generator) Unique(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.Attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := g.Next()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("shortcode: check %q: %w", code, err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

// WithSource returns a copy of g drawing from src.
func (g Generator) WithSource(src Source) Generator {
	g.Source = src
	return g
}

// WithAttempts returns a copy of g with the given retry budget.
func (g Generator) WithAttempts(n int) Generator {
	g.MaxAttempts = n
	return g
}

// SetChecker tracks codes handed out within one batch. Codes returned by
// Unique through Exists are reserved immediately.
type SetChecker struct {
	used map[string]struct{}
}

func NewSetChecker(existing ...string) *SetChecker {
	s := &SetChecker{used: make(map[string]struct{}, len(existing))}
	for _, code := range existing {
		if code != "" {
			s.used[code] = struct{}{}
		}
	}
	return s
}

func (s *SetChecker) Exists(_ context.Context, code string) (bool, error) {
	if _, ok := s.used[code]; ok {
		return true, nil
	}
	s.used[code] = struct{}{}
	return false, nil
}

func (s *SetChecker) Len() int { return len(s.used) }

// Presets for the identifiers the storefront issues.
var (
	ProductDisplayID = Generator{Alphabet: Digits, Length: 6, NonZeroLead: true, MaxAttempts: 100}
	SellerID         = Generator{Alphabet: Digits, Length: 5, Prefix: "MBSLR", NonZeroLead: true, MaxAttempts: 20}
	OrderID          = Generator{Alphabet: Digits, Length: 6, NonZeroLead: true, MaxAttempts: 5}
	TrackingID       = Generator{Alphabet: Base36, Length: 12, Uppercase: true, MaxAttempts: 3}
	UserID           = Generator{Alphabet: Hex, Length: 16, MaxAttempts: 5}
)
