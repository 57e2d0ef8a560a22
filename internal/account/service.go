// Package account handles shopper and seller sign-up, login and tokens, plus
// the small user directory operations the admin dashboard uses.
package account

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/config"
	"merabestie-backend/internal/domain"
	"merabestie-backend/internal/repository"
	"merabestie-backend/internal/shortcode"
)

type Service struct {
	users     repository.UserStore
	sellers   repository.SellerStore
	addresses repository.AddressStore
	tokens    *Tokens
	cost      int

	userIDs   shortcode.Generator
	sellerIDs shortcode.Generator
}

func NewService(stores repository.Stores, cfg config.AuthConfig) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:     stores.Users,
		sellers:   stores.Sellers,
		addresses: stores.Addresses,
		tokens:    NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		cost:      cost,
		userIDs:   shortcode.UserID,
		sellerIDs: shortcode.SellerID,
	}
}

func (s *Service) Tokens() *Tokens { return s.tokens }

// Session is what a successful signup or login returns.
type Session struct {
	UserID   string `json:"userId,omitempty"`
	SellerID string `json:"sellerId,omitempty"`
	Token    string `json:"token"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Session, error) {
	const op = "account.Signup"
	email := normalizeEmail(req.Email)
	if strings.TrimSpace(req.Name) == "" || email == "" || req.Password == "" {
		return nil, apperr.Validation(op, "name, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Validation(op, "User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error registering user")
	}

	userID, err := s.userIDs.Unique(ctx, s.users.ExistsUserID)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error registering user")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error registering user")
	}

	user := &domain.User{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		Password:      string(hash),
		Phone:         req.Phone,
		AccountStatus: domain.AccountOpen,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperr.Validation(op, "User already exists")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error registering user")
	}
	zap.L().Info("user registered", zap.String("userId", userID))

	token, err := s.tokens.ForUser(userID)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error registering user")
	}
	return &Session{UserID: userID, Token: token}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "account.Login"
	const invalid = "Invalid email or password"

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation(op, invalid)
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error logging in")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.Validation(op, invalid)
	}
	token, err := s.tokens.ForUser(user.UserID)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error logging in")
	}
	return &Session{UserID: user.UserID, Token: token}, nil
}

type SellerSignupRequest struct {
	PhoneNumber     string `json:"phoneNumber"`
	EmailID         string `json:"emailId"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
	BusinessType    string `json:"businessType"`
}

func (s *Service) SellerSignup(ctx context.Context, req SellerSignupRequest) (*Session, error) {
	const op = "account.SellerSignup"
	email := normalizeEmail(req.EmailID)
	if email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation(op, "name, emailId and password are required")
	}

	if _, err := s.sellers.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Validation(op, "Seller already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error registering seller")
	}

	sellerID, err := s.sellerIDs.Unique(ctx, s.sellers.ExistsSellerID)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error registering seller")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error registering seller")
	}

	seller := &domain.Seller{
		SellerID:        sellerID,
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		PhoneNumber:     req.PhoneNumber,
		Password:        string(hash),
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		BusinessType:    req.BusinessType,
	}
	if err := s.sellers.Create(ctx, seller); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperr.Validation(op, "Seller already exists")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error registering seller")
	}
	zap.L().Info("seller registered", zap.String("sellerId", sellerID))

	token, err := s.tokens.ForSeller(sellerID)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error registering seller")
	}
	return &Session{SellerID: sellerID, Token: token}, nil
}

// SellerLogin finds the seller by email first and falls back to phone.
func (s *Service) SellerLogin(ctx context.Context, emailID, phone, password string) (*Session, error) {
	const op = "account.SellerLogin"
	const invalid = "Invalid credentials"

	var (
		seller *domain.Seller
		err    error = repository.ErrNotFound
	)
	if email := normalizeEmail(emailID); email != "" {
		seller, err = s.sellers.GetByEmail(ctx, email)
	}
	if errors.Is(err, repository.ErrNotFound) && strings.TrimSpace(phone) != "" {
		seller, err = s.sellers.GetByPhone(ctx, strings.TrimSpace(phone))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation(op, invalid)
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error logging in")
	}
	if bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(password)) != nil {
		return nil, apperr.Validation(op, invalid)
	}
	token, err := s.tokens.ForSeller(seller.SellerID)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindInternal, op, err, "Error logging in")
	}
	return &Session{SellerID: seller.SellerID, Token: token}, nil
}

// VerifyToken checks the value of an Authorization header.
func (s *Service) VerifyToken(header string) (*Claims, error) {
	const op = "account.VerifyToken"
	if strings.TrimSpace(header) == "" {
		return nil, apperr.Forbidden(op, "No token provided")
	}
	claims, err := s.tokens.Parse(header)
	if err != nil {
		zap.L().Debug("token rejected", zap.Error(err))
		return nil, apperr.Wrapf(apperr.KindUnauthorized, op, err, "Invalid or expired token")
	}
	return claims, nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	const op = "account.CurrentUser"
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation(op, "User ID is required")
	}
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "User not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Server error")
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, "account.ListUsers", err, "Error fetching user details")
	}
	return users, nil
}

func (s *Service) SetAccountStatus(ctx context.Context, userID, status string) (*domain.User, error) {
	const op = "account.SetAccountStatus"
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation(op, "userId is required")
	}
	switch status {
	case domain.AccountOpen, domain.AccountClosed:
	default:
		return nil, apperr.Validation(op, `accountStatus must be "open" or "closed"`)
	}
	user, err := s.users.SetAccountStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "User not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error updating account status")
	}
	zap.L().Info("account status changed", zap.String("userId", userID), zap.String("status", status))
	return user, nil
}

// UpdateAddress stores the single saved address of a user.
func (s *Service) UpdateAddress(ctx context.Context, userID, address string) (*domain.Address, error) {
	const op = "account.UpdateAddress"
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(address) == "" {
		return nil, apperr.Validation(op, "userId and address are required")
	}
	a, err := s.addresses.Upsert(ctx, userID, address)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error updating address")
	}
	return a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
