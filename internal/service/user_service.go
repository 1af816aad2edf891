package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/store"
	"storefront/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	DefaultAccessTokenExpiration = time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
)

// RegisterInput is the sign-up form
type RegisterInput struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileInput renames a user or changes the email
type ProfileInput struct {
	Name  string `json:"name" validate:"required,notblank"`
	Email string `json:"email" validate:"required,email"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// AddressInput is one address book entry as submitted by the shopper
type AddressInput struct {
	FullName   string `json:"fullName" validate:"required,notblank"`
	Phone      string `json:"phone" validate:"required,phone"`
	Address1   string `json:"address1" validate:"required,notblank"`
	Address2   string `json:"address2"`
	City       string `json:"city" validate:"required,notblank"`
	PostalCode string `json:"postalCode" validate:"required,notblank"`
	IsDefault  bool   `json:"isDefault"`
}

func (in AddressInput) address(id string) domain.Address {
	return domain.Address{
		ID:         id,
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      strings.TrimSpace(in.Phone),
		Address1:   strings.TrimSpace(in.Address1),
		Address2:   strings.TrimSpace(in.Address2),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		IsDefault:  in.IsDefault,
	}
}

// Profile is a user without credentials
type Profile struct {
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.Role      `json:"role"`
	Addresses []domain.Address `json:"addresses"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newProfile(u domain.User) *Profile {
	addresses := append([]domain.Address{}, u.Addresses...)
	return &Profile{
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Addresses: addresses,
		CreatedAt: u.CreatedAt,
	}
}

// UserService defines the interface for accounts, sessions and address books
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*Profile, error)
	Login(ctx context.Context, identifier, password string) (accessToken string, profile *Profile, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetProfile(ctx context.Context, email string) (*Profile, error)
	UpdateProfile(ctx context.Context, email string, input ProfileInput) (accessToken string, profile *Profile, err error)
	ChangePassword(ctx context.Context, email string, input PasswordInput) error
	AddAddress(ctx context.Context, email string, input AddressInput) (*Profile, error)
	UpdateAddress(ctx context.Context, email, addressID string, input AddressInput) (*Profile, error)
	DeleteAddress(ctx context.Context, email, addressID string) (*Profile, error)
	SetDefaultAddress(ctx context.Context, email, addressID string) (*Profile, error)
}

// Claims represents the JWT claims. The subject is the user's email.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type userService struct {
	store        *store.Store
	jwtSecret    string
	accessExpiry time.Duration
	hashCost     int
	logger       *zap.Logger
}

// UserServiceOption customises a UserService
type UserServiceOption func(*userService)

// WithHashCost overrides the bcrypt cost, mostly for tests
func WithHashCost(cost int) UserServiceOption {
	return func(s *userService) { s.hashCost = cost }
}

// NewUserService creates a new instance of UserService
func NewUserService(st *store.Store, jwtSecret string, accessExpiry time.Duration, logger *zap.Logger, opts ...UserServiceOption) UserService {
	if accessExpiry <= 0 {
		accessExpiry = DefaultAccessTokenExpiration
	}
	s := &userService{
		store:        st,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
		hashCost:     BcryptCost,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user account with hashed password
func (s *userService) Register(ctx context.Context, input RegisterInput) (*Profile, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cmd := &store.RegisterUser{User: domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
	}}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("email", cmd.User.Email))
	return newProfile(cmd.User), nil
}

// Login authenticates by email or name and returns an access token
func (s *userService) Login(ctx context.Context, identifier, password string) (string, *Profile, error) {
	var (
		user  domain.User
		found bool
	)
	s.store.View(func(st store.State) {
		if i := domain.FindUserByLogin(st.Users, identifier); i >= 0 {
			user, found = st.Users[i].Clone(), true
		}
	})
	if !found {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.verifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, newProfile(user), nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *userService) GetProfile(ctx context.Context, email string) (*Profile, error) {
	var (
		user  domain.User
		found bool
	)
	s.store.View(func(st store.State) {
		var u domain.User
		if u, found = st.User(email); found {
			user = u.Clone()
		}
	})
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return newProfile(user), nil
}

// UpdateProfile renames the user and may change the email. A fresh token is
// issued because the token subject is the email.
func (s *userService) UpdateProfile(ctx context.Context, email string, input ProfileInput) (string, *Profile, error) {
	if err := validation.Struct(input); err != nil {
		return "", nil, err
	}

	cmd := &store.UpdateProfile{
		Email:    email,
		NewName:  strings.TrimSpace(input.Name),
		NewEmail: domain.NormalizeEmail(input.Email),
	}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return "", nil, fmt.Errorf("failed to update profile: %w", err)
	}

	accessToken, err := s.generateAccessToken(cmd.User)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, newProfile(cmd.User), nil
}

// ChangePassword replaces the password after checking the current one
func (s *userService) ChangePassword(ctx context.Context, email string, input PasswordInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	var (
		hash  string
		found bool
	)
	s.store.View(func(st store.State) {
		var u domain.User
		if u, found = st.User(email); found {
			hash = u.PasswordHash
		}
	})
	if !found {
		return domain.ErrUserNotFound
	}
	if err := s.verifyPassword(hash, input.CurrentPassword); err != nil {
		return ErrIncorrectPassword
	}

	newHash, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.Dispatch(ctx, &store.ChangePassword{Email: email, PasswordHash: newHash}); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info("Password changed", zap.String("email", email))
	return nil
}

func (s *userService) AddAddress(ctx context.Context, email string, input AddressInput) (*Profile, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	cmd := &store.AddAddress{Email: email, Address: input.address(uuid.New().String())}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	return newProfile(cmd.User), nil
}

func (s *userService) UpdateAddress(ctx context.Context, email, addressID string, input AddressInput) (*Profile, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	cmd := &store.UpdateAddress{Email: email, Address: input.address(addressID)}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return newProfile(cmd.User), nil
}

func (s *userService) DeleteAddress(ctx context.Context, email, addressID string) (*Profile, error) {
	cmd := &store.DeleteAddress{Email: email, AddressID: addressID}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to delete address: %w", err)
	}
	return newProfile(cmd.User), nil
}

func (s *userService) SetDefaultAddress(ctx context.Context, email, addressID string) (*Profile, error) {
	cmd := &store.SetDefaultAddress{Email: email, AddressID: addressID}
	if err := s.store.Dispatch(ctx, cmd); err != nil {
		return nil, fmt.Errorf("failed to set default address: %w", err)
	}
	return newProfile(cmd.User), nil
}

func (s *userService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *userService) verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// generateAccessToken generates a JWT access token with email and role claims
func (s *userService) generateAccessToken(user domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
