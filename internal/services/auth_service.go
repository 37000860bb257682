package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

type AuthStore interface {
	FindUserByEmail(email string) *models.User
	AddUser(u *models.User)
}

type TokenSigner func(uid, email string, ttl time.Duration) (string, error)

type AuthService struct {
	store         AuthStore
	now           func() time.Time
	idGen         func() string
	signToken     TokenSigner
	tokenTTL      time.Duration
	allowedDomain string // non-empty restricts registration, e.g. "propellic.com"
}

type AuthResult struct {
	Token  string
	UserID string
	Email  string
}

func NewAuthService(store AuthStore, signer TokenSigner, allowedDomain string) *AuthService {
	return &AuthService{
		store:         store,
		now:           func() time.Time { return time.Now().UTC() },
		idGen:         func() string { return "u" + shortID(7) },
		signToken:     signer,
		tokenTTL:      30 * 24 * time.Hour,
		allowedDomain: strings.TrimSpace(allowedDomain),
	}
}

func (s *AuthService) Register(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	if s.allowedDomain != "" && !strings.HasSuffix(email, "@"+s.allowedDomain) {
		return nil, NewForbiddenError("email domain not allowed")
	}
	if existing := s.store.FindUserByEmail(email); existing != nil {
		return nil, NewConflictError("email exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{ID: s.idGen(), Email: email, PassHash: hash, CreatedAt: s.now()}
	s.store.AddUser(u)
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Email: u.Email}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u := s.store.FindUserByEmail(email)
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, Email: u.Email}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
