package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer input.
	maxPasswordLength = 72
)

var validate = validator.New()

type UserService struct {
	users    interfaces.UserStore
	denylist interfaces.TokenDenylist
	secret   []byte
	expiry   time.Duration
	now      func() time.Time
}

func NewUserService(users interfaces.UserStore, denylist interfaces.TokenDenylist, secret string, expiry time.Duration) *UserService {
	return &UserService{
		users:    users,
		denylist: denylist,
		secret:   []byte(secret),
		expiry:   expiry,
		now:      time.Now,
	}
}

func (s *UserService) Register(ctx context.Context, req interfaces.RegisterRequest) (*database.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case username == "":
		return nil, errors.NewValidationError("username", "Username is required")
	case email == "":
		return nil, errors.NewValidationError("email", "Email is required")
	case req.Password == "":
		return nil, errors.NewValidationError("password", "Password is required")
	case req.Password != req.ConfirmPassword:
		return nil, errors.NewValidationError("confirm_password", "Passwords do not match")
	case len(req.Password) < minPasswordLength:
		return nil, errors.NewValidationError("password",
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	case len(req.Password) > maxPasswordLength:
		return nil, errors.NewValidationError("password",
			fmt.Sprintf("Password must be at most %d bytes", maxPasswordLength))
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, errors.NewValidationError("email", "Email address is not valid")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("Failed to hash password", err)
	}

	user := &database.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"operation": "register",
	}).Info("User registered")
	return user, nil
}

// Login checks credentials and issues a signed token. Unknown email and wrong
// password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *database.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, errors.NewValidationError("email", "Email and password are required")
	}

	invalid := errors.NewAuthenticationError("Invalid email or password")
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return "", nil, invalid
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, invalid
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, errors.NewInternalError("Failed to sign token", err)
	}

	telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"operation": "login",
	}).Info("User logged in")
	return token, user, nil
}

// Logout denylists the token for the rest of its lifetime.
func (s *UserService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.denylist.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return errors.NewCacheError("revoke_token", err)
	}
	return nil
}

func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	revoked, err := s.denylist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return "", errors.NewCacheError("check_token", err)
	}
	if revoked {
		return "", errors.NewAuthenticationError("Token has been revoked")
	}
	return claims.Subject, nil
}

func (s *UserService) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *UserService) parse(token string) (*jwt.RegisteredClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.NewAuthenticationError("Not authenticated")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}
	return claims, nil
}
