package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"animeschedule/internal/config"
	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/microservices/http-api/repository"
	"animeschedule/internal/middleware/auth"
	"animeschedule/internal/shared"
	"animeschedule/internal/zonetime"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNameInUse    = fmt.Errorf("username already in use: %w", shared.ErrConflict)
	ErrEmailInUse   = fmt.Errorf("email already in use: %w", shared.ErrConflict)
	ErrInvalidToken = errors.New("invalid token")
)

// dummyHash is compared against when the user does not exist so both
// branches of Login cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, _ := auth.HashPassword(uuid.NewString())
	return hash
})

type AuthService interface {
	// Register requires an IANA timezone; there is no server-zone fallback.
	Register(ctx context.Context, username, password, email, timeZone string) (*models.User, error)
	Login(ctx context.Context, username, password string) (accessToken string, user *models.User, err error)
	ValidateToken(tokenString string) (*shared.AuthClaims, error)
	AccessTokenTTL() time.Duration
}

type authService struct {
	userRepo       repository.UserRepository
	zones          *zonetime.Registry
	jwtSecret      string
	accessTokenTTL time.Duration
	now            func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, zones *zonetime.Registry, cfg *config.Config) AuthService {
	return &authService{
		userRepo:       userRepo,
		zones:          zones,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		now:            time.Now,
	}
}

func (s *authService) Register(ctx context.Context, username, password, email, timeZone string) (*models.User, error) {
	if err := s.zones.Validate(timeZone); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleUser,
		TimeZone: timeZone,
	}

	// the unique indexes still catch a concurrent registration as Conflict
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		_ = auth.VerifyPassword(dummyHash(), password)
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil, shared.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}

	// best effort, a stale last_login never blocks a login
	_ = s.userRepo.TouchLastLogin(ctx, user.ID, s.now())

	return accessToken, user, nil
}

func (s *authService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.accessTokenTTL).Unix(),
		"iat":      now.Unix(),
		"type":     "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)

	return &shared.AuthClaims{UserID: userID, Username: username, Role: role}, nil
}
