package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/pkg/hash"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
	"github.com/Skotchmaster/marketplace/services/auth/internal/repo"
	"github.com/Skotchmaster/marketplace/services/auth/internal/transport"
)

var (
	ErrValidation         = errors.New("validation")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const DefaultAccessTTL = 15 * time.Minute

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
	Events    EventPublisher
}

func (s *AuthService) CreateAccessToken(userID uint, role string, exp time.Time) (string, error) {
	return tokens.NewAccessToken(userID, role, exp, s.JWTSecret)
}

// Register creates a user with the given role. Only buyer and seller accounts
// can be created.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if role != models.RoleBuyer && role != models.RoleSeller {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: %s", ErrConflict, username)
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	if s.Events != nil {
		ev := mykafka.NewEvent("user_registered", map[string]any{
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
		})
		if err := s.Events.PublishEvent(ctx, mykafka.UserEvents, strconv.FormatUint(uint64(user.ID), 10), ev); err != nil {
			l.Error("user_event_publish_failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*transport.LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.CheckCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	exp := time.Now().Add(ttl)

	token, err := s.CreateAccessToken(user.ID, user.Role, exp)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	return &transport.LoginResult{
		UserID:      user.ID,
		Role:        user.Role,
		AccessToken: token,
		AccessExp:   exp,
	}, nil
}
