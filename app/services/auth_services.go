package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/repositories"
	"github.com/turnosapp/turnos/pkg/apperr"
	"github.com/turnosapp/turnos/pkg/auth"
	"github.com/turnosapp/turnos/pkg/logger"
	"github.com/turnosapp/turnos/pkg/metrics"
)

type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users   UserStore
	summary Invalidator
}

func NewAuthService(users UserStore, summary Invalidator) *AuthService {
	return &AuthService{users: users, summary: summary}
}

// Register creates an administrator and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in UserInput) (*AuthResult, error) {
	if err := checkUser(&in); err != nil {
		return nil, err
	}

	email := in.Email
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("The email %s is already registered", email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: hash, Role: in.Role, Active: true}
	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the lookup; the unique
		// index settles it.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperr.Conflict("The email %s is already registered", email)
		}
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID.Hex(), "email", user.Email)
	invalidate(ctx, s.summary)

	return &AuthResult{Token: token, User: user}, nil
}

// Login checks the credentials and issues a token. A wrong password never
// yields a token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := check(&in); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		metrics.LoginAttempts.WithLabelValues("unknown_email").Inc()
		return nil, apperr.NotFound("No user registered with email %s", email)
	}

	if !auth.CheckPassword(user.Password, in.Password) {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if !user.Active {
		metrics.LoginAttempts.WithLabelValues("inactive").Inc()
		return nil, apperr.Forbidden("The user %s is inactive", email)
	}

	token, err := auth.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &AuthResult{Token: token, User: user}, nil
}

// ResolveIdentity is what the Auth Gate uses to turn a token's user id into
// the current caller. Unknown and inactive users are rejected.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID string) (auth.Identity, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("token user id %q: %w", userID, err)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	if user == nil {
		return auth.Identity{}, fmt.Errorf("user %s not found", userID)
	}
	if !user.Active {
		return auth.Identity{}, fmt.Errorf("user %s is inactive", userID)
	}

	return auth.Identity{UserID: user.ID.Hex(), Role: string(user.Role)}, nil
}

// EnsureAdmin creates an active administrator with email and password when
// no user has that email yet. It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	in := UserInput{Email: email, Password: password, Role: models.RoleAdministrator}
	if err := checkUser(&in); err != nil {
		return false, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if _, err := s.Register(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}
