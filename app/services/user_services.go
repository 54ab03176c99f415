package services

import (
	"context"
	"errors"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/repositories"
	"github.com/turnosapp/turnos/pkg/apperr"
	"github.com/turnosapp/turnos/pkg/auth"
)

const maxPasswordBytes = 72

// UserInput is the body of register and PUT /usuario/{id}.
type UserInput struct {
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"rol"      validate:"required"`
}

type UserService struct {
	users   UserStore
	summary Invalidator
}

func NewUserService(users UserStore, summary Invalidator) *UserService {
	return &UserService{users: users, summary: summary}
}

// List returns every user, inactive ones included.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("No users found")
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("No user found with id %s", id.Hex())
	}
	return user, nil
}

// Update replaces email, password and role. The password is hashed again.
func (s *UserService) Update(ctx context.Context, rawID string, in UserInput) (*models.User, error) {
	user, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := checkUser(&in); err != nil {
		return nil, err
	}

	email := in.Email
	if email != user.Email {
		taken, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken != nil && taken.ID != user.ID {
			return nil, apperr.Conflict("The email %s is already registered", email)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user.Email = email
	user.Password = hash
	user.Role = in.Role

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, apperr.Conflict("The email %s is already registered", email)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperr.NotFound("No user found with id %s", user.ID.Hex())
		}
		return nil, err
	}
	return user, nil
}

// Deactivate is the soft delete of a user.
func (s *UserService) Deactivate(ctx context.Context, rawID string) (*models.User, error) {
	user, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Deactivate(ctx, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("No user found with id %s", user.ID.Hex())
		}
		return nil, err
	}
	user.Active = false
	invalidate(ctx, s.summary)

	return user, nil
}

// checkUser normalizes the email, then validates presence, formats and
// role, in that order.
func checkUser(in *UserInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := check(in); err != nil {
		return err
	}
	// bcrypt's limit is in bytes, not characters.
	if len(in.Password) > maxPasswordBytes {
		return apperr.BadRequest("The password must not exceed %d bytes.", maxPasswordBytes)
	}
	if !in.Role.Valid() {
		return apperr.BadRequest("The role %s is not valid", in.Role)
	}
	return nil
}
