package services

import (
	"context"
	stderrors "errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/welth-app/welth/internal/domain/user"
	"github.com/welth-app/welth/internal/identity"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
)

const (
	// MsgInvalidUsername is returned when a login username normalizes to nothing
	MsgInvalidUsername = "Ingresa un usuario válido"
	// MsgPasswordTooLong is returned for passwords bcrypt cannot hash
	MsgPasswordTooLong = "La contraseña debe tener como máximo 72 bytes"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// UserService implements user.Service
type UserService struct {
	repo           user.Repository
	logger         *logger.Logger
	bcryptCost     int
	signupsEnabled bool
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, log *logger.Logger, bcryptCost int, signupsEnabled bool) *UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		repo:           repo,
		logger:         log,
		bcryptCost:     bcryptCost,
		signupsEnabled: signupsEnabled,
	}
}

// Register creates an account for the normalized form of rawUsername
func (s *UserService) Register(ctx context.Context, rawUsername, password string) (*user.User, error) {
	handle := identity.Normalize(rawUsername)
	if err := identity.ValidateHandle(handle); err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	if !s.signupsEnabled {
		return nil, errors.Forbidden(identity.HumanizeProviderError(identity.ProviderSignupsDisabled))
	}

	if len(password) > MaxPasswordBytes {
		return nil, errors.BadRequest(MsgPasswordTooLong)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if stderrors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errors.BadRequest(MsgPasswordTooLong)
	}
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	u := &user.User{
		Username:     handle,
		Email:        identity.SyntheticEmail(handle),
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Code(err) == errors.ErrCodeConflict {
			return nil, errors.Conflict(identity.HumanizeProviderError(errors.As(err).Message))
		}
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("User registered")

	return u, nil
}

// Authenticate checks password against the account behind rawUsername
func (s *UserService) Authenticate(ctx context.Context, rawUsername, password string) (*user.User, error) {
	email := identity.SyntheticEmail(rawUsername)
	if email == "" {
		return nil, errors.BadRequest(MsgInvalidUsername)
	}

	invalid := errors.Unauthenticated(identity.HumanizeProviderError(identity.ProviderInvalidLogin))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Code(err) == errors.ErrCodeNotFound {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NotFound("User")
	}
	return s.repo.GetByID(ctx, id)
}
