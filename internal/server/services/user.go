// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, access tokens and
// resolving a bearer token back to its user.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/taskkeeper/internal/server/services")

// dummyPassword is hashed once and compared against when a login names an
// unknown email, so both paths spend a bcrypt comparison.
const dummyPassword = "taskkeeper-dummy-password"

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
	Password string  `json:"password" validate:"required"`
}

// LoginInput is the payload of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials
// - IssueToken: mint access tokens
// - Authenticate: resolve a bearer token to a live user
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenService
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      auth.NewBcryptHasher(cfg.BcryptCost),
		tokens:      auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration),
		logger:      logger.With("module", "users"),
	}
}

// Register validates in, hashes the password and stores a new user.
// An email that is already taken yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Register")
	defer span.End()

	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, translate(err)
	}

	name := in.Name
	if name != nil && *name == "" {
		name = nil
	}

	user, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return nil, common.ErrorAlreadyExists
		case !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("error checking email: %w", err)
		}

		u, err := repo.Create(ctx, &models.User{
			Email:        in.Email,
			Name:         name,
			PasswordHash: hash,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating user: %w", err)
		}
		return u, nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Error(ctx, "register failed", "error", err)
		}
		return nil, translate(err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and returns the matching user. Unknown email
// and wrong password are both common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Login")
	defer span.End()

	if in.Email == "" || in.Password == "" {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Check(in.Password, s.getDummyHash())
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return nil, translate(err)
	}

	if !s.hasher.Check(in.Password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// IssueToken mints an access token whose subject is the user id.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, auth.IdentityClaims{Email: user.Email}, 0)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
// Every rejection is common.ErrorUnauthorized; storage outages are
// common.ErrorUnavailable.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, common.ErrorUnauthorized
	}
	if claims.Subject == "" {
		s.logger.Debug(ctx, "token without subject")
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "token subject no longer exists", "user_id", claims.Subject)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	return user, nil
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
