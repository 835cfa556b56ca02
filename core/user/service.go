package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/auth"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = core.NewConflictError("a user with this email already exists")
	ErrInvalidCredentials = core.NewAuthError("credentials incorrect")
)

type (
	Repository interface {
		EmailExists(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error)
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	TokenSigner interface {
		SignToken(userID, email, role string) (string, error)
	}

	Service struct {
		repo   Repository
		tokens TokenSigner
	}
)

func NewService(repo Repository, tokens TokenSigner) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Signup registers a new User with the MEMBER role.
func (svc *Service) Signup(ctx context.Context, nu NewUser) (User, error) {
	exists, err := svc.repo.EmailExists(ctx, nu.Email)
	if err != nil {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return User{}, ErrEmailExists
	}

	now := core.Now()
	usr := User{
		ID:        uuid.NewString(),
		Email:     nu.Email,
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Is(err, core.ErrUniqueViolation) {
			return User{}, ErrEmailExists
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Signin verifies the credentials and issues an access token.
// An unknown email and a wrong password fail identically.
func (svc *Service) Signin(ctx context.Context, creds Credentials) (auth.AccessToken, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: creds.Email})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.AccessToken{}, ErrInvalidCredentials
		}
		return auth.AccessToken{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return auth.AccessToken{}, ErrInvalidCredentials
	}

	token, err := svc.tokens.SignToken(usr.ID, usr.Email, usr.Role)
	if err != nil {
		return auth.AccessToken{}, errors.Wrap(err, "signing token")
	}
	return auth.AccessToken{AccessToken: token}, nil
}
