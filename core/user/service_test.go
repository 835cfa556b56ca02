package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/auth"
	"github.com/trezcool/koinonia/core/user"
	sqlxrepos "github.com/trezcool/koinonia/storage/database/sqlx"
	"github.com/trezcool/koinonia/testutil"
)

type fixture struct {
	ctx    context.Context
	svc    *user.Service
	repo   user.Repository
	signer *auth.Signer
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)
	repo := sqlxrepos.NewUserRepository(db)
	signer := auth.NewSigner(conf)
	return fixture{
		ctx:    context.Background(),
		svc:    user.NewService(repo, signer),
		repo:   repo,
		signer: signer,
	}
}

// repository that never finds the email, to hit the storage unique constraint
type blindRepository struct {
	user.Repository
}

func (repo blindRepository) EmailExists(context.Context, string, ...core.DBExecutor) (bool, error) {
	return false, nil
}

func TestService_Signup(t *testing.T) {
	f := setup(t)

	usr, err := f.svc.Signup(f.ctx, user.NewUser{Email: "john@example.com", Password: "s3cure-Pa55"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "john@example.com", usr.Email)
	assert.Equal(t, user.RoleMember, usr.Role)
	assert.NoError(t, usr.CheckPassword("s3cure-Pa55"))
	assert.NotEqual(t, []byte("s3cure-Pa55"), usr.PasswordHash)

	stored, err := f.repo.GetUser(f.ctx, user.GetFilter{Email: "john@example.com"})
	require.NoError(t, err)
	assert.Equal(t, usr.ID, stored.ID)
	assert.NoError(t, stored.CheckPassword("s3cure-Pa55"))

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.svc.Signup(f.ctx, user.NewUser{Email: "john@example.com", Password: "an0ther-Pa55"})
		assert.True(t, core.IsConflict(err))
		assert.Equal(t, user.ErrEmailExists, err)
	})

	t.Run("duplicate email caught by storage", func(t *testing.T) {
		svc := user.NewService(blindRepository{f.repo}, f.signer)
		_, err := svc.Signup(f.ctx, user.NewUser{Email: "john@example.com", Password: "an0ther-Pa55"})
		assert.Equal(t, user.ErrEmailExists, err)
	})
}

func TestService_Signin(t *testing.T) {
	f := setup(t)
	usr := testutil.CreateUser(t, f.repo, "john@example.com", "s3cure-Pa55", user.RoleLeader)

	token, err := f.svc.Signin(f.ctx, user.Credentials{Email: "john@example.com", Password: "s3cure-Pa55"})
	require.NoError(t, err)
	claims, err := f.signer.Parse(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, claims.Subject)
	assert.Equal(t, usr.Email, claims.Email)
	assert.Equal(t, user.RoleLeader, claims.Role)

	_, wrongPwdErr := f.svc.Signin(f.ctx, user.Credentials{Email: "john@example.com", Password: "wrong-Pa55"})
	_, unknownErr := f.svc.Signin(f.ctx, user.Credentials{Email: "jane@example.com", Password: "s3cure-Pa55"})

	var authErr *core.AuthError
	require.True(t, errors.As(wrongPwdErr, &authErr))
	assert.Equal(t, "credentials incorrect", wrongPwdErr.Error())
	assert.Equal(t, wrongPwdErr, unknownErr)
}

func TestNewUser_Validate(t *testing.T) {
	validate, translator := testutil.NewValidator()

	tests := []struct {
		name      string
		data      user.NewUser
		wantField string
		wantMsg   string
	}{
		{name: "valid", data: user.NewUser{Email: " John@Example.com ", Password: "s3cure-Pa55"}},
		{
			name:      "missing email",
			data:      user.NewUser{Password: "s3cure-Pa55"},
			wantField: "email",
			wantMsg:   "this field is required",
		},
		{
			name:      "invalid email",
			data:      user.NewUser{Email: "john", Password: "s3cure-Pa55"},
			wantField: "email",
		},
		{
			name:      "short password",
			data:      user.NewUser{Email: "john@example.com", Password: "short"},
			wantField: "password",
			wantMsg:   "password must contain at least 8 characters",
		},
		{
			name:      "password similar to email",
			data:      user.NewUser{Email: "johnsmith@example.com", Password: "johnsmith"},
			wantField: "password",
			wantMsg:   "password cannot be similar to the email",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.data.Validate(validate)
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "john@example.com", tc.data.Email)
				return
			}

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.wantField, verrs[0].Field())
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, verrs[0].Translate(translator))
			}
		})
	}
}
