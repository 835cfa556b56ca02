package main

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/koinonia/core/user"
	"github.com/trezcool/koinonia/storage/database"
	sqlxrepos "github.com/trezcool/koinonia/storage/database/sqlx"
	"github.com/trezcool/koinonia/testutil"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)

	// start CLI
	return &commandLine{
		db:      db,
		usrRepo: usrRepo,
	}
}

func mockPassword(t *testing.T, pwd string) {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = nil })
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				require.NoError(t, err)
				if check != nil {
					check(t, tt)
				}
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without subcommand", args: []string{"migrate"}, wantErr: errHelp},
	}, nil)
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	var gotArgs []string
	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		gotCommand, gotArgs = command, args
		return nil
	}
	t.Cleanup(func() { migrateFunc = database.Migrate })

	tests := []struct {
		args        []string
		wantCommand string
		wantArgs    []string
	}{
		{args: []string{"migrate", "up"}, wantCommand: "up", wantArgs: []string{}},
		{args: []string{"migrate", "down-to", "1"}, wantCommand: "down-to", wantArgs: []string{"1"}},
		{args: []string{"migrate", "status"}, wantCommand: "status", wantArgs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.wantCommand, func(t *testing.T) {
			require.NoError(t, cli.run(append([]string{"admin"}, tt.args...)))
			assert.Equal(t, tt.wantCommand, gotCommand)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}

	t.Run("against the database", func(t *testing.T) {
		migrateFunc = database.Migrate

		require.NoError(t, cli.run([]string{"admin", "migrate", "reset"}))
		var n int
		assert.Error(t, cli.db.Get(&n, "SELECT COUNT(*) FROM users"))

		require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))
		assert.NoError(t, cli.db.Get(&n, "SELECT COUNT(*) FROM users"))

		err := cli.run([]string{"admin", "migrate", "lol"})
		assert.Error(t, err)
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-email", "admin@koinonia.test"}, wantErr: errHelp},
		{
			name: "invalid role", args: []string{"adduser", "-email", "admin@koinonia.test", "-role", "lol"},
			pwd: "s3cure-Pa55", wantErrStr: "role must be one of ADMIN, LEADER, MEMBER",
		},
		{
			name: "weak password", args: []string{"adduser", "-email", "admin@koinonia.test"},
			pwd: "short", wantErrStr: "password must contain at least 8 characters",
		},
		{name: "create admin", args: []string{"adduser", "-email", " Admin@Koinonia.test "}, pwd: "s3cure-Pa55"},
		{name: "update role and password", args: []string{"adduser", "-email", "admin@koinonia.test", "-role", "leader"}, pwd: "an0ther-Pa55"},
	}
	runCLITests(t, cli, tests, func(t *testing.T, tt cliTest) {
		usr, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "admin@koinonia.test"})
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword(tt.pwd))
	})

	usr, err := usrRepo.GetUser(ctx, user.GetFilter{Email: "admin@koinonia.test"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleLeader, usr.Role)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, usrRepo, "john@koinonia.test", "s3cure-Pa55", user.RoleMember)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "john@koinonia.test"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@koinonia.test"}, pwd: "an0ther-Pa55", wantErr: user.ErrNotFound},
		{
			name: "weak password", args: []string{"resetpassword", "-email", "john@koinonia.test"},
			pwd: "john@koinonia.test", wantErrStr: "password cannot be similar to the email",
		},
		{name: "reset", args: []string{"resetpassword", "-email", "JOHN@koinonia.test"}, pwd: "an0ther-Pa55"},
	}
	runCLITests(t, cli, tests, func(t *testing.T, tt cliTest) {
		refreshed, err := usrRepo.GetUser(ctx, user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.NotEqual(t, usr.PasswordHash, refreshed.PasswordHash)
		assert.NoError(t, refreshed.CheckPassword(tt.pwd))
	})
}
