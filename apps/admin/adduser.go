package main

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/user"
)

func isRole(role string) vala.Checker {
	return func() (bool, string) {
		for _, r := range user.AllRoles {
			if role == r {
				return true, ""
			}
		}
		return false, user.InvalidRoleText
	}
}

func passwordPolicy(pwd, email string) vala.Checker {
	return func() (bool, string) {
		if tag := user.CheckPassword(pwd, email); tag != "" {
			return false, user.PasswordPolicyText(tag)
		}
		return true, ""
	}
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, role, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	role = strings.ToUpper(core.CleanString(role))

	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(email, "email"),
		isRole(role),
		passwordPolicy(pwd, email),
	).Check(); err != nil {
		return err
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	found := err == nil
	if err != nil && err != user.ErrNotFound {
		return errors.Wrap(err, "finding user")
	}

	now := core.Now()
	if !found {
		usr = user.User{
			ID:        uuid.NewString(),
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.Role = role
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if found {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return errors.Wrap(err, "updating user")
	}
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return errors.Wrap(err, "creating user")
}
