package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/group"
	"github.com/trezcool/koinonia/core/member"
	"github.com/trezcool/koinonia/core/school"
	"github.com/trezcool/koinonia/core/user"
)

func CreateUser(t *testing.T, repo user.Repository, email, pwd, role string) user.User {
	t.Helper()
	now := core.Now()
	usr := user.User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateMember(t *testing.T, repo member.Repository, name string, birthDate time.Time, baptized ...bool) member.Member {
	t.Helper()
	now := core.Now()
	m := member.Member{
		ID:        uuid.NewString(),
		Name:      name,
		BirthDate: core.NoonUTC(birthDate),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(baptized) > 0 {
		m.Baptized = baptized[0]
	}
	m, err := repo.CreateMember(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return m
}

func CreateGroup(t *testing.T, repo group.Repository, name string) group.Group {
	t.Helper()
	now := core.Now()
	grp, err := repo.CreateGroup(context.Background(), group.Group{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreateClass(t *testing.T, repo school.Repository, name string) school.Class {
	t.Helper()
	now := core.Now()
	cls, err := repo.CreateClass(context.Background(), school.Class{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

// Date builds a calendar date at 00:00 UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
