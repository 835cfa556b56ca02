package member

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
)

type (
	Repository interface {
		CreateMember(ctx context.Context, m Member, exec ...core.DBExecutor) (Member, error)
		// QueryMembers applies AND operation on available QueryFilter fields.
		QueryMembers(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Member, error)
		GetMember(ctx context.Context, id string, exec ...core.DBExecutor) (Member, error)
		UpdateMember(ctx context.Context, m Member, exec ...core.DBExecutor) (Member, error)
		DeleteMember(ctx context.Context, id string, exec ...core.DBExecutor) error

		// rows owned by the groups and biblical school modules that reference a member
		DeleteMemberAttendance(ctx context.Context, memberID string, exec ...core.DBExecutor) error
		DeleteMemberAssignments(ctx context.Context, memberID string, exec ...core.DBExecutor) error
		DeleteMemberMemberships(ctx context.Context, memberID string, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, nm NewMember) (Member, error) {
	birthDate, err := core.ParseDate(nm.BirthDate)
	if err != nil {
		return Member{}, core.NewValidationError(err, core.FieldError{Field: "birthDate", Error: err.Error()})
	}

	now := core.Now()
	m := Member{
		ID:        uuid.NewString(),
		Name:      nm.Name,
		BirthDate: core.NoonUTC(birthDate),
		Phone:     nm.Phone,
		Address:   nm.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nm.Baptized != nil {
		m.Baptized = *nm.Baptized
	}

	m, err = svc.repo.CreateMember(ctx, m)
	return m, errors.Wrap(err, "creating member")
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Member, error) {
	members, err := svc.repo.QueryMembers(ctx, filter, ordering)
	return members, errors.Wrap(err, "querying members")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return svc.repo.GetMember(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateMember) (Member, error) {
	var m Member
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if m, err = svc.repo.GetMember(ctx, id, tx); err != nil {
			return err
		}

		if um.Name != nil {
			m.Name = *um.Name
		}
		if um.BirthDate != nil {
			birthDate, err := core.ParseDate(*um.BirthDate)
			if err != nil {
				return core.NewValidationError(err, core.FieldError{Field: "birthDate", Error: err.Error()})
			}
			m.BirthDate = core.NoonUTC(birthDate)
		}
		if um.Phone != nil {
			m.Phone = core.CleanOptional(um.Phone)
		}
		if um.Address != nil {
			m.Address = core.CleanOptional(um.Address)
		}
		if um.Baptized != nil {
			m.Baptized = *um.Baptized
		}
		m.UpdatedAt = core.Now()

		m, err = svc.repo.UpdateMember(ctx, m, tx)
		return errors.Wrap(err, "updating member")
	})
	if err != nil {
		return Member{}, err
	}
	return m, nil
}

// Delete removes the member together with its attendance records, class assignments and group memberships.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetMember(ctx, id, tx); err != nil {
			return err
		}
		if err := svc.repo.DeleteMemberAttendance(ctx, id, tx); err != nil {
			return errors.Wrap(err, "deleting member attendance")
		}
		if err := svc.repo.DeleteMemberAssignments(ctx, id, tx); err != nil {
			return errors.Wrap(err, "deleting member class assignments")
		}
		if err := svc.repo.DeleteMemberMemberships(ctx, id, tx); err != nil {
			return errors.Wrap(err, "deleting member group memberships")
		}
		return errors.Wrap(svc.repo.DeleteMember(ctx, id, tx), "deleting member")
	})
}
