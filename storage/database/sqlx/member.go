package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

type memberRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	BirthDate time.Time   `db:"birth_date"`
	Phone     null.String `db:"phone"`
	Address   null.String `db:"address"`
	Baptized  bool        `db:"baptized"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

const memberColumns = "id, name, birth_date, phone, address, baptized, created_at, updated_at"

func memberToRow(m member.Member) memberRow {
	return memberRow{
		ID:        m.ID,
		Name:      m.Name,
		BirthDate: m.BirthDate.UTC(),
		Phone:     null.StringFromPtr(m.Phone),
		Address:   null.StringFromPtr(m.Address),
		Baptized:  m.Baptized,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func memberFromRow(row memberRow) member.Member {
	return member.Member{
		ID:        row.ID,
		Name:      row.Name,
		BirthDate: row.BirthDate.UTC(),
		Phone:     row.Phone.Ptr(),
		Address:   row.Address.Ptr(),
		Baptized:  row.Baptized,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type memberRepository struct {
	baseRepository
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(exec core.DBExecutor) *memberRepository {
	return &memberRepository{baseRepository{exec: exec}}
}

func (repo memberRepository) CreateMember(ctx context.Context, m member.Member, exec ...core.DBExecutor) (member.Member, error) {
	q := "INSERT INTO members (" + memberColumns + ") " +
		"VALUES (:id, :name, :birth_date, :phone, :address, :baptized, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, memberToRow(m)); err != nil {
		return member.Member{}, trapWriteErr(err, "inserting member")
	}
	return m, nil
}

func (repo memberRepository) QueryMembers(
	ctx context.Context,
	filter member.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]member.Member, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Search != "" {
		conds = append(conds, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Baptized != nil {
		conds = append(conds, "baptized = ?")
		args = append(args, *filter.Baptized)
	}

	q := "SELECT " + memberColumns + " FROM members"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += orderBy(ordering, member.OrderingFields, "name ASC, id ASC")

	exe := repo.getExec(exec)
	var rows []memberRow
	if err := sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting members")
	}
	members := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, memberFromRow(row))
	}
	return members, nil
}

func (repo memberRepository) GetMember(ctx context.Context, id string, exec ...core.DBExecutor) (member.Member, error) {
	exe := repo.getExec(exec)
	var row memberRow
	err := sqlx.GetContext(ctx, exe, &row, exe.Rebind("SELECT "+memberColumns+" FROM members WHERE id = ?"), id)
	if err != nil {
		return member.Member{}, trapNoRowsErr(err, member.Entity, id, "selecting member")
	}
	return memberFromRow(row), nil
}

func (repo memberRepository) UpdateMember(ctx context.Context, m member.Member, exec ...core.DBExecutor) (member.Member, error) {
	q := "UPDATE members SET name = :name, birth_date = :birth_date, phone = :phone, address = :address, " +
		"baptized = :baptized, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, memberToRow(m))
	if err != nil {
		return member.Member{}, trapWriteErr(err, "updating member")
	}
	if err = checkAffected(res, member.Entity, m.ID); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (repo memberRepository) DeleteMember(ctx context.Context, id string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	res, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM members WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return checkAffected(res, member.Entity, id)
}

func (repo memberRepository) DeleteMemberAttendance(ctx context.Context, memberID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	_, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM attendances WHERE student_id = ?"), memberID)
	return errors.Wrap(err, "deleting attendances")
}

func (repo memberRepository) DeleteMemberAssignments(ctx context.Context, memberID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	_, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM class_assignments WHERE member_id = ?"), memberID)
	return errors.Wrap(err, "deleting class assignments")
}

func (repo memberRepository) DeleteMemberMemberships(ctx context.Context, memberID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	_, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM group_memberships WHERE member_id = ?"), memberID)
	return errors.Wrap(err, "deleting group memberships")
}
