package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/group"
)

type groupRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type membershipRow struct {
	MemberID   string    `db:"member_id"`
	GroupID    string    `db:"group_id"`
	AssignedAt time.Time `db:"assigned_at"`
	Member     memberRow `db:"member"`
}

const (
	groupColumns = "id, name, description, created_at, updated_at"

	// memberJoinColumns selects the joined member `m` into a nested memberRow.
	memberJoinColumns = `m.id AS "member.id", m.name AS "member.name", m.birth_date AS "member.birth_date", ` +
		`m.phone AS "member.phone", m.address AS "member.address", m.baptized AS "member.baptized", ` +
		`m.created_at AS "member.created_at", m.updated_at AS "member.updated_at"`
)

type groupRepository struct {
	baseRepository
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{baseRepository{exec: exec}}
}

func (repo groupRepository) toRow(grp group.Group) groupRow {
	return groupRow{
		ID:          grp.ID,
		Name:        grp.Name,
		Description: null.StringFromPtr(grp.Description),
		CreatedAt:   grp.CreatedAt.UTC(),
		UpdatedAt:   grp.UpdatedAt.UTC(),
	}
}

func (repo groupRepository) fromRow(row groupRow) group.Group {
	return group.Group{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.Ptr(),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	q := "INSERT INTO church_groups (" + groupColumns + ") VALUES (:id, :name, :description, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(grp)); err != nil {
		return group.Group{}, trapWriteErr(err, "inserting group")
	}
	return grp, nil
}

func (repo groupRepository) QueryGroups(ctx context.Context, exec ...core.DBExecutor) ([]group.Group, error) {
	var rows []groupRow
	q := "SELECT " + groupColumns + " FROM church_groups ORDER BY name ASC, id ASC"
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, repo.fromRow(row))
	}
	return groups, nil
}

func (repo groupRepository) GetGroup(ctx context.Context, id string, exec ...core.DBExecutor) (group.Group, error) {
	exe := repo.getExec(exec)
	var row groupRow
	err := sqlx.GetContext(ctx, exe, &row, exe.Rebind("SELECT "+groupColumns+" FROM church_groups WHERE id = ?"), id)
	if err != nil {
		return group.Group{}, trapNoRowsErr(err, group.Entity, id, "selecting group")
	}
	return repo.fromRow(row), nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	q := "UPDATE church_groups SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.toRow(grp))
	if err != nil {
		return group.Group{}, trapWriteErr(err, "updating group")
	}
	if err = checkAffected(res, group.Entity, grp.ID); err != nil {
		return group.Group{}, err
	}
	return grp, nil
}

func (repo groupRepository) DeleteGroup(ctx context.Context, id string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	res, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM church_groups WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return checkAffected(res, group.Entity, id)
}

func (repo groupRepository) QueryMemberships(ctx context.Context, groupIDs []string, exec ...core.DBExecutor) ([]group.Membership, error) {
	if len(groupIDs) == 0 {
		return []group.Membership{}, nil
	}
	q, args, err := sqlx.In(
		"SELECT gm.member_id, gm.group_id, gm.assigned_at, "+memberJoinColumns+" "+
			"FROM group_memberships gm JOIN members m ON m.id = gm.member_id "+
			"WHERE gm.group_id IN (?) ORDER BY gm.assigned_at ASC, m.name ASC",
		groupIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building memberships query")
	}

	exe := repo.getExec(exec)
	var rows []membershipRow
	if err = sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting memberships")
	}
	memberships := make([]group.Membership, 0, len(rows))
	for _, row := range rows {
		ms := group.Membership{MemberID: row.MemberID, GroupID: row.GroupID, AssignedAt: row.AssignedAt.UTC()}
		m := memberFromRow(row.Member)
		ms.Member = &m
		memberships = append(memberships, ms)
	}
	return memberships, nil
}

func (repo groupRepository) GetMembership(ctx context.Context, groupID, memberID string, exec ...core.DBExecutor) (group.Membership, error) {
	exe := repo.getExec(exec)
	var row struct {
		MemberID   string    `db:"member_id"`
		GroupID    string    `db:"group_id"`
		AssignedAt time.Time `db:"assigned_at"`
	}
	q := "SELECT member_id, group_id, assigned_at FROM group_memberships WHERE group_id = ? AND member_id = ?"
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), groupID, memberID); err != nil {
		return group.Membership{}, trapNoRowsErr(err, "membership", memberID, "selecting membership")
	}
	return group.Membership{MemberID: row.MemberID, GroupID: row.GroupID, AssignedAt: row.AssignedAt.UTC()}, nil
}

func (repo groupRepository) CreateMembership(ctx context.Context, ms group.Membership, exec ...core.DBExecutor) (group.Membership, error) {
	exe := repo.getExec(exec)
	q := "INSERT INTO group_memberships (member_id, group_id, assigned_at) VALUES (?, ?, ?)"
	if _, err := exe.ExecContext(ctx, exe.Rebind(q), ms.MemberID, ms.GroupID, ms.AssignedAt.UTC()); err != nil {
		return group.Membership{}, trapWriteErr(err, "inserting membership")
	}
	return ms, nil
}

func (repo groupRepository) DeleteMembership(ctx context.Context, groupID, memberID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := "DELETE FROM group_memberships WHERE group_id = ? AND member_id = ?"
	res, err := exe.ExecContext(ctx, exe.Rebind(q), groupID, memberID)
	if err != nil {
		return errors.Wrap(err, "deleting membership")
	}
	return checkAffected(res, "membership", memberID)
}

func (repo groupRepository) DeleteGroupMemberships(ctx context.Context, groupID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	_, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM group_memberships WHERE group_id = ?"), groupID)
	return errors.Wrap(err, "deleting group memberships")
}
