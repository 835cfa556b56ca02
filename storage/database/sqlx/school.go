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
	"github.com/trezcool/koinonia/core/school"
)

type classRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type participantRow struct {
	MemberID   string    `db:"member_id"`
	ClassID    string    `db:"class_id"`
	Role       string    `db:"role"`
	AssignedAt time.Time `db:"assigned_at"`
	Member     memberRow `db:"member"`
}

type attendanceRow struct {
	ID        string    `db:"id"`
	ClassID   string    `db:"class_id"`
	StudentID string    `db:"student_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// attendanceStudentRow is an attendanceRow with its student joined. The student columns are nullable so that
// the same scan serves queries without the join.
type attendanceStudentRow struct {
	attendanceRow
	Student struct {
		ID        null.String `db:"id"`
		Name      null.String `db:"name"`
		BirthDate null.Time   `db:"birth_date"`
		Phone     null.String `db:"phone"`
		Address   null.String `db:"address"`
		Baptized  null.Bool   `db:"baptized"`
		CreatedAt null.Time   `db:"created_at"`
		UpdatedAt null.Time   `db:"updated_at"`
	} `db:"member"`
}

const (
	classColumns      = "id, name, description, created_at, updated_at"
	attendanceColumns = "a.id, a.class_id, a.student_id, a.date, a.status, a.created_at, a.updated_at"
)

type schoolRepository struct {
	baseRepository
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) *schoolRepository {
	return &schoolRepository{baseRepository{exec: exec}}
}

func (repo schoolRepository) classToRow(cls school.Class) classRow {
	return classRow{
		ID:          cls.ID,
		Name:        cls.Name,
		Description: null.StringFromPtr(cls.Description),
		CreatedAt:   cls.CreatedAt.UTC(),
		UpdatedAt:   cls.UpdatedAt.UTC(),
	}
}

func (repo schoolRepository) classFromRow(row classRow) school.Class {
	return school.Class{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.Ptr(),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo schoolRepository) attendanceFromRow(row attendanceRow) school.Attendance {
	return school.Attendance{
		ID:        row.ID,
		ClassID:   row.ClassID,
		StudentID: row.StudentID,
		Date:      core.StartOfDayUTC(row.Date.UTC()),
		Status:    row.Status,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

// Classes

func (repo schoolRepository) CreateClass(ctx context.Context, cls school.Class, exec ...core.DBExecutor) (school.Class, error) {
	q := "INSERT INTO school_classes (" + classColumns + ") VALUES (:id, :name, :description, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.classToRow(cls)); err != nil {
		return school.Class{}, trapWriteErr(err, "inserting class")
	}
	return cls, nil
}

func (repo schoolRepository) QueryClasses(ctx context.Context, exec ...core.DBExecutor) ([]school.Class, error) {
	var rows []classRow
	q := "SELECT " + classColumns + " FROM school_classes ORDER BY name ASC, id ASC"
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	classes := make([]school.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, repo.classFromRow(row))
	}
	return classes, nil
}

func (repo schoolRepository) GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (school.Class, error) {
	exe := repo.getExec(exec)
	var row classRow
	err := sqlx.GetContext(ctx, exe, &row, exe.Rebind("SELECT "+classColumns+" FROM school_classes WHERE id = ?"), id)
	if err != nil {
		return school.Class{}, trapNoRowsErr(err, school.Entity, id, "selecting class")
	}
	return repo.classFromRow(row), nil
}

func (repo schoolRepository) UpdateClass(ctx context.Context, cls school.Class, exec ...core.DBExecutor) (school.Class, error) {
	q := "UPDATE school_classes SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, repo.classToRow(cls))
	if err != nil {
		return school.Class{}, trapWriteErr(err, "updating class")
	}
	if err = checkAffected(res, school.Entity, cls.ID); err != nil {
		return school.Class{}, err
	}
	return cls, nil
}

func (repo schoolRepository) DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	res, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM school_classes WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return checkAffected(res, school.Entity, id)
}

// Participants

func (repo schoolRepository) QueryParticipants(ctx context.Context, classIDs []string, exec ...core.DBExecutor) ([]school.Participant, error) {
	if len(classIDs) == 0 {
		return []school.Participant{}, nil
	}
	q, args, err := sqlx.In(
		"SELECT ca.member_id, ca.class_id, ca.role, ca.assigned_at, "+memberJoinColumns+" "+
			"FROM class_assignments ca JOIN members m ON m.id = ca.member_id "+
			"WHERE ca.class_id IN (?) ORDER BY ca.role DESC, m.name ASC",
		classIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building participants query")
	}

	exe := repo.getExec(exec)
	var rows []participantRow
	if err = sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting participants")
	}
	participants := make([]school.Participant, 0, len(rows))
	for _, row := range rows {
		m := memberFromRow(row.Member)
		participants = append(participants, school.Participant{
			MemberID:   row.MemberID,
			ClassID:    row.ClassID,
			Role:       row.Role,
			AssignedAt: row.AssignedAt.UTC(),
			Member:     &m,
		})
	}
	return participants, nil
}

func (repo schoolRepository) GetParticipant(ctx context.Context, classID, memberID string, exec ...core.DBExecutor) (school.Participant, error) {
	exe := repo.getExec(exec)
	var row struct {
		MemberID   string    `db:"member_id"`
		ClassID    string    `db:"class_id"`
		Role       string    `db:"role"`
		AssignedAt time.Time `db:"assigned_at"`
	}
	q := "SELECT member_id, class_id, role, assigned_at FROM class_assignments WHERE class_id = ? AND member_id = ?"
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), classID, memberID); err != nil {
		return school.Participant{}, trapNoRowsErr(err, "participant", memberID, "selecting participant")
	}
	return school.Participant{
		MemberID:   row.MemberID,
		ClassID:    row.ClassID,
		Role:       row.Role,
		AssignedAt: row.AssignedAt.UTC(),
	}, nil
}

func (repo schoolRepository) CreateParticipant(ctx context.Context, p school.Participant, exec ...core.DBExecutor) (school.Participant, error) {
	exe := repo.getExec(exec)
	q := "INSERT INTO class_assignments (member_id, class_id, role, assigned_at) VALUES (?, ?, ?, ?)"
	if _, err := exe.ExecContext(ctx, exe.Rebind(q), p.MemberID, p.ClassID, p.Role, p.AssignedAt.UTC()); err != nil {
		return school.Participant{}, trapWriteErr(err, "inserting participant")
	}
	return p, nil
}

func (repo schoolRepository) DeleteParticipant(ctx context.Context, classID, memberID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := "DELETE FROM class_assignments WHERE class_id = ? AND member_id = ?"
	res, err := exe.ExecContext(ctx, exe.Rebind(q), classID, memberID)
	if err != nil {
		return errors.Wrap(err, "deleting participant")
	}
	return checkAffected(res, "participant", memberID)
}

func (repo schoolRepository) DeleteClassParticipants(ctx context.Context, classID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	_, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM class_assignments WHERE class_id = ?"), classID)
	return errors.Wrap(err, "deleting class participants")
}

// Attendance

func (repo schoolRepository) QueryAttendance(ctx context.Context, filter school.AttendanceFilter, exec ...core.DBExecutor) ([]school.Attendance, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ClassIDs != nil {
		if len(filter.ClassIDs) == 0 {
			return []school.Attendance{}, nil
		}
		conds = append(conds, "a.class_id IN (?)")
		args = append(args, filter.ClassIDs)
	}
	if !filter.Date.IsZero() {
		conds = append(conds, "a.date = ?")
		args = append(args, core.StartOfDayUTC(filter.Date))
	}

	q := "SELECT " + attendanceColumns
	if filter.WithStudent {
		q += ", " + memberJoinColumns + " FROM attendances a JOIN members m ON m.id = a.student_id"
	} else {
		q += " FROM attendances a"
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY a.date ASC, a.created_at ASC, a.id ASC"

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building attendance query")
	}

	exe := repo.getExec(exec)
	var rows []attendanceStudentRow
	if err = sqlx.SelectContext(ctx, exe, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	attendances := make([]school.Attendance, 0, len(rows))
	for _, row := range rows {
		att := repo.attendanceFromRow(row.attendanceRow)
		if s := row.Student; s.ID.Valid {
			att.Student = &member.Member{
				ID:        s.ID.String,
				Name:      s.Name.String,
				BirthDate: s.BirthDate.Time.UTC(),
				Phone:     s.Phone.Ptr(),
				Address:   s.Address.Ptr(),
				Baptized:  s.Baptized.Bool,
				CreatedAt: s.CreatedAt.Time.UTC(),
				UpdatedAt: s.UpdatedAt.Time.UTC(),
			}
		}
		attendances = append(attendances, att)
	}
	return attendances, nil
}

func (repo schoolRepository) GetAttendance(ctx context.Context, id string, exec ...core.DBExecutor) (school.Attendance, error) {
	exe := repo.getExec(exec)
	var row attendanceRow
	q := "SELECT " + attendanceColumns + " FROM attendances a WHERE a.id = ?"
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), id); err != nil {
		return school.Attendance{}, trapNoRowsErr(err, school.AttendanceEntity, id, "selecting attendance")
	}
	return repo.attendanceFromRow(row), nil
}

func (repo schoolRepository) FindAttendance(
	ctx context.Context,
	classID, studentID string,
	date time.Time,
	exec ...core.DBExecutor,
) (school.Attendance, error) {
	exe := repo.getExec(exec)
	var row attendanceRow
	q := "SELECT " + attendanceColumns + " FROM attendances a WHERE a.date = ? AND a.student_id = ? AND a.class_id = ?"
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(q), core.StartOfDayUTC(date), studentID, classID); err != nil {
		return school.Attendance{}, trapNoRowsErr(err, school.AttendanceEntity, studentID, "selecting attendance")
	}
	return repo.attendanceFromRow(row), nil
}

func (repo schoolRepository) CreateAttendance(ctx context.Context, a school.Attendance, exec ...core.DBExecutor) (school.Attendance, error) {
	exe := repo.getExec(exec)
	q := "INSERT INTO attendances (id, class_id, student_id, date, status, created_at, updated_at) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := exe.ExecContext(ctx, exe.Rebind(q),
		a.ID, a.ClassID, a.StudentID, core.StartOfDayUTC(a.Date), a.Status, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		return school.Attendance{}, trapWriteErr(err, "inserting attendance")
	}
	return a, nil
}

// UpdateAttendance only persists the status (and updated_at) of the record.
func (repo schoolRepository) UpdateAttendance(ctx context.Context, a school.Attendance, exec ...core.DBExecutor) (school.Attendance, error) {
	exe := repo.getExec(exec)
	res, err := exe.ExecContext(ctx, exe.Rebind("UPDATE attendances SET status = ?, updated_at = ? WHERE id = ?"),
		a.Status, a.UpdatedAt.UTC(), a.ID)
	if err != nil {
		return school.Attendance{}, trapWriteErr(err, "updating attendance")
	}
	if err = checkAffected(res, school.AttendanceEntity, a.ID); err != nil {
		return school.Attendance{}, err
	}
	return a, nil
}

func (repo schoolRepository) DeleteClassAttendance(ctx context.Context, classID string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	_, err := exe.ExecContext(ctx, exe.Rebind("DELETE FROM attendances WHERE class_id = ?"), classID)
	return errors.Wrap(err, "deleting class attendance")
}
