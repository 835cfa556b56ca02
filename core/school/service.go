package school

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

var errDateRequired = errors.New("date is required")

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		QueryClasses(ctx context.Context, exec ...core.DBExecutor) ([]Class, error)
		GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (Class, error)
		UpdateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error

		// QueryParticipants returns the participants of the given classes, with their Member.
		QueryParticipants(ctx context.Context, classIDs []string, exec ...core.DBExecutor) ([]Participant, error)
		GetParticipant(ctx context.Context, classID, memberID string, exec ...core.DBExecutor) (Participant, error)
		CreateParticipant(ctx context.Context, p Participant, exec ...core.DBExecutor) (Participant, error)
		DeleteParticipant(ctx context.Context, classID, memberID string, exec ...core.DBExecutor) error
		DeleteClassParticipants(ctx context.Context, classID string, exec ...core.DBExecutor) error

		// QueryAttendance applies AND operation on available AttendanceFilter fields.
		QueryAttendance(ctx context.Context, filter AttendanceFilter, exec ...core.DBExecutor) ([]Attendance, error)
		GetAttendance(ctx context.Context, id string, exec ...core.DBExecutor) (Attendance, error)
		FindAttendance(ctx context.Context, classID, studentID string, date time.Time, exec ...core.DBExecutor) (Attendance, error)
		CreateAttendance(ctx context.Context, a Attendance, exec ...core.DBExecutor) (Attendance, error)
		UpdateAttendance(ctx context.Context, a Attendance, exec ...core.DBExecutor) (Attendance, error)
		DeleteClassAttendance(ctx context.Context, classID string, exec ...core.DBExecutor) error
	}

	AttendanceFilter struct {
		ClassIDs    []string
		Date        time.Time // zero means any day
		WithStudent bool
	}

	MemberFinder interface {
		GetMember(ctx context.Context, id string, exec ...core.DBExecutor) (member.Member, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		members MemberFinder
	}
)

func NewService(db core.DB, repo Repository, members MemberFinder) *Service {
	return &Service{db: db, repo: repo, members: members}
}

func errAlreadyAssigned(classID, memberID string) error {
	return core.NewConflictError("member %s is already assigned to class %s", memberID, classID)
}

func errNotAssigned(classID, memberID string) error {
	return &core.NotFoundError{
		Entity:  "participant",
		ID:      memberID,
		Message: fmt.Sprintf("member %s is not assigned to class %s", memberID, classID),
	}
}

func errInvalidChoice(field, value string, choices []string) error {
	err := errors.Errorf("%s must be one of %v", field, choices)
	return core.NewValidationError(err, core.FieldError{Field: field, Error: fmt.Sprintf("invalid %s %q", field, value)})
}

func isOneOf(value string, choices []string) bool {
	for _, c := range choices {
		if value == c {
			return true
		}
	}
	return false
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := core.Now()
	cls := Class{
		ID:           uuid.NewString(),
		Name:         nc.Name,
		Description:  nc.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
		Participants: []Participant{},
		Attendances:  []Attendance{},
	}
	cls, err := svc.repo.CreateClass(ctx, cls)
	return cls, errors.Wrap(err, "creating class")
}

// QueryAll returns every class with its participants and attendance records.
func (svc *Service) QueryAll(ctx context.Context) ([]Class, error) {
	classes, err := svc.repo.QueryClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	if err = svc.loadRelations(ctx, classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	cls, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	classes := []Class{cls}
	if err = svc.loadRelations(ctx, classes); err != nil {
		return Class{}, err
	}
	return classes[0], nil
}

func (svc *Service) loadRelations(ctx context.Context, classes []Class) error {
	if len(classes) == 0 {
		return nil
	}
	ids := make([]string, len(classes))
	for i, cls := range classes {
		ids[i] = cls.ID
	}

	participants, err := svc.repo.QueryParticipants(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "querying participants")
	}
	attendances, err := svc.repo.QueryAttendance(ctx, AttendanceFilter{ClassIDs: ids})
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}

	partsByClass := make(map[string][]Participant, len(classes))
	for _, p := range participants {
		partsByClass[p.ClassID] = append(partsByClass[p.ClassID], p)
	}
	attByClass := make(map[string][]Attendance, len(classes))
	for _, a := range attendances {
		attByClass[a.ClassID] = append(attByClass[a.ClassID], a)
	}
	for i := range classes {
		if classes[i].Participants = partsByClass[classes[i].ID]; classes[i].Participants == nil {
			classes[i].Participants = []Participant{}
		}
		if classes[i].Attendances = attByClass[classes[i].ID]; classes[i].Attendances == nil {
			classes[i].Attendances = []Attendance{}
		}
	}
	return nil
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		cls, err := svc.repo.GetClass(ctx, id, tx)
		if err != nil {
			return err
		}
		if uc.Name != nil {
			cls.Name = *uc.Name
		}
		if uc.Description != nil {
			cls.Description = core.CleanOptional(uc.Description)
		}
		cls.UpdatedAt = core.Now()

		_, err = svc.repo.UpdateClass(ctx, cls, tx)
		return errors.Wrap(err, "updating class")
	})
	if err != nil {
		return Class{}, err
	}
	return svc.GetByID(ctx, id)
}

// Delete removes the class, its participants and its attendance records in one transaction.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetClass(ctx, id, tx); err != nil {
			return err
		}
		if err := svc.repo.DeleteClassParticipants(ctx, id, tx); err != nil {
			return errors.Wrap(err, "deleting class participants")
		}
		if err := svc.repo.DeleteClassAttendance(ctx, id, tx); err != nil {
			return errors.Wrap(err, "deleting class attendance")
		}
		return errors.Wrap(svc.repo.DeleteClass(ctx, id, tx), "deleting class")
	})
}

// AssignParticipant links the member to the class with the given role.
// A member can hold a single role per class.
func (svc *Service) AssignParticipant(ctx context.Context, classID, memberID, role string) (Participant, error) {
	if !isOneOf(role, AllRoles) {
		return Participant{}, errInvalidChoice("role", role, AllRoles)
	}

	var p Participant
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetClass(ctx, classID, tx); err != nil {
			return err
		}
		if _, err := svc.members.GetMember(ctx, memberID, tx); err != nil {
			return err
		}

		_, err := svc.repo.GetParticipant(ctx, classID, memberID, tx)
		switch {
		case err == nil:
			return errAlreadyAssigned(classID, memberID)
		case !core.IsNotFound(err):
			return errors.Wrap(err, "finding participant")
		}

		p, err = svc.repo.CreateParticipant(ctx, Participant{
			MemberID:   memberID,
			ClassID:    classID,
			Role:       role,
			AssignedAt: core.Now(),
		}, tx)
		if errors.Is(err, core.ErrUniqueViolation) {
			return errAlreadyAssigned(classID, memberID)
		}
		return errors.Wrap(err, "creating participant")
	})
	if err != nil {
		return Participant{}, err
	}
	return p, nil
}

func (svc *Service) RemoveParticipant(ctx context.Context, classID, memberID string) error {
	return core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetParticipant(ctx, classID, memberID, tx); err != nil {
			if core.IsNotFound(err) {
				return errNotAssigned(classID, memberID)
			}
			return errors.Wrap(err, "finding participant")
		}
		return errors.Wrap(svc.repo.DeleteParticipant(ctx, classID, memberID, tx), "deleting participant")
	})
}

// RecordAttendance records the member's status for the class on the calendar day of date.
// An existing record for that day is updated in place.
func (svc *Service) RecordAttendance(ctx context.Context, classID, memberID string, date time.Time, status string) (Attendance, error) {
	if date.IsZero() {
		return Attendance{}, core.NewValidationError(errDateRequired, core.FieldError{Field: "date", Error: errDateRequired.Error()})
	}
	if !isOneOf(status, AllStatuses) {
		return Attendance{}, errInvalidChoice("status", status, AllStatuses)
	}
	day := core.StartOfDayUTC(date)

	var att Attendance
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		if _, err := svc.repo.GetClass(ctx, classID, tx); err != nil {
			return err
		}
		if _, err := svc.members.GetMember(ctx, memberID, tx); err != nil {
			return err
		}

		now := core.Now()
		existing, err := svc.repo.FindAttendance(ctx, classID, memberID, day, tx)
		switch {
		case err == nil:
			existing.Status = status
			existing.UpdatedAt = now
			att, err = svc.repo.UpdateAttendance(ctx, existing, tx)
			return errors.Wrap(err, "updating attendance")
		case !core.IsNotFound(err):
			return errors.Wrap(err, "finding attendance")
		}

		att, err = svc.repo.CreateAttendance(ctx, Attendance{
			ID:        uuid.NewString(),
			ClassID:   classID,
			StudentID: memberID,
			Date:      day,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}, tx)
		if errors.Is(err, core.ErrUniqueViolation) {
			return core.NewConflictError("attendance of member %s for class %s on %s is already being recorded",
				memberID, classID, day.Format(core.DateLayout))
		}
		return errors.Wrap(err, "creating attendance")
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}

// GetAttendance lists the attendance records of the class on the calendar day of date, with their Student.
func (svc *Service) GetAttendance(ctx context.Context, classID string, date time.Time) ([]Attendance, error) {
	if date.IsZero() {
		return nil, core.NewValidationError(errDateRequired, core.FieldError{Field: "date", Error: errDateRequired.Error()})
	}
	if _, err := svc.repo.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return svc.dayAttendance(ctx, classID, date)
}

func (svc *Service) dayAttendance(ctx context.Context, classID string, date time.Time) ([]Attendance, error) {
	attendances, err := svc.repo.QueryAttendance(ctx, AttendanceFilter{
		ClassIDs:    []string{classID},
		Date:        core.StartOfDayUTC(date),
		WithStudent: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	if attendances == nil {
		attendances = []Attendance{}
	}
	return attendances, nil
}

// UpdateAttendance changes the status of an attendance record. Nothing else is modified.
func (svc *Service) UpdateAttendance(ctx context.Context, id, status string) (Attendance, error) {
	if !isOneOf(status, AllStatuses) {
		return Attendance{}, errInvalidChoice("status", status, AllStatuses)
	}

	var att Attendance
	err := core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		if att, err = svc.repo.GetAttendance(ctx, id, tx); err != nil {
			return err
		}
		att.Status = status
		att.UpdatedAt = core.Now()
		att, err = svc.repo.UpdateAttendance(ctx, att, tx)
		return errors.Wrap(err, "updating attendance")
	})
	if err != nil {
		return Attendance{}, err
	}
	return att, nil
}
