package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

const (
	Entity           = "class"
	AttendanceEntity = "attendance"
)

// Participant roles
const (
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// Attendance statuses
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
)

var (
	AllRoles    = []string{RoleTeacher, RoleStudent}
	AllStatuses = []string{StatusPresent, StatusAbsent}
)

// Class is a biblical school class.
type Class struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  *string       `json:"description"`
	CreatedAt    time.Time     `json:"createdAt"` // UTC
	UpdatedAt    time.Time     `json:"updatedAt"` // UTC
	Participants []Participant `json:"participants"`
	Attendances  []Attendance  `json:"attendances"`
}

// Participant is a Member assigned to a Class with a role.
type Participant struct {
	MemberID   string         `json:"memberId"`
	ClassID    string         `json:"classId"`
	Role       string         `json:"role"`
	AssignedAt time.Time      `json:"assignedAt"` // UTC
	Member     *member.Member `json:"member,omitempty"`
}

// Attendance is unique per (Date, StudentID, ClassID).
type Attendance struct {
	ID        string         `json:"id"`
	ClassID   string         `json:"classId"`
	StudentID string         `json:"studentId"`
	Date      time.Time      `json:"date"` // 00:00 UTC
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"` // UTC
	UpdatedAt time.Time      `json:"updatedAt"` // UTC
	Student   *member.Member `json:"student,omitempty"`
}

type NewClass struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanOptional(nc.Description)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Nil fields are left untouched.
type UpdateClass struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	if uc.Name != nil {
		name := core.CleanString(*uc.Name)
		uc.Name = &name
	}
	return validate.Struct(uc)
}

type AssignParticipant struct {
	MemberID string `json:"memberId" validate:"required"`
	Role     string `json:"role" validate:"required,classrole"`
}

func (ap *AssignParticipant) Validate(validate *validator.Validate) error {
	ap.MemberID = core.CleanString(ap.MemberID)
	ap.Role = core.CleanString(ap.Role)
	return validate.Struct(ap)
}

type RecordAttendance struct {
	MemberID string `json:"memberId" validate:"required"`
	Date     string `json:"date" validate:"required,isodate"`
	Status   string `json:"status" validate:"required,attendancestatus"`
}

func (ra *RecordAttendance) Validate(validate *validator.Validate) error {
	ra.MemberID = core.CleanString(ra.MemberID)
	ra.Status = core.CleanString(ra.Status)
	return validate.Struct(ra)
}

type UpdateAttendance struct {
	Status string `json:"status" validate:"required,attendancestatus"`
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	ua.Status = core.CleanString(ua.Status)
	return validate.Struct(ua)
}

// AttendanceQuery selects the attendance of one class day.
type AttendanceQuery struct {
	Date string `query:"date" validate:"required,isodate"`
}

func (aq *AttendanceQuery) Validate(validate *validator.Validate) error {
	aq.Date = core.CleanString(aq.Date)
	return validate.Struct(aq)
}
