package group

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

const Entity = "group"

type Group struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"` // UTC
	UpdatedAt   time.Time    `json:"updatedAt"` // UTC
	Members     []Membership `json:"members"`
}

// Membership links a Member to a Group.
type Membership struct {
	MemberID   string         `json:"memberId"`
	GroupID    string         `json:"groupId"`
	AssignedAt time.Time      `json:"assignedAt"` // UTC
	Member     *member.Member `json:"member,omitempty"`
}

type NewGroup struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanOptional(ng.Description)
	return validate.Struct(ng)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
// Nil fields are left untouched.
type UpdateGroup struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	if ug.Name != nil {
		name := core.CleanString(*ug.Name)
		ug.Name = &name
	}
	return validate.Struct(ug)
}

type AddMember struct {
	MemberID string `json:"memberId" validate:"required"`
}

func (am *AddMember) Validate(validate *validator.Validate) error {
	am.MemberID = core.CleanString(am.MemberID)
	return validate.Struct(am)
}
