package member

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/koinonia/core"
)

const Entity = "member"

type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birthDate"` // 12:00 UTC
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	Baptized  bool      `json:"baptized"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewMember contains information needed to register a new Member.
type NewMember struct {
	Name      string  `json:"name" validate:"required"`
	BirthDate string  `json:"birthDate" validate:"required,isodate"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
	Baptized  *bool   `json:"baptized"`
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Phone = core.CleanOptional(nm.Phone)
	nm.Address = core.CleanOptional(nm.Address)
	return validate.Struct(nm)
}

// UpdateMember defines what information may be provided to modify an existing Member.
// Nil fields are left untouched.
type UpdateMember struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	BirthDate *string `json:"birthDate" validate:"omitempty,isodate"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
	Baptized  *bool   `json:"baptized"`
}

func (um *UpdateMember) Validate(validate *validator.Validate) error {
	if um.Name != nil {
		name := core.CleanString(*um.Name)
		um.Name = &name
	}
	return validate.Struct(um)
}

type QueryFilter struct {
	Search   string // case-insensitive match on Name
	Baptized *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// OrderingFields maps the public ordering names to their columns.
var OrderingFields = map[string]string{
	"name":      "name",
	"birthDate": "birth_date",
	"createdAt": "created_at",
}
