package user

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/koinonia/core"
)

var (
	InvalidRoleText = fmt.Sprintf("role must be one of %s", strings.Join(AllRoles, ", "))

	// password policy
	PasswordMinLen = 8
	pwdMinLenTag   = "pwdminlen"
	pwdMinLenText  = fmt.Sprintf("password must contain at least %d characters", PasswordMinLen)

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the email"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

func newUserStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok && nu.Password != "" {
		if tag := CheckPassword(nu.Password, nu.Email); tag != "" {
			sl.ReportError(nu.Password, "password", "Password", tag, "")
		}
	}
}

// CheckPassword applies the password policy and returns the failing rule's tag, or "" if pwd is acceptable:
// - minLen: 8
// - not similar to the email
func CheckPassword(pwd, email string) string {
	if len(pwd) < PasswordMinLen {
		return pwdMinLenTag
	}
	if email != "" {
		local := strings.SplitN(email, "@", 2)[0]
		for _, attr := range []string{email, local} {
			ratio := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(attr, "")).QuickRatio()
			if ratio >= pwdMaxSim {
				return pwdAttrSimTag
			}
		}
	}
	return ""
}

// PasswordPolicyText renders a failing policy tag for callers without a translator (ie. the admin CLI).
func PasswordPolicyText(tag string) string {
	switch tag {
	case pwdMinLenTag:
		return pwdMinLenText
	case pwdAttrSimTag:
		return pwdAttrSimText
	}
	return ""
}
