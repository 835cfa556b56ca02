package school

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/koinonia/core"
)

var (
	classRoleTag  = "classrole"
	classRoleText = fmt.Sprintf("role must be one of %s", strings.Join(AllRoles, ", "))

	statusTag  = "attendancestatus"
	statusText = fmt.Sprintf("status must be one of %s", strings.Join(AllStatuses, ", "))
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(classRoleTag, core.OneOfValidation(AllRoles...))
	core.RegisterCustomTranslation(validate, translator, classRoleTag, classRoleText)

	_ = validate.RegisterValidation(statusTag, core.OneOfValidation(AllStatuses...))
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}
