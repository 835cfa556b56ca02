package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

const (
	orderingParam = "ordering"
	searchParam   = "search"
	baptizedParam = "baptized"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads a comma separated list of fields, "-" prefixed for descending order.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

func bindMemberFilter(ctx echo.Context) (member.QueryFilter, error) {
	filter := member.QueryFilter{Search: ctx.QueryParam(searchParam)}
	if val := ctx.QueryParam(baptizedParam); val != "" {
		baptized, err := strconv.ParseBool(val)
		if err != nil {
			return filter, core.NewValidationError(err, core.FieldError{Field: baptizedParam, Error: "must be true or false"})
		}
		filter.Baptized = &baptized
	}
	filter.Clean()
	return filter, nil
}
