package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/storage/database"
)

type baseRepository struct {
	exec core.DBExecutor
}

// getExec returns the service provided executor (ie. a transaction) if any, else the repository's.
func (repo baseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr turns sql.ErrNoRows into a core.NotFoundError.
func trapNoRowsErr(err error, entity, id, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewNotFoundError(entity, id)
	}
	return errors.Wrap(err, msg)
}

// checkAffected returns a core.NotFoundError when res did not touch any row.
func checkAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return core.NewNotFoundError(entity, id)
	}
	return nil
}

// orderBy renders orderings whose field is allowed, falling back to def.
func orderBy(orderings []core.DBOrdering, allowed map[string]string, def string) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := allowed[ord.Field]; ok {
			clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(clauses) == 0 {
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

var trapWriteErr = database.TrapWriteErr
