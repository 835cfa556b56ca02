package member

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/koinonia/core"
)

var ErrEmptyWorkbook = errors.New("workbook does not contain any sheets")

// import columns, in order
const (
	colName = iota
	colBirthDate
	colPhone
	colAddress
	colBaptized
)

type RowError struct {
	Row   int    `json:"row"` // 1-based, as displayed by spreadsheet apps
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  []RowError `json:"skipped"`
}

// Import registers the members listed in the first sheet of an xlsx workbook.
// The first row is a header. Invalid rows are skipped and reported; valid rows are inserted in one transaction.
func (svc *Service) Import(ctx context.Context, file io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return ImportResult{}, core.NewValidationError(errors.Wrap(err, "opening workbook"))
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return ImportResult{}, core.NewValidationError(ErrEmptyWorkbook)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return ImportResult{}, errors.Wrapf(err, "reading rows of sheet %s", sheet)
	}

	res := ImportResult{Skipped: []RowError{}}
	members := make([]Member, 0, len(rows))
	now := core.Now()
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if isBlankRow(row) {
			continue
		}
		m, err := memberFromRow(row)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: i + 1, Error: err.Error()})
			continue
		}
		m.ID = uuid.NewString()
		m.CreatedAt, m.UpdatedAt = now, now
		members = append(members, m)
	}

	err = core.WithinTx(ctx, svc.db, func(tx core.DBExecutor) error {
		for _, m := range members {
			if _, err := svc.repo.CreateMember(ctx, m, tx); err != nil {
				return errors.Wrapf(err, "importing member %s", m.Name)
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	res.Imported = len(members)
	return res, nil
}

func memberFromRow(row []string) (Member, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return core.CleanString(row[idx])
		}
		return ""
	}

	m := Member{Name: cell(colName)}
	if m.Name == "" {
		return Member{}, errors.New("name is required")
	}

	birthDate, err := core.ParseDate(cell(colBirthDate))
	if err != nil {
		return Member{}, errors.New("birthDate must be a date formatted as YYYY-MM-DD")
	}
	m.BirthDate = core.NoonUTC(birthDate)

	if phone := cell(colPhone); phone != "" {
		m.Phone = &phone
	}
	if addr := cell(colAddress); addr != "" {
		m.Address = &addr
	}
	switch strings.ToLower(cell(colBaptized)) {
	case "yes", "y", "true", "1", "x":
		m.Baptized = true
	}
	return m, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
