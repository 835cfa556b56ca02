package school

import (
	"bytes"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/koinonia/core"
)

var exportHeaders = []string{"Student", "Phone", "Status", "Recorded At"}

// ExportAttendance renders the attendance of the class on the calendar day of date as an xlsx workbook.
func (svc *Service) ExportAttendance(ctx context.Context, classID string, date time.Time) (*bytes.Buffer, error) {
	if date.IsZero() {
		return nil, core.NewValidationError(errDateRequired, core.FieldError{Field: "date", Error: errDateRequired.Error()})
	}
	cls, err := svc.repo.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	attendances, err := svc.dayAttendance(ctx, classID, date)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := core.StartOfDayUTC(date).Format(core.DateLayout)
	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}

	if err = f.SetCellValue(sheet, "A1", cls.Name); err != nil {
		return nil, errors.Wrap(err, "writing title")
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err = f.SetCellValue(sheet, cell, h); err != nil {
			return nil, errors.Wrapf(err, "writing header %s", cell)
		}
	}
	if err = f.SetCellStyle(sheet, "A1", "D2", headerStyle); err != nil {
		return nil, errors.Wrap(err, "styling header")
	}

	for i, att := range attendances {
		row := i + 3
		var name, phone string
		if att.Student != nil {
			name = att.Student.Name
			if att.Student.Phone != nil {
				phone = *att.Student.Phone
			}
		}
		values := []interface{}{name, phone, att.Status, att.UpdatedAt.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err = f.SetCellValue(sheet, cell, v); err != nil {
				return nil, errors.Wrapf(err, "writing cell %s", cell)
			}
		}
	}
	if err = f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}
	if err = f.SetColWidth(sheet, "B", "D", 20); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf, nil
}
