package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/school"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	sg := g.Group("/biblical-school", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.PATCH("/attendance/:attendanceId", api.updateAttendance)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PATCH("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.POST("/:id/participants", api.assignParticipant)
	sg.DELETE("/:id/participants/:memberId", api.removeParticipant)
	sg.POST("/:id/attendance", api.recordAttendance)
	sg.GET("/:id/attendance", api.getAttendance)
	sg.GET("/:id/attendance/export", api.exportAttendance)
}

// Handlers

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) query(ctx echo.Context) error {
	classes, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) update(ctx echo.Context) error {
	var data school.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) assignParticipant(ctx echo.Context) error {
	var data school.AssignParticipant
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignParticipant")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	_, err := api.svc.AssignParticipant(ctx.Request().Context(), ctx.Param("id"), data.MemberID, data.Role)
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) removeParticipant(ctx echo.Context) error {
	if err := api.svc.RemoveParticipant(ctx.Request().Context(), ctx.Param("id"), ctx.Param("memberId")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) recordAttendance(ctx echo.Context) error {
	var data school.RecordAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	date, err := core.ParseDate(data.Date)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}

	att, err := api.svc.RecordAttendance(ctx.Request().Context(), ctx.Param("id"), data.MemberID, date, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *schoolApi) getAttendance(ctx echo.Context) error {
	date, err := api.bindAttendanceDate(ctx)
	if err != nil {
		return err
	}

	attendances, err := api.svc.GetAttendance(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, attendances)
}

func (api *schoolApi) exportAttendance(ctx echo.Context) error {
	date, err := api.bindAttendanceDate(ctx)
	if err != nil {
		return err
	}

	buf, err := api.svc.ExportAttendance(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("attendance-%s.xlsx", date.Format(core.DateLayout))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (api *schoolApi) updateAttendance(ctx echo.Context) error {
	var data school.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.UpdateAttendance(ctx.Request().Context(), ctx.Param("attendanceId"), data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

// bindAttendanceDate reads the mandatory ?date query param.
func (api *schoolApi) bindAttendanceDate(ctx echo.Context) (date time.Time, err error) {
	q := school.AttendanceQuery{Date: ctx.QueryParam("date")}
	if err = q.Validate(api.validate); err != nil {
		return date, err
	}
	date, err = core.ParseDate(q.Date)
	if err != nil {
		return date, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	return date, nil
}
