package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/koinonia/core"
	"github.com/trezcool/koinonia/core/member"
)

const importFileField = "file"

type memberApi struct {
	svc      *member.Service
	validate *validator.Validate
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *member.Service, validate *validator.Validate) {
	api := memberApi{svc: svc, validate: validate}

	mg := g.Group("/members", jwt)
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.POST("/import", api.importXLSX)

	// detail endpoints
	mg.GET("/:id", api.retrieve)
	mg.PATCH("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *memberApi) create(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *memberApi) query(ctx echo.Context) error {
	filter, err := bindMemberFilter(ctx)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx)

	members, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) update(ctx echo.Context) error {
	var data member.UpdateMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *memberApi) importXLSX(ctx echo.Context) error {
	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: importFileField, Error: "an xlsx file is required"})
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	res, err := api.svc.Import(ctx.Request().Context(), file)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
