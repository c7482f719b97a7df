package handler

import (
	"net/http"

	"wastenot/internal/middleware"
	"wastenot/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func statusOf(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindValidation:
		return http.StatusBadRequest
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindConflict:
		return http.StatusConflict
	case usecase.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok && ae.Kind != usecase.KindInternal {
		return c.JSON(statusOf(ae.Kind), ErrorResponse{Error: ae.Message})
	}

	//500
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("internal error")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// middleware.AuthJWT が c.Set したブランチIDを取り出す
func getBranchIDFromContext(c echo.Context) (string, bool) {
	id := middleware.BranchID(c)
	return id, id != ""
}
