package handler

import (
	"net/http"
	"strconv"

	"wastenot/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AnalyticsHandler struct {
	uc *usecase.AnalyticsUsecase
}

// DI
func NewAnalyticsHandler(uc *usecase.AnalyticsUsecase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

func (h *AnalyticsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/analytics/basic-metrics", h.basicMetrics)
}

func (h *AnalyticsHandler) basicMetrics(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	// days（default 30）
	days := 0
	if v := c.QueryParam("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid days"})
		}
		days = d
	}

	out, err := h.uc.BasicMetrics(c.Request().Context(), branchID, days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
