package handler

import (
	"net/http"

	"wastenot/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products（出品できる商品）
type ProductHandler struct {
	uc *usecase.ListingUsecase
}

// DI
func NewProductHandler(uc *usecase.ListingUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
}

func (h *ProductHandler) list(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListBranchProducts(c.Request().Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
