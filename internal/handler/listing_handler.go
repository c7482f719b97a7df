package handler

import (
	"net/http"

	"wastenot/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /listings のHTTP
type ListingHandler struct {
	uc *usecase.ListingUsecase
}

// DI
func NewListingHandler(uc *usecase.ListingUsecase) *ListingHandler {
	return &ListingHandler{uc: uc}
}

type ListingItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateListingRequest struct {
	Items []ListingItemRequest `json:"items"`
}

type LineItemEditRequest struct {
	LineItemID string `json:"listing_line_item_id"`
	Quantity   int64  `json:"quantity"` // 新しい残数
}

type UpdateListingItemsRequest struct {
	Items []LineItemEditRequest `json:"items"`
}

func (h *ListingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/listings", h.create)
	g.GET("/listings", h.listClaimable)
	g.GET("/listings/mine", h.listMine)
	g.PATCH("/listings/:id/items", h.updateItems)
	g.POST("/listings/:id/cancel", h.cancel)
}

func (h *ListingHandler) create(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.CreateListingInput{Items: make([]usecase.ListingItemInput, 0, len(req.Items))}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.ListingItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	out, err := h.uc.CreateListing(c.Request().Context(), branchID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ListingHandler) listClaimable(c echo.Context) error {
	out, err := h.uc.ListClaimableListings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ListingHandler) listMine(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListBranchListings(c.Request().Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ListingHandler) updateItems(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateListingItemsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.UpdateListingItemsInput{Items: make([]usecase.LineItemEdit, 0, len(req.Items))}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.LineItemEdit{LineItemID: it.LineItemID, Remaining: it.Quantity})
	}

	out, err := h.uc.UpdateListingItems(c.Request().Context(), branchID, c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ListingHandler) cancel(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.CancelListing(c.Request().Context(), branchID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
