package handler

import (
	"net/http"

	"wastenot/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /claims のHTTP（作成・承認）
type ClaimHandler struct {
	claims   *usecase.ClaimUsecase
	approval *usecase.ApprovalUsecase
}

// DI
func NewClaimHandler(claims *usecase.ClaimUsecase, approval *usecase.ApprovalUsecase) *ClaimHandler {
	return &ClaimHandler{claims: claims, approval: approval}
}

type ClaimItemRequest struct {
	LineItemID string `json:"listing_line_item_id"`
	Quantity   int64  `json:"quantity"`
}

type CreateClaimRequest struct {
	Items []ClaimItemRequest `json:"items"`
}

func (h *ClaimHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/claims", h.create)
	g.GET("/claims/pending", h.pending)
	g.POST("/claims/:id/approve", h.approve)
	g.GET("/claims/approved-awaiting-pickup", h.awaitingPickup)
}

func (h *ClaimHandler) create(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CreateClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.CreateClaimInput{Items: make([]usecase.ClaimItemInput, 0, len(req.Items))}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.ClaimItemInput{LineItemID: it.LineItemID, Quantity: it.Quantity})
	}

	out, err := h.claims.CreateClaim(c.Request().Context(), branchID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ClaimHandler) pending(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.claims.ListPendingClaims(c.Request().Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClaimHandler) approve(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.approval.ApproveClaim(c.Request().Context(), branchID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClaimHandler) awaitingPickup(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.approval.ListAwaitingPickup(c.Request().Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
