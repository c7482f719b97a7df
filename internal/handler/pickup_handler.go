package handler

import (
	"net/http"

	"wastenot/internal/usecase"

	"github.com/labstack/echo/v4"
)

// トークンを画像にする（infra/qrcode）
type QRRenderer interface {
	DataURL(content string) (string, error)
}

// /pickups のHTTP
type PickupHandler struct {
	approval *usecase.ApprovalUsecase
	pickups  *usecase.PickupUsecase
	qr       QRRenderer
}

// DI
func NewPickupHandler(approval *usecase.ApprovalUsecase, pickups *usecase.PickupUsecase, qr QRRenderer) *PickupHandler {
	return &PickupHandler{approval: approval, pickups: pickups, qr: qr}
}

type VerifyPickupRequest struct {
	QRCode string `json:"qr_code"`
}

type PickupTicketResponse struct {
	usecase.PickupTicketOutput
	QRCodeImage string `json:"qr_code_image"`
}

func (h *PickupHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/pickups/mine", h.mine)
	g.GET("/pickups/:claim_id", h.ticket)
	g.POST("/pickups/verify", h.verify)
}

func (h *PickupHandler) mine(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.pickups.ListMyPickups(c.Request().Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PickupHandler) ticket(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.approval.DescribePickup(c.Request().Context(), branchID, c.Param("claim_id"))
	if err != nil {
		return writeError(c, err)
	}

	img, err := h.qr.DataURL(out.Token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, PickupTicketResponse{PickupTicketOutput: out, QRCodeImage: img})
}

func (h *PickupHandler) verify(c echo.Context) error {
	branchID, ok := getBranchIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req VerifyPickupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.pickups.RedeemToken(c.Request().Context(), branchID, req.QRCode)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
