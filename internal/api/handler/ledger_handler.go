package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry ledger writes safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type LedgerHandler struct {
	service ports.LedgerService
}

func NewLedgerHandler(service ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// TopUp handles PATCH /topup.
//
// @Summary      Add funds to the current user's balance
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string        false  "Replays with the same key are applied once"
// @Param        body             body      topUpRequest  true   "Amount"
// @Success      200              {object}  messageResponse
// @Failure      400              {object}  messageResponse
// @Failure      401              {object}  messageResponse
// @Failure      409              {object}  messageResponse
// @Router       /topup [patch]
func (h *LedgerHandler) TopUp(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req topUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err = h.service.TopUp(c.Request().Context(), id.ID, ports.TopUpInput{
		Amount:         req.Amount,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "topup success"})
}

// Donate handles POST /donate.
//
// @Summary      Move funds to another user
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Replays with the same key are applied once"
// @Param        body             body      donateRequest  true   "Target and amount"
// @Success      200              {object}  messageResponse
// @Failure      400              {object}  messageResponse
// @Failure      401              {object}  messageResponse
// @Failure      404              {object}  messageResponse
// @Failure      409              {object}  messageResponse
// @Router       /donate [post]
func (h *LedgerHandler) Donate(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req donateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	err = h.service.Donate(c.Request().Context(), id.ID, ports.DonateInput{
		TargetUserID:   req.TargetUserID,
		Amount:         req.Amount,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "donation success"})
}
