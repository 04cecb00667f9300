package wallet

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
	"github.com/walletgate/walletgate/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type setupRequest struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Response captures the wallet shape the client renders. Balance is a
// decimal string; it must never round-trip through binary floating point.
type Response struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewResponse converts a ledger wallet into its wire shape.
func NewResponse(w ledger.Wallet) Response {
	return Response{ID: w.ID, Name: w.Name, Balance: w.Balance, Status: w.Status, CreatedAt: w.CreatedAt}
}

// Setup provisions a wallet with an optional starting balance.
func (h *Handler) Setup(c *fiber.Ctx) error {
	var req setupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.InvalidArgument, "invalid request body: %v", err)
	}
	w, err := h.service.Create(c.UserContext(), CreateInput{Name: req.Name, InitialBalance: req.Balance})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(NewResponse(w))
}

// List returns every wallet in creation order.
func (h *Handler) List(c *fiber.Ctx) error {
	wallets, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]Response, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, NewResponse(w))
	}
	return c.JSON(out)
}

// Get returns one wallet by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	w, err := h.service.Get(c.UserContext(), c.Params("walletId"))
	if err != nil {
		return err
	}
	return c.JSON(NewResponse(w))
}

// SetStatus moves a wallet between ACTIVE and FROZEN.
func (h *Handler) SetStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.InvalidArgument, "invalid request body: %v", err)
	}
	w, err := h.service.SetStatus(c.UserContext(), c.Params("walletId"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(NewResponse(w))
}

// Delete removes a frozen wallet.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("walletId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "wallet deleted"})
}
