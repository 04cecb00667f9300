package transactions

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/walletgate/walletgate/internal/apperr"
	"github.com/walletgate/walletgate/internal/ledger"
)

// Handler exposes transaction HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a transaction HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type postRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID string          `json:"referenceId"`
}

type transactionResponse struct {
	ID          string          `json:"id"`
	WalletID    string          `json:"walletId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	ReferenceID string          `json:"referenceId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func newTransactionResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		WalletID:    tx.WalletID,
		Amount:      tx.Amount,
		Type:        TypeOf(tx.Amount),
		Description: tx.Description,
		ReferenceID: tx.ReferenceID,
		CreatedAt:   tx.CreatedAt,
	}
}

// Transact posts a credit or debit against the wallet in the path.
func (h *Handler) Transact(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.InvalidArgument, "invalid request body: %v", err)
	}
	tx, err := h.service.Post(c.UserContext(), PostInput{
		WalletID:    c.Params("walletId"),
		Amount:      req.Amount,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(newTransactionResponse(tx))
}

// List returns one sorted page of a wallet's transactions.
func (h *Handler) List(c *fiber.Ctx) error {
	walletID := c.Query("walletId")
	if walletID == "" {
		return apperr.New(apperr.InvalidArgument, "walletId is required")
	}

	page, q, err := h.service.Query(c.UserContext(), walletID, QueryParams{
		Skip:  c.Query("skip"),
		Limit: c.Query("limit"),
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	})
	if err != nil {
		return err
	}

	items := make([]transactionResponse, 0, len(page.Transactions))
	for _, tx := range page.Transactions {
		items = append(items, newTransactionResponse(tx))
	}
	return c.JSON(fiber.Map{
		"transactions": items,
		"pagination": fiber.Map{
			"total": page.Total,
			"skip":  q.Skip,
			"limit": q.Limit,
		},
	})
}

// Export streams the wallet's full history as a CSV attachment.
func (h *Handler) Export(c *fiber.Ctx) error {
	walletID := c.Query("walletId")
	if walletID == "" {
		return apperr.New(apperr.InvalidArgument, "walletId is required")
	}

	rows, err := h.service.Export(c.UserContext(), walletID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "amount", "type", "description"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Date.Format(time.RFC3339),
			row.Amount.String(),
			row.Type,
			row.Description,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.Send(buf.Bytes())
}

// Delete removes one transaction; the owning wallet must be frozen.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if _, err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "transaction deleted"})
}

// DeleteAll purges every transaction of a frozen wallet.
func (h *Handler) DeleteAll(c *fiber.Ctx) error {
	if _, err := h.service.DeleteAll(c.UserContext(), c.Params("walletId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "all transactions deleted"})
}
