package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletgate/walletgate/internal/transactions"
)

// RegisterTransactionRoutes wires posting, listing, export and deletion.
// Static segments are registered before the :id route so /export and
// /wallet/:walletId are not captured as transaction ids.
func RegisterTransactionRoutes(r fiber.Router, h *transactions.Handler) {
	r.Post("/transact/:walletId", h.Transact)
	r.Get("/transactions", h.List)
	r.Get("/transactions/export", h.Export)
	r.Delete("/transactions/wallet/:walletId", h.DeleteAll)
	r.Delete("/transactions/:id", h.Delete)
}
