package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletgate/walletgate/internal/wallet"
)

// RegisterWalletRoutes wires wallet lifecycle endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallet/setup", h.Setup)
	r.Get("/wallet", h.List)
	r.Get("/wallet/:walletId", h.Get)
	r.Patch("/wallet/:walletId/status", h.SetStatus)
	r.Delete("/wallet/:walletId", h.Delete)
}
