package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *WithdrawalHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/payout", h.HandlePayoutWebhook)

		r.Route("/withdrawals/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Post("/cancel", h.HandleCancel)
			r.Post("/refund", h.HandleRefund)
		})
	})

	return r
}
