package bots

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the webhook endpoint on the given router.
func RegisterRoutes(r chi.Router, webhook *WebhookHandler) {
	r.Post("/webhook", webhook.HandleWebhook)
}
