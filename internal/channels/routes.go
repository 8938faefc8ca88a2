package channels

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes holds the constructed channel handlers for mounting on the server
// router. A nil handler leaves that channel unmounted.
type Routes struct {
	WhatsApp http.Handler
	SMS      http.Handler
	WebChat  http.Handler
}

// Register mounts the channel endpoints on the router.
func (rt Routes) Register(r chi.Router) {
	if rt.WhatsApp != nil {
		r.Handle("/webhooks/whatsapp", rt.WhatsApp)
	}
	if rt.SMS != nil {
		r.Handle("/webhooks/sms", rt.SMS)
	}
	if rt.WebChat != nil {
		r.Handle("/chat/ws", rt.WebChat)
	}
}
