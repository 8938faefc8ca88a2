package channels

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// groupSenderSuffix marks a group conversation sender id.
const groupSenderSuffix = "@g.us"

// WhatsAppHandler verifies and normalizes inbound WhatsApp webhook calls.
type WhatsAppHandler struct {
	verifyToken string
	appSecret   string
	triggerWord string
	skipVerify  bool
	responder   Responder
	client      CarrierClient
	dispatcher  *Dispatcher
	logger      *zap.Logger
}

// NewWhatsAppHandler creates the handler. skipVerify disables signature
// checking for local debugging and is loudly logged when set.
func NewWhatsAppHandler(verifyToken, appSecret, triggerWord string, skipVerify bool, responder Responder, client CarrierClient, dispatcher *Dispatcher, logger *zap.Logger) *WhatsAppHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if skipVerify {
		logger.Warn("whatsapp signature verification is DISABLED, do not run this in production")
	}
	return &WhatsAppHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		triggerWord: strings.ToLower(strings.TrimSpace(triggerWord)),
		skipVerify:  skipVerify,
		responder:   responder,
		client:      client,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// whatsAppPayload is the subset of the webhook body the handler reads.
type whatsAppPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Metadata struct {
					DisplayPhoneNumber string `json:"display_phone_number"`
				} `json:"metadata"`
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
					Type string `json:"type"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ServeHTTP handles both the GET subscription handshake and POST message
// deliveries.
func (h *WhatsAppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleVerification(w, r)
	case http.MethodPost:
		h.handleMessage(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleVerification echoes hub.challenge when the verify token matches.
func (h *WhatsAppHandler) handleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.verifyToken {
		h.logger.Warn("whatsapp handshake rejected", zap.String("mode", mode))
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, challenge)
}

func (h *WhatsAppHandler) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !h.skipVerify {
		if !h.validSignature(body, r.Header.Get("X-Hub-Signature-256")) {
			h.logger.Warn("whatsapp signature rejected")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var payload whatsAppPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	msg, ok := h.extract(payload)
	if !ok {
		// Status updates and non-text events are acknowledged and dropped.
		w.WriteHeader(http.StatusOK)
		return
	}

	if msg.IsGroup && !h.triggered(msg.Body) {
		// Group chatter that does not address the concierge is dropped
		// silently so the bot never interjects uninvited.
		h.logger.Debug("group message without trigger word dropped",
			zap.String("sender", msg.NormalizedSender))
		w.WriteHeader(http.StatusOK)
		return
	}

	answer := h.responder.Respond(r.Context(), msg)

	if h.dispatcher != nil && h.client != nil {
		h.dispatcher.Enqueue(h.client, OutgoingReply{
			Channel:   ChannelWhatsApp,
			Recipient: msg.RawSenderID,
			Body:      answer,
		})
	}

	w.WriteHeader(http.StatusOK)
}

// validSignature checks the HMAC-SHA256 body signature against the app
// secret, in constant time.
func (h *WhatsAppHandler) validSignature(body []byte, header string) bool {
	if h.appSecret == "" || header == "" {
		return false
	}
	expected, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(computed), []byte(expected))
}

// extract pulls the first text message out of the webhook envelope.
func (h *WhatsAppHandler) extract(payload whatsAppPayload) (InboundMessage, bool) {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.Type != "" && m.Type != "text" {
					continue
				}
				body := strings.TrimSpace(m.Text.Body)
				if body == "" {
					continue
				}
				return InboundMessage{
					Channel:          ChannelWhatsApp,
					RawSenderID:      m.From,
					NormalizedSender: normalizeSender(m.From),
					PropertyHint:     change.Value.Metadata.DisplayPhoneNumber,
					Body:             body,
					IsGroup:          strings.HasSuffix(m.From, groupSenderSuffix),
				}, true
			}
		}
	}
	return InboundMessage{}, false
}

// triggered reports whether a group message addresses the concierge by its
// trigger word, case-insensitively.
func (h *WhatsAppHandler) triggered(body string) bool {
	if h.triggerWord == "" {
		return false
	}
	return strings.Contains(strings.ToLower(body), h.triggerWord)
}

// normalizeSender strips the group suffix and whitespace so the same guest
// maps to one history window regardless of conversation type.
func normalizeSender(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, groupSenderSuffix)
	return s
}

// WhatsAppClient delivers replies through the messaging API.
type WhatsAppClient struct {
	apiURL   string
	apiToken string
	http     *http.Client
}

// NewWhatsAppClient creates the outbound client. apiURL is the messages
// endpoint base, without a trailing slash.
func NewWhatsAppClient(apiURL, apiToken string) *WhatsAppClient {
	return &WhatsAppClient{
		apiURL:   strings.TrimRight(apiURL, "/"),
		apiToken: apiToken,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Channel implements CarrierClient.
func (c *WhatsAppClient) Channel() string { return ChannelWhatsApp }

// Send implements CarrierClient.
func (c *WhatsAppClient) Send(ctx context.Context, reply OutgoingReply) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                reply.Recipient,
		"type":              "text",
		"text":              map[string]string{"body": reply.Body},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}
