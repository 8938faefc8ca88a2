package channels

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SMSHandler verifies and normalizes inbound SMS carrier webhook calls. The
// carrier posts form-encoded bodies and signs them with HMAC-SHA1 over the
// full request URL plus the sorted form parameters.
type SMSHandler struct {
	authToken  string
	publicURL  string
	skipVerify bool
	responder  Responder
	client     CarrierClient
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewSMSHandler creates the handler. publicURL is the externally visible
// webhook URL the carrier signed against; when blank, the URL is
// reconstructed from the request.
func NewSMSHandler(authToken, publicURL string, skipVerify bool, responder Responder, client CarrierClient, dispatcher *Dispatcher, logger *zap.Logger) *SMSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if skipVerify {
		logger.Warn("sms signature verification is DISABLED, do not run this in production")
	}
	return &SMSHandler{
		authToken:  authToken,
		publicURL:  publicURL,
		skipVerify: skipVerify,
		responder:  responder,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ServeHTTP handles inbound SMS deliveries.
func (h *SMSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !h.skipVerify {
		if !h.validSignature(r) {
			h.logger.Warn("sms signature rejected")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	from := strings.TrimSpace(r.PostForm.Get("From"))
	to := strings.TrimSpace(r.PostForm.Get("To"))
	body := strings.TrimSpace(r.PostForm.Get("Body"))
	if from == "" || body == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	msg := InboundMessage{
		Channel:          ChannelSMS,
		RawSenderID:      from,
		NormalizedSender: from,
		PropertyHint:     to,
		Body:             body,
	}

	answer := h.responder.Respond(r.Context(), msg)

	if h.dispatcher != nil && h.client != nil {
		h.dispatcher.Enqueue(h.client, OutgoingReply{
			Channel:   ChannelSMS,
			Recipient: from,
			Body:      answer,
		})
	}

	w.WriteHeader(http.StatusOK)
}

// validSignature recomputes the carrier signature: HMAC-SHA1 over the
// request URL concatenated with each form key and value in sorted key order,
// base64 encoded, compared in constant time against X-Carrier-Signature.
func (h *SMSHandler) validSignature(r *http.Request) bool {
	header := r.Header.Get("X-Carrier-Signature")
	if h.authToken == "" || header == "" {
		return false
	}

	signedURL := h.publicURL
	if signedURL == "" {
		signedURL = requestURL(r)
	}

	keys := make([]string, 0, len(r.PostForm))
	for k := range r.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(signedURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(r.PostForm.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(h.authToken))
	mac.Write([]byte(b.String()))
	computed := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(computed), []byte(header))
}

func requestURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// SMSClient delivers replies through the carrier REST API using basic auth.
type SMSClient struct {
	apiURL     string
	accountSID string
	authToken  string
	fromNumber string
	http       *http.Client
}

// NewSMSClient creates the outbound client.
func NewSMSClient(apiURL, accountSID, authToken, fromNumber string) *SMSClient {
	return &SMSClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		http:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Channel implements CarrierClient.
func (c *SMSClient) Channel() string { return ChannelSMS }

// Send implements CarrierClient.
func (c *SMSClient) Send(ctx context.Context, reply OutgoingReply) error {
	form := url.Values{}
	form.Set("To", reply.Recipient)
	form.Set("From", c.fromNumber)
	form.Set("Body", reply.Body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.apiURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

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
