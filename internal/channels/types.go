// Package channels implements the inbound webhook adapters and outbound
// carrier clients for each supported messaging channel, plus the gateway
// that routes verified messages into the answer pipeline.
package channels

import "context"

// Channel names. These appear in logs and delivery records.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelWebChat  = "webchat"
)

// InboundMessage is a verified, normalized message from any channel.
type InboundMessage struct {
	Channel          string
	RawSenderID      string
	NormalizedSender string
	// PropertyID, when set, names the property directly and skips rule
	// resolution. Web chat sets it from the session.
	PropertyID string
	// PropertyHint is a routing clue (recipient number, webhook path
	// segment) for the resolver when PropertyID is blank.
	PropertyHint string
	Body         string
	IsGroup      bool
}

// OutgoingReply is what a channel must deliver back to the guest.
type OutgoingReply struct {
	Channel   string
	Recipient string
	Body      string
}

// Responder answers one normalized inbound message. The returned text is
// always non-empty; pipeline failures surface as fallback wording, not
// errors.
type Responder interface {
	Respond(ctx context.Context, msg InboundMessage) string
}

// CarrierClient pushes one reply to a channel's delivery API.
type CarrierClient interface {
	Send(ctx context.Context, reply OutgoingReply) error
	Channel() string
}
