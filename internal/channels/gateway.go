package channels

import (
	"context"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/properties"
	"github.com/hoststack/concierge/internal/rag"
)

// Gateway connects verified channel messages to the answer engine. It owns
// the per-sender history windows so the engine stays stateless.
type Gateway struct {
	engine   *rag.Engine
	resolver *properties.Resolver
	history  *HistoryWindow
	logger   *zap.Logger
}

// NewGateway creates a Gateway. historyWindow bounds the per-sender turn
// count; zero disables history.
func NewGateway(engine *rag.Engine, resolver *properties.Resolver, historyWindow int, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		engine:   engine,
		resolver: resolver,
		history:  NewHistoryWindow(historyWindow),
		logger:   logger,
	}
}

// Respond answers one inbound message and updates the sender's history.
func (g *Gateway) Respond(ctx context.Context, msg InboundMessage) string {
	propertyID := msg.PropertyID
	if propertyID == "" && g.resolver != nil {
		propertyID = g.resolver.PropertyFor(firstNonEmpty(msg.PropertyHint, msg.NormalizedSender))
	}

	history := g.history.Get(msg.NormalizedSender)
	answer := g.engine.Answer(ctx, propertyID, msg.Body, history)

	g.history.Append(msg.NormalizedSender, rag.Turn{Sender: rag.SenderUser, Text: msg.Body})
	g.history.Append(msg.NormalizedSender, rag.Turn{Sender: rag.SenderAssistant, Text: answer.Text})

	g.logger.Debug("gateway responded",
		zap.String("channel", msg.Channel),
		zap.String("property_id", propertyID),
		zap.String("intent", string(answer.Intent)))
	return answer.Text
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
