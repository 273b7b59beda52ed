package notifier

import (
	"context"

	"github.com/rs/zerolog/log"
)

// EventKind classifies a notification-worthy event.
type EventKind string

const (
	EventBuy        EventKind = "BUY"
	EventSell       EventKind = "SELL"
	EventCycleError EventKind = "CYCLE_ERROR"
	EventStartup    EventKind = "STARTUP"
)

// Notifier delivers material events to an operator. Best-effort: failures
// are swallowed and logged, and delivery never blocks a cycle beyond its
// context.
type Notifier interface {
	Notify(ctx context.Context, kind EventKind, message string)
}

// LogNotifier writes events to the log only. Used when Telegram is not
// configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(_ context.Context, kind EventKind, message string) {
	log.Info().Str("event", string(kind)).Msg(message)
}
