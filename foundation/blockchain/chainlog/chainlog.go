// Package chainlog adapts the block and chain packages' EventHandler
// callback (func(v string, args ...any)) onto a structured zap logger,
// the way the teacher repo wires its own EvHandler into
// *zap.SugaredLogger and stamps every line with a per-request trace id.
// Here, since there is no HTTP request to carry a trace id, one uuid is
// minted per call and threaded through every event the handler emits.
package chainlog

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// New returns an EventHandler-shaped closure (matching
// block.EventHandler / chain.EventHandler) that logs every event at
// info level, tagged with a fresh correlation id.
func New(log *zap.SugaredLogger) func(v string, args ...any) {
	if log == nil {
		return func(string, ...any) {}
	}

	id := uuid.New().String()

	return func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "trace_id", id)
	}
}
