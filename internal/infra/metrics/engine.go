// File: internal/infra/metrics/engine.go
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(cyclesTotal, chatsProcessedTotal, kicksTotal, errorsTotal, cursorOffset) }

var cyclesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "reconcile_cycles_total",
		Help: "Total number of reconciliation cycles run.",
	},
)

var chatsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_chats_processed_total",
		Help: "Chats reconciled, labeled by chat type at the start of the pass.",
	},
	[]string{"type"},
)

var kicksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_kicks_total",
		Help: "kickChatMember outcomes, labeled by result.",
	},
	[]string{"result"}, // "kicked", "failed"
)

var errorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_errors_total",
		Help: "Per-entity errors encountered during reconciliation, labeled by class.",
	},
	[]string{"class"}, // "transient", "access_lost", "not_admin", "kick_failed", "integrity"
)

var cursorOffset = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "reconcile_update_cursor_offset",
		Help: "Current per-bot update cursor offset.",
	},
	[]string{"bot_id"},
)

func IncCycle() { cyclesTotal.Inc() }

func IncChatProcessed(chatType string) { chatsProcessedTotal.WithLabelValues(norm(chatType)).Inc() }

func IncKick(result string) { kicksTotal.WithLabelValues(norm(result)).Inc() }

func IncError(class string) { errorsTotal.WithLabelValues(norm(class)).Inc() }

func SetCursorOffset(botID int64, offset int) {
	cursorOffset.WithLabelValues(strconv.FormatInt(botID, 10)).Set(float64(offset))
}
