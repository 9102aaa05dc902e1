// File: internal/domain/model/update_event.go
package model

import "time"

// RemoteUser is the subset of a Telegram-shaped user payload the engine
// cares about.
type RemoteUser struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	IsBot     bool
}

// FullName joins first/last name the way the original service does.
func (u RemoteUser) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// UpdateEventKind tags the flattened shape of a raw update (§9: "Dynamic
// payload shapes"). A single pre-processor (see internal/infra/remote/events.go)
// reduces the API's heterogeneous message objects to this set before any
// dispatch happens, so enforcement/identity code never re-parses raw JSON.
type UpdateEventKind int

const (
	EventUserJoined UpdateEventKind = iota + 1
	EventUserLeft
	EventBotStatusChanged
	EventMessageFrom
)

// UpdateEvent is one flattened occurrence extracted from a getUpdates batch.
type UpdateEvent struct {
	Kind           UpdateEventKind
	TelegramChatID int64
	ChatTitle      string
	Date           time.Time
	User           RemoteUser
	// NewStatus is populated only for EventBotStatusChanged: true if the
	// bot's own chat-member status became "member"/"administrator", false if
	// it became "left"/"kicked".
	NewStatus bool
}
