// File: internal/domain/model/chat_employee.go
package model

import "time"

// ChatEmployee links an Employee to a Chat. Unique on (ChatID, EmployeeID)
// globally; UserID is denormalised onto the row for query scoping only (the
// natural key does not include it).
type ChatEmployee struct {
	ChatID     int64
	EmployeeID int64
	UserID     int64
	IsActive   bool
	IsAdmin    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
