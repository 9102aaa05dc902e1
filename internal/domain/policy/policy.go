// File: internal/domain/policy/policy.go
package policy

import "chatwarden/internal/domain/model"

// Rule captures the per-type_id handling a chat receives during one
// reconciliation pass (spec.md §4.5). Types 1 (external), 2 (internal), 3
// (observe) and 4 (new) all run the full seven-step per-chat procedure;
// only the enforcement sub-step (§4.5 step 4) varies between them. Type 5
// (removed) gets a revival probe only, handled directly by the engine. Type
// 6 (blocked) is skipped outright.
type Rule struct {
	// Skip means the chat is not touched at all this cycle.
	Skip bool
	// Enforce means inactive links are kicked and hard-deleted rather than
	// merely deactivated.
	Enforce bool
	// KickExternal additionally enforces is_external employees out of the
	// chat, even if their link is still active (internal groups only).
	KickExternal bool
}

// For returns the handling rule for a chat type. The zero Rule (used for any
// type outside the known set) skips the chat, which is the safe default.
func For(t model.ChatType) Rule {
	switch t {
	case model.ChatTypeExternal:
		return Rule{Enforce: true}
	case model.ChatTypeInternal:
		return Rule{Enforce: true, KickExternal: true}
	case model.ChatTypeObserve, model.ChatTypeNew:
		return Rule{}
	case model.ChatTypeBlocked:
		return Rule{Skip: true}
	default:
		return Rule{Skip: true}
	}
}

// ShouldKick decides, for one existing link, whether enforcement must remove
// the member from the remote chat. linkOrEmployeeInactive covers both "the
// employee left and the link was deactivated" and "the employee record
// itself was deactivated" (e.g. an identity collision, spec.md §4.4).
func ShouldKick(r Rule, linkOrEmployeeInactive, employeeIsBot, employeeExternal bool) bool {
	if !r.Enforce || employeeIsBot {
		return false
	}
	if linkOrEmployeeInactive {
		return true
	}
	return r.KickExternal && employeeExternal
}
