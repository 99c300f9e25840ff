package service

import "github.com/nandanugg/geotrack/module/core/domain"

// ShouldEmit reports whether a crossing of type t is alertable under policy.
// It is applied after the transition is decided and never affects what is
// recorded.
func ShouldEmit(policy domain.AlertPolicy, t domain.EventType) bool {
	switch policy {
	case domain.AlertBoth:
		return true
	case domain.AlertEntryOnly:
		return t == domain.EventEnter
	case domain.AlertExitOnly:
		return t == domain.EventExit
	}
	return false
}
