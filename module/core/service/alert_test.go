package service

import (
	"testing"

	"github.com/nandanugg/geotrack/module/core/domain"
)

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		policy domain.AlertPolicy
		typ    domain.EventType
		want   bool
	}{
		{domain.AlertBoth, domain.EventEnter, true},
		{domain.AlertBoth, domain.EventExit, true},
		{domain.AlertEntryOnly, domain.EventEnter, true},
		{domain.AlertEntryOnly, domain.EventExit, false},
		{domain.AlertExitOnly, domain.EventEnter, false},
		{domain.AlertExitOnly, domain.EventExit, true},
		{"", domain.EventEnter, false},
	}

	for _, tt := range tests {
		if got := ShouldEmit(tt.policy, tt.typ); got != tt.want {
			t.Errorf("ShouldEmit(%q, %q) = %v, want %v", tt.policy, tt.typ, got, tt.want)
		}
	}
}
