package registry

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("constant set should be internally consistent: %v", err)
	}
}

func TestIsEvent(t *testing.T) {
	for _, e := range Events {
		if !IsEvent(string(e)) {
			t.Errorf("IsEvent(%q) = false, want true", e)
		}
	}
	for _, bad := range []string{"", "pre-write", "PRE_WRITE", "unknown_event"} {
		if IsEvent(bad) {
			t.Errorf("IsEvent(%q) = true, want false", bad)
		}
	}
}

func TestBlockingByDefault(t *testing.T) {
	tests := []struct {
		event EventType
		want  bool
	}{
		{EventPreWrite, true},
		{EventPreCommit, true},
		{EventPrePush, true},
		{EventSecurityCheck, true},
		{EventPostWrite, false},
		{EventPostCommit, false},
		{EventSessionStart, false},
		{EventSessionEnd, false},
	}
	for _, tt := range tests {
		if got := BlockingByDefault(tt.event); got != tt.want {
			t.Errorf("BlockingByDefault(%s) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestDefaultTimeoutFor(t *testing.T) {
	if got := DefaultTimeoutFor(EventSecurityCheck); got != SecurityDefaultTimeout {
		t.Errorf("security_check timeout = %v, want %v", got, SecurityDefaultTimeout)
	}
	if got := DefaultTimeoutFor(EventPreWrite); got != SecurityDefaultTimeout {
		t.Errorf("pre_write timeout = %v, want %v", got, SecurityDefaultTimeout)
	}
	if got := DefaultTimeoutFor(EventPostCommit); got != DefaultTimeout {
		t.Errorf("post_commit timeout = %v, want %v", got, DefaultTimeout)
	}
	if MaxTimeout != 30*time.Second {
		t.Errorf("timeout ceiling = %v, want 30s", MaxTimeout)
	}
}

func TestValidAgentName(t *testing.T) {
	valid := []string{"style-enforcer", "security-auditor", "a", "agent-2"}
	for _, name := range valid {
		if !ValidAgentName(name) {
			t.Errorf("ValidAgentName(%q) = false, want true", name)
		}
	}
	invalid := []string{"", "UNKNOWN-123", "2agent", "-agent", "agent_name", "agent name"}
	for _, name := range invalid {
		if ValidAgentName(name) {
			t.Errorf("ValidAgentName(%q) = true, want false", name)
		}
	}
	long := make([]byte, MaxAgentNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if ValidAgentName(string(long)) {
		t.Error("over-length name should be rejected")
	}
}
