package statusflow

import "testing"

func TestContactFlowCycles(t *testing.T) {
	cases := []struct {
		current string
		want    string
	}{
		{"pending", "processed"},
		{"processed", "rejected"},
		{"rejected", "pending"},
	}
	for _, tc := range cases {
		t.Run(tc.current, func(t *testing.T) {
			got, ok := ContactFlow.Next(tc.current)
			if !ok {
				t.Fatalf("Next(%q) not ok", tc.current)
			}
			if got != tc.want {
				t.Errorf("Next(%q) = %q, want %q", tc.current, got, tc.want)
			}
		})
	}
}

func TestMessageFlowTerminal(t *testing.T) {
	got, ok := MessageFlow.Next("resolved")
	if !ok || got != "archived" {
		t.Fatalf("Next(resolved) = %q, %v", got, ok)
	}
	if _, ok := MessageFlow.Next("archived"); ok {
		t.Error("archived must be terminal")
	}
}

func TestUserRoleToggles(t *testing.T) {
	if got, _ := UserRoleFlow.Next("user"); got != "admin" {
		t.Errorf("user -> %q, want admin", got)
	}
	if got, _ := UserRoleFlow.Next("admin"); got != "user" {
		t.Errorf("admin -> %q, want user", got)
	}
}

func TestPaymentFlow(t *testing.T) {
	if got, _ := PaymentFlow.Next("failed"); got != "pending" {
		t.Errorf("failed -> %q, want pending", got)
	}
	if _, ok := PaymentFlow.Next("refunded"); ok {
		t.Error("refunded must be terminal")
	}
}

func TestNextUnknownState(t *testing.T) {
	if _, ok := ContactFlow.Next("bogus"); ok {
		t.Error("unknown state must not transition")
	}
}

func TestValidAndBadge(t *testing.T) {
	if !MessageFlow.Valid("in_progress") {
		t.Error("in_progress should be valid")
	}
	if MessageFlow.Valid("pending") {
		t.Error("pending is not a message state")
	}
	b := MessageFlow.Badge("unknown-code")
	if b.Color != "gray" || b.Code != "unknown-code" {
		t.Errorf("unexpected fallback badge %+v", b)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"contact", "message", "user", "testimonial", "payment"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("flow %q not registered", name)
		}
	}
	if _, ok := Lookup("plan"); ok {
		t.Error("plans carry no status flow")
	}
}
