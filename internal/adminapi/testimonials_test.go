package adminapi

import "testing"

func TestHalfStar(t *testing.T) {
	tests := []struct {
		rating float64
		ok     bool
	}{
		{0.5, true},
		{1, true},
		{3.5, true},
		{5, true},
		{0.25, false},
		{4.7, false},
		{3.1415, false},
	}
	for _, tt := range tests {
		if got := halfStar(tt.rating); got != tt.ok {
			t.Errorf("halfStar(%v) = %v, want %v", tt.rating, got, tt.ok)
		}
	}
}

func TestStatusTargetColumns(t *testing.T) {
	// Users advance through roles and orders through payment states; those
	// live in differently named columns than the plain status resources.
	want := map[string]string{
		"contacts":     "status",
		"messages":     "status",
		"users":        "role",
		"orders":       "payment_status",
		"testimonials": "status",
	}
	for resource, column := range want {
		target, ok := statusTargets[resource]
		if !ok {
			t.Fatalf("no status target for %s", resource)
		}
		if target.column != column {
			t.Errorf("%s status column = %s, want %s", resource, target.column, column)
		}
		if target.flow == nil {
			t.Errorf("%s has no flow", resource)
		}
	}
}
