package adminapi

import (
	"testing"
	"time"

	"github.com/viewguard/viewguard/internal/domain"
	"github.com/viewguard/viewguard/pkg/dotpath"
)

// The merge path encodes the stored order to its JSON shape, applies dotted
// updates, then decodes back. Timestamps travel as RFC3339 strings through
// that round trip, so the decoder must accept them or every patch fails.
func TestDecodeOrderTreeRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	o := domain.Order{
		ID: 42,
		Customer: domain.OrderCustomer{
			Name:  "Bo",
			Email: "bo@example.com",
		},
		Details: domain.OrderDetails{
			PlanName:       "Home Basic",
			CameraCount:    2,
			OriginalPrice:  100,
			DiscountAmount: 50,
			FinalPrice:     50,
			Features:       []string{"night vision"},
		},
		Payment: domain.OrderPayment{
			Status:   "pending",
			Amount:   50,
			Currency: "USD",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}

	raw, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := dotpath.Set(tree, "customer.name", "Bo Chen"); err != nil {
		t.Fatalf("set customer.name: %v", err)
	}
	if err := dotpath.Set(tree, "orderDetails.cameraCount", 4); err != nil {
		t.Fatalf("set orderDetails.cameraCount: %v", err)
	}

	merged, err := decodeOrderTree(tree)
	if err != nil {
		t.Fatalf("decodeOrderTree: %v", err)
	}
	if merged.Customer.Name != "Bo Chen" {
		t.Errorf("customer.name = %q, want Bo Chen", merged.Customer.Name)
	}
	if merged.Details.CameraCount != 4 {
		t.Errorf("cameraCount = %d, want 4", merged.Details.CameraCount)
	}
	// Untouched fields survive the round trip.
	if merged.ID != 42 {
		t.Errorf("id = %d, want 42", merged.ID)
	}
	if merged.Customer.Email != "bo@example.com" {
		t.Errorf("email = %q, want bo@example.com", merged.Customer.Email)
	}
	if merged.Details.FinalPrice != 50 {
		t.Errorf("finalPrice = %v, want 50", merged.Details.FinalPrice)
	}
	if len(merged.Details.Features) != 1 || merged.Details.Features[0] != "night vision" {
		t.Errorf("features = %v", merged.Details.Features)
	}
	if merged.Payment.Status != "pending" {
		t.Errorf("payment.status = %q, want pending", merged.Payment.Status)
	}
	if !merged.CreatedAt.Equal(created) {
		t.Errorf("createdAt = %v, want %v", merged.CreatedAt, created)
	}
	if !merged.UpdatedAt.Equal(created) {
		t.Errorf("updatedAt = %v, want %v", merged.UpdatedAt, created)
	}
}
