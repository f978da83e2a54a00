package dotpath

import (
	"testing"

	"github.com/pkg/errors"
)

func sampleOrder() map[string]interface{} {
	return map[string]interface{}{
		"id": "1001",
		"customer": map[string]interface{}{
			"name":  "Ada",
			"email": "ada@x.com",
		},
		"orderDetails": map[string]interface{}{
			"cameraCount":   4,
			"originalPrice": 100.0,
		},
	}
}

func TestGet(t *testing.T) {
	m := sampleOrder()
	v, err := Get(m, "customer.name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "Ada" {
		t.Errorf("got %v, want Ada", v)
	}
	if _, err := Get(m, "customer.phone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing leaf should be ErrNotFound, got %v", err)
	}
	if _, err := Get(m, "customer.name.x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("descending into a scalar should be ErrNotFound, got %v", err)
	}
}

func TestSetExisting(t *testing.T) {
	m := sampleOrder()
	if err := Set(m, "customer.name", "Grace"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := GetString(m, "customer.name"); got != "Grace" {
		t.Errorf("got %q, want Grace", got)
	}
	// sibling untouched
	if got := GetString(m, "customer.email"); got != "ada@x.com" {
		t.Errorf("sibling changed: %q", got)
	}
}

func TestSetCreatesIntermediates(t *testing.T) {
	m := map[string]interface{}{}
	if err := Set(m, "payment.status", "pending"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := GetString(m, "payment.status"); got != "pending" {
		t.Errorf("got %q, want pending", got)
	}
}

func TestSetThroughScalarFails(t *testing.T) {
	m := sampleOrder()
	if err := Set(m, "id.sub", 1); err == nil {
		t.Error("setting through a scalar segment must fail")
	}
}

func TestTypedGetters(t *testing.T) {
	m := sampleOrder()
	if got := GetFloat64(m, "orderDetails.originalPrice"); got != 100.0 {
		t.Errorf("GetFloat64 = %v", got)
	}
	if got := GetInt(m, "orderDetails.cameraCount"); got != 4 {
		t.Errorf("GetInt = %v", got)
	}
	// cast coercion from string
	_ = Set(m, "orderDetails.discountAmount", "50")
	if got := GetFloat64(m, "orderDetails.discountAmount"); got != 50.0 {
		t.Errorf("coerced GetFloat64 = %v", got)
	}
	if got := GetString(m, "missing.path"); got != "" {
		t.Errorf("missing path should read empty, got %q", got)
	}
}

func TestFlatten(t *testing.T) {
	flat := Flatten(sampleOrder())
	if flat["customer.name"] != "Ada" {
		t.Errorf("flatten missed customer.name: %v", flat)
	}
	if flat["orderDetails.cameraCount"] != 4 {
		t.Errorf("flatten missed cameraCount: %v", flat)
	}
	if _, ok := flat["customer"]; ok {
		t.Error("flatten must not keep intermediate keys")
	}
}
