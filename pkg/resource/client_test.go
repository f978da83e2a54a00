package resource

import (
	"context"
	"testing"
)

func newTestClient(p *fakePortal) *Client[testContact] {
	return NewClient[testContact](Options{
		BaseURL:  p.URL(),
		Resource: "contacts",
		Tokens:   StaticToken("test-token"),
	})
}

func TestClientCreateThenList(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	client := newTestClient(portal)
	ctx := context.Background()

	created, err := client.Create(ctx, map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "message": "help with cameras",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created record has no id")
	}
	if created.Status != "pending" {
		t.Fatalf("new contact status = %q, want pending", created.Status)
	}

	page, err := client.List(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, it := range page.Items {
		if it.ID == created.ID && it.Name == "Ada" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created record missing from listing: %+v", page.Items)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
}

func TestClientUpdateThenGet(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	client := newTestClient(portal)
	ctx := context.Background()

	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com", Message: "old"})

	if _, err := client.Update(ctx, id, map[string]interface{}{
		"name": "Ada L.", "message": "new message",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := client.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ada L." || got.Message != "new message" {
		t.Fatalf("get after update = %+v", got)
	}
}

func TestClientRemoveTwice(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	client := newTestClient(portal)
	ctx := context.Background()

	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com"})

	if err := client.Remove(ctx, id); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	err := client.Remove(ctx, id)
	if err == nil {
		t.Fatal("second remove succeeded, want not-found")
	}
	if !IsNotFound(err) {
		t.Fatalf("second remove error = %v, want not-found kind", err)
	}
}

func TestClientNotFoundKeepsServerMessage(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	client := newTestClient(portal)

	_, err := client.GetByID(context.Background(), "9999")
	if !IsNotFound(err) {
		t.Fatalf("error = %v, want not-found", err)
	}
	if err.Error() != "contact 9999 not found" {
		t.Fatalf("message = %q, want server wording", err.Error())
	}
}

func TestClientValidationError(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	client := newTestClient(portal)

	_, err := client.Create(context.Background(), map[string]interface{}{"name": "no email"})
	if !IsValidation(err) {
		t.Fatalf("error = %v, want validation kind", err)
	}
	if err.Error() != "email is required" {
		t.Fatalf("message = %q, want server wording", err.Error())
	}
}

func TestClientToleratesSparseListPayload(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	portal.sparse = true
	client := newTestClient(portal)

	page, err := client.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Items == nil {
		t.Fatal("items is nil, want empty slice")
	}
	if len(page.Items) != 0 {
		t.Fatalf("items = %+v, want empty", page.Items)
	}
	if page.TotalPages != 1 {
		t.Fatalf("total_pages normalized to %d, want 1", page.TotalPages)
	}
}

func TestClientTransportError(t *testing.T) {
	portal := newFakePortal()
	client := newTestClient(portal)
	portal.Close()

	_, err := client.List(context.Background(), 1, 0)
	if err == nil {
		t.Fatal("list against closed server succeeded")
	}
	re, ok := err.(*Error)
	if !ok || re.Kind != KindTransport {
		t.Fatalf("error = %v, want transport kind", err)
	}
}
