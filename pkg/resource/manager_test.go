package resource

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/viewguard/viewguard/pkg/statusflow"
)

func newTestManager(p *fakePortal) *Manager[testContact] {
	return NewManager[testContact](newTestClient(p), ManagerConfig{
		Flow:     statusflow.ContactFlow,
		Required: []string{"name", "email", "message"},
	})
}

func seedContacts(p *fakePortal, n int) {
	for i := 0; i < n; i++ {
		p.add(testContact{
			Name:    "Contact " + strconv.Itoa(i+1),
			Email:   "c" + strconv.Itoa(i+1) + "@example.com",
			Message: "msg",
		})
	}
}

func TestManagerPaginationBoundaries(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	seedContacts(portal, 25) // two pages at the default size of 20

	m := newTestManager(portal)
	ctx := context.Background()

	if err := m.LoadPage(ctx, 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	if page, totalPages, total := m.Page(); page != 1 || totalPages != 2 || total != 25 {
		t.Fatalf("page=%d totalPages=%d total=%d", page, totalPages, total)
	}

	// Prev at the first page stays put.
	if err := m.PrevPage(ctx); err != nil {
		t.Fatalf("prev: %v", err)
	}
	if page, _, _ := m.Page(); page != 1 {
		t.Fatalf("prev at first page moved to %d", page)
	}

	if err := m.NextPage(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if page, _, _ := m.Page(); page != 2 {
		t.Fatalf("next moved to %d, want 2", page)
	}
	if n := len(m.Items()); n != 5 {
		t.Fatalf("last page has %d items, want 5", n)
	}

	// Next at the last page stays put.
	if err := m.NextPage(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if page, _, _ := m.Page(); page != 2 {
		t.Fatalf("next at last page moved to %d", page)
	}

	// Loads past the known range clamp instead of erroring.
	if err := m.LoadPage(ctx, 99); err != nil {
		t.Fatalf("load 99: %v", err)
	}
	if page, _, _ := m.Page(); page != 2 {
		t.Fatalf("out-of-range load landed on %d, want 2", page)
	}
}

func TestManagerDiscardsStaleLoad(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	seedContacts(portal, 25)

	release := make(chan struct{})
	portal.beforeHandle = func(r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			<-release
		}
	}

	m := newTestManager(portal)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- m.LoadPage(ctx, 1) }()

	// Give the first load time to reach the server, then start a newer one.
	time.Sleep(50 * time.Millisecond)
	if err := m.LoadPage(ctx, 2); err != nil {
		t.Fatalf("second load: %v", err)
	}
	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first load: %v", err)
	}

	if page, _, _ := m.Page(); page != 2 {
		t.Fatalf("stale page-1 response overwrote page %d", page)
	}
}

func TestManagerSubmitGating(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	m := newTestManager(portal)

	if m.CanSubmit() {
		t.Fatal("submittable with no draft")
	}
	m.BeginCreate()
	if m.CanSubmit() {
		t.Fatal("submittable with empty draft")
	}
	m.SetField("name", "Ada")
	m.SetField("email", "ada@example.com")
	if m.CanSubmit() {
		t.Fatal("submittable with message missing")
	}
	m.SetField("message", "  ")
	if m.CanSubmit() {
		t.Fatal("whitespace counted as filled")
	}
	m.SetField("message", "need a quote for 4 cameras")
	if !m.CanSubmit() {
		t.Fatal("not submittable with all required fields set")
	}
}

func TestManagerCreateAndAdvance(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	m := newTestManager(portal)
	ctx := context.Background()

	m.BeginCreate()
	m.SetField("name", "Ada")
	m.SetField("email", "ada@example.com")
	m.SetField("message", "need a quote for 4 cameras")
	if err := m.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	items := m.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	created := items[0]
	if created.Status != "pending" {
		t.Fatalf("status = %q, want pending", created.Status)
	}
	if !m.CanAdvance(created) {
		t.Fatal("pending contact not advanceable")
	}
	if err := m.AdvanceStatus(ctx, created); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if got := m.Items()[0].Status; got != "processed" {
		t.Fatalf("status after advance = %q, want processed", got)
	}
}

func TestManagerAdvanceTerminalIsNoop(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	id := portal.add(testContact{Name: "A", Email: "a@example.com", Status: "archived"})

	m := NewManager[testContact](newTestClient(portal), ManagerConfig{
		Flow: statusflow.MessageFlow,
	})
	ctx := context.Background()
	if err := m.LoadPage(ctx, 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	item := m.Items()[0]
	if m.CanAdvance(item) {
		t.Fatal("archived record reported advanceable")
	}
	if err := m.AdvanceStatus(ctx, item); err != nil {
		t.Fatalf("advance on terminal errored: %v", err)
	}
	got, _ := portal.get(id)
	if got.Status != "archived" {
		t.Fatalf("terminal status changed to %q", got.Status)
	}
}

func TestManagerLockedFieldOnExistingDraft(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	m := newTestManager(portal)

	m.BeginCreate()
	if err := m.SetField("email", "new@example.com"); err != nil {
		t.Fatalf("setting email on a new draft: %v", err)
	}

	m.BeginEdit(testContact{ID: "7", Name: "Ada", Email: "ada@example.com"})
	if err := m.SetField("email", "other@example.com"); err == nil {
		t.Fatal("email change on existing record allowed")
	}
	if err := m.SetField("name", "Ada L."); err != nil {
		t.Fatalf("setting name: %v", err)
	}
}

func TestManagerLookupUnknownIDClearsRecord(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com"})

	m := newTestManager(portal)
	ctx := context.Background()

	if err := m.Lookup(ctx, id); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if m.LookupRecord() == nil {
		t.Fatal("lookup record missing after hit")
	}

	err := m.Lookup(ctx, "9999")
	if !IsNotFound(err) {
		t.Fatalf("lookup miss error = %v", err)
	}
	if m.LookupRecord() != nil {
		t.Fatal("stale record shown next to lookup error")
	}
	if m.LookupError() == "" {
		t.Fatal("lookup error not surfaced")
	}
}

func TestManagerLookupEditCancelAndSave(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com", Message: "old"})

	m := newTestManager(portal)
	ctx := context.Background()
	if err := m.Lookup(ctx, " "+id+" "); err != nil {
		t.Fatalf("lookup with padding: %v", err)
	}

	if err := m.SetLookupField("email", "x@example.com"); err == nil {
		t.Fatal("email edit allowed in lookup panel")
	}
	if err := m.SetLookupField("name", "Ada L."); err != nil {
		t.Fatalf("edit: %v", err)
	}
	m.CancelLookupEdit()
	if got := m.LookupRecord()["name"]; got != "Ada" {
		t.Fatalf("cancel left name = %v", got)
	}

	if err := m.SetLookupField("name", "Ada L."); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := m.SaveLookup(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	stored, _ := portal.get(id)
	if stored.Name != "Ada L." {
		t.Fatalf("stored name = %q", stored.Name)
	}
	// The pristine copy tracks the saved state.
	m.CancelLookupEdit()
	if got := m.LookupRecord()["name"]; got != "Ada L." {
		t.Fatalf("pristine copy not refreshed, name = %v", got)
	}
}

func TestManagerTwoStepDelete(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com"})

	m := newTestManager(portal)
	ctx := context.Background()
	if err := m.Lookup(ctx, id); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	// Confirm without arming only arms.
	deleted, err := m.ConfirmDelete(ctx)
	if err != nil || deleted {
		t.Fatalf("unarmed confirm deleted=%v err=%v", deleted, err)
	}
	if _, ok := portal.get(id); !ok {
		t.Fatal("record deleted without confirmation")
	}

	deleted, err = m.ConfirmDelete(ctx)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !deleted {
		t.Fatal("armed confirm did not delete")
	}
	if _, ok := portal.get(id); ok {
		t.Fatal("record still present after confirmed delete")
	}
	if m.LookupRecord() != nil {
		t.Fatal("panel still shows deleted record")
	}
}

func TestManagerDeleteArmExpires(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com"})

	m := newTestManager(portal)
	ctx := context.Background()
	if err := m.Lookup(ctx, id); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	base := time.Now()
	clock := base
	m.now = func() time.Time { return clock }

	m.ArmDelete()
	if !m.DeleteArmed() {
		t.Fatal("not armed after ArmDelete")
	}
	clock = base.Add(6 * time.Second)
	if m.DeleteArmed() {
		t.Fatal("arm survived past the window")
	}
	deleted, err := m.ConfirmDelete(ctx)
	if err != nil || deleted {
		t.Fatalf("stale confirm deleted=%v err=%v", deleted, err)
	}
	if _, ok := portal.get(id); !ok {
		t.Fatal("record deleted on a stale confirmation")
	}
}

func TestManagerInteractionDisarmsDelete(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	id := portal.add(testContact{Name: "Ada", Email: "ada@example.com"})

	m := newTestManager(portal)
	ctx := context.Background()
	if err := m.Lookup(ctx, id); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	m.ArmDelete()
	if err := m.LoadPage(ctx, 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.DeleteArmed() {
		t.Fatal("arm survived an unrelated interaction")
	}
	deleted, err := m.ConfirmDelete(ctx)
	if err != nil || deleted {
		t.Fatalf("confirm after disarm deleted=%v err=%v", deleted, err)
	}
	if _, ok := portal.get(id); !ok {
		t.Fatal("record deleted after arm was cancelled")
	}
}

func TestManagerNestedDraftField(t *testing.T) {
	portal := newFakePortal()
	defer portal.Close()
	m := NewManager[testContact](newTestClient(portal), ManagerConfig{
		StatusPath: "payment.status",
	})

	m.BeginCreate()
	if err := m.SetField("payment.status", "pending"); err != nil {
		t.Fatalf("nested set: %v", err)
	}
	v, ok := m.Field("payment.status")
	if !ok || v != "pending" {
		t.Fatalf("nested get = %v, %v", v, ok)
	}
}
