package resource

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viewguard/viewguard/pkg/dotpath"
	"github.com/viewguard/viewguard/pkg/statusflow"
)

const defaultArmWindow = 5 * time.Second

// ManagerConfig wires a Manager to its client and resource rules.
type ManagerConfig struct {
	// Flow drives status advancement; nil disables AdvanceStatus.
	Flow *statusflow.Flow
	// Required lists dotted paths that must be non-empty before Submit.
	Required []string
	// Locked lists dotted paths that become read-only once the draft has
	// an id. Defaults to ["email"] when empty.
	Locked []string
	// IDPath and StatusPath locate those fields in the record. Defaults
	// are "id" and "status".
	IDPath     string
	StatusPath string
	// PageSize requested from the server; 0 lets the server decide.
	PageSize int
	// ArmWindow bounds the time between ArmDelete and ConfirmDelete.
	// Zero means 5 seconds.
	ArmWindow time.Duration
}

// Manager holds everything a resource screen needs: the current page of
// records, the draft under edit, the lookup panel and the two-step delete
// state. It is safe for concurrent use; loads that finish after a newer load
// started are discarded.
type Manager[T any] struct {
	client *Client[T]
	cfg    ManagerConfig

	mu  sync.Mutex
	now func() time.Time

	// listing
	gen        uint64
	items      []T
	total      int64
	page       int
	totalPages int
	loading    bool
	listErr    string

	// draft under edit (create or update)
	draft    map[string]interface{}
	inFlight bool
	draftErr string

	// lookup panel
	lookupRec      map[string]interface{}
	lookupPristine map[string]interface{}
	lookupErr      string

	// two-step delete
	armed   bool
	armedAt time.Time
}

func NewManager[T any](client *Client[T], cfg ManagerConfig) *Manager[T] {
	if cfg.IDPath == "" {
		cfg.IDPath = "id"
	}
	if cfg.StatusPath == "" {
		cfg.StatusPath = "status"
	}
	if len(cfg.Locked) == 0 {
		cfg.Locked = []string{"email"}
	}
	if cfg.ArmWindow <= 0 {
		cfg.ArmWindow = defaultArmWindow
	}
	return &Manager[T]{
		client: client,
		cfg:    cfg,
		now:    time.Now,
		page:   1,
		items:  []T{},
	}
}

// toMap round-trips v through JSON into a generic map so dotted-path edits
// apply uniformly to flat and nested records.
func toMap(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	raw, _ := json.Marshal(m)
	out := map[string]interface{}{}
	json.Unmarshal(raw, &out)
	return out
}

func (m *Manager[T]) idOf(rec map[string]interface{}) string {
	if rec == nil {
		return ""
	}
	return dotpath.GetString(rec, m.cfg.IDPath)
}

// disarm cancels a pending delete confirmation. Every interaction other
// than ConfirmDelete itself calls this, so an armed button never survives
// the operator moving on to something else.
func (m *Manager[T]) disarm() {
	m.armed = false
}

// ---- listing ----

// LoadPage fetches page p. Out-of-range requests are clamped to the known
// bounds, so paging past the last page is a no-op rather than an error.
// When several loads overlap only the most recently started one may commit.
func (m *Manager[T]) LoadPage(ctx context.Context, p int) error {
	m.mu.Lock()
	m.disarm()
	if p < 1 {
		p = 1
	}
	if m.totalPages > 0 && p > m.totalPages {
		p = m.totalPages
	}
	m.gen++
	gen := m.gen
	m.loading = true
	m.mu.Unlock()

	page, err := m.client.List(ctx, p, m.cfg.PageSize)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A newer load superseded this one.
		return nil
	}
	m.loading = false
	if err != nil {
		m.listErr = err.Error()
		return err
	}
	m.listErr = ""
	m.items = page.Items
	m.total = page.Total
	m.page = page.Page
	m.totalPages = page.TotalPages
	return nil
}

// Reload refreshes the current page.
func (m *Manager[T]) Reload(ctx context.Context) error {
	m.mu.Lock()
	p := m.page
	m.mu.Unlock()
	return m.LoadPage(ctx, p)
}

// NextPage and PrevPage move one page; both are no-ops at the boundary.
func (m *Manager[T]) NextPage(ctx context.Context) error {
	m.mu.Lock()
	if m.page >= m.totalPages {
		m.disarm()
		m.mu.Unlock()
		return nil
	}
	p := m.page + 1
	m.mu.Unlock()
	return m.LoadPage(ctx, p)
}

func (m *Manager[T]) PrevPage(ctx context.Context) error {
	m.mu.Lock()
	if m.page <= 1 {
		m.disarm()
		m.mu.Unlock()
		return nil
	}
	p := m.page - 1
	m.mu.Unlock()
	return m.LoadPage(ctx, p)
}

// Items returns the current page snapshot.
func (m *Manager[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Manager[T]) Page() (page, totalPages int, total int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page, m.totalPages, m.total
}

func (m *Manager[T]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager[T]) ListError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listErr
}

// ---- draft editing ----

// BeginCreate starts an empty draft.
func (m *Manager[T]) BeginCreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarm()
	m.draft = map[string]interface{}{}
	m.draftErr = ""
}

// BeginEdit loads an existing record into the draft.
func (m *Manager[T]) BeginEdit(item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarm()
	m.draft = toMap(item)
	m.draftErr = ""
}

// CancelEdit discards the draft.
func (m *Manager[T]) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarm()
	m.draft = nil
	m.draftErr = ""
}

// SetField writes a dotted-path value into the draft. Locked fields are
// rejected once the draft carries an id; new drafts may still set them.
func (m *Manager[T]) SetField(path string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarm()
	if m.draft == nil {
		m.draft = map[string]interface{}{}
	}
	if m.idOf(m.draft) != "" {
		for _, locked := range m.cfg.Locked {
			if path == locked {
				return &Error{Kind: KindValidation,
					Message: locked + " cannot be changed"}
			}
		}
	}
	return dotpath.Set(m.draft, path, value)
}

// Field reads a dotted-path value from the draft.
func (m *Manager[T]) Field(path string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return nil, false
	}
	v, err := dotpath.Get(m.draft, path)
	if err != nil {
		return nil, false
	}
	return v, true
}

// CanSubmit reports whether every required field is filled and no earlier
// submit is still in flight.
func (m *Manager[T]) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil || m.inFlight {
		return false
	}
	for _, path := range m.cfg.Required {
		if strings.TrimSpace(dotpath.GetString(m.draft, path)) == "" {
			return false
		}
	}
	return true
}

// Submit creates or saves the draft depending on whether it has an id, then
// refreshes the current page. A draft failing CanSubmit is a no-op.
func (m *Manager[T]) Submit(ctx context.Context) error {
	if !m.CanSubmit() {
		return nil
	}
	m.mu.Lock()
	m.disarm()
	m.inFlight = true
	draft := cloneMap(m.draft)
	id := m.idOf(draft)
	m.mu.Unlock()

	var err error
	if id == "" {
		_, err = m.client.Create(ctx, draft)
	} else {
		_, err = m.client.Update(ctx, id, draft)
	}

	m.mu.Lock()
	m.inFlight = false
	if err != nil {
		m.draftErr = err.Error()
		m.mu.Unlock()
		return err
	}
	m.draft = nil
	m.draftErr = ""
	m.mu.Unlock()
	return m.Reload(ctx)
}

func (m *Manager[T]) DraftError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draftErr
}

// ---- status advancement ----

// CanAdvance reports whether item's current status has a successor.
func (m *Manager[T]) CanAdvance(item T) bool {
	if m.cfg.Flow == nil {
		return false
	}
	cur := dotpath.GetString(toMap(item), m.cfg.StatusPath)
	_, ok := m.cfg.Flow.Next(cur)
	return ok
}

// AdvanceStatus moves item to the next status in its flow and refreshes the
// page. Terminal statuses are a no-op.
func (m *Manager[T]) AdvanceStatus(ctx context.Context, item T) error {
	m.mu.Lock()
	m.disarm()
	m.mu.Unlock()
	if m.cfg.Flow == nil {
		return nil
	}
	rec := toMap(item)
	next, ok := m.cfg.Flow.Next(dotpath.GetString(rec, m.cfg.StatusPath))
	if !ok {
		return nil
	}
	id := m.idOf(rec)
	if id == "" {
		return &Error{Kind: KindValidation, Message: "record has no id"}
	}
	if _, err := m.client.PatchStatus(ctx, id, next); err != nil {
		return err
	}
	return m.Reload(ctx)
}

// ---- lookup panel ----

// Lookup fetches one record by id into the lookup panel. Failures clear any
// previously shown record so the panel never displays stale data next to an
// error message.
func (m *Manager[T]) Lookup(ctx context.Context, rawID string) error {
	m.mu.Lock()
	m.disarm()
	m.mu.Unlock()

	id := strings.TrimSpace(rawID)
	if id == "" {
		m.mu.Lock()
		m.lookupRec = nil
		m.lookupPristine = nil
		m.lookupErr = "enter a record id"
		m.mu.Unlock()
		return &Error{Kind: KindValidation, Message: "enter a record id"}
	}

	item, err := m.client.GetByID(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lookupRec = nil
		m.lookupPristine = nil
		m.lookupErr = err.Error()
		return err
	}
	rec := toMap(item)
	m.lookupRec = rec
	m.lookupPristine = cloneMap(rec)
	m.lookupErr = ""
	return nil
}

// LookupRecord returns the record shown in the panel, or nil.
func (m *Manager[T]) LookupRecord() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMap(m.lookupRec)
}

func (m *Manager[T]) LookupError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupErr
}

// SetLookupField edits the looked-up record in place. Locked fields stay
// read-only here since the record always has an id.
func (m *Manager[T]) SetLookupField(path string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarm()
	if m.lookupRec == nil {
		return &Error{Kind: KindValidation, Message: "no record loaded"}
	}
	for _, locked := range m.cfg.Locked {
		if path == locked {
			return &Error{Kind: KindValidation, Message: locked + " cannot be changed"}
		}
	}
	return dotpath.Set(m.lookupRec, path, value)
}

// CancelLookupEdit restores the record to its last fetched state.
func (m *Manager[T]) CancelLookupEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarm()
	m.lookupRec = cloneMap(m.lookupPristine)
}

// SaveLookup persists panel edits and replaces the pristine copy with the
// server's stored row.
func (m *Manager[T]) SaveLookup(ctx context.Context) error {
	m.mu.Lock()
	m.disarm()
	if m.lookupRec == nil {
		m.mu.Unlock()
		return &Error{Kind: KindValidation, Message: "no record loaded"}
	}
	draft := cloneMap(m.lookupRec)
	id := m.idOf(draft)
	m.mu.Unlock()

	item, err := m.client.Update(ctx, id, draft)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lookupErr = err.Error()
		return err
	}
	rec := toMap(item)
	m.lookupRec = rec
	m.lookupPristine = cloneMap(rec)
	m.lookupErr = ""
	return nil
}

// ---- two-step delete ----

// ArmDelete puts the delete button into its confirmation state. The armed
// state expires after the configured window and is cancelled by any other
// interaction with the manager.
func (m *Manager[T]) ArmDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupRec == nil {
		return
	}
	m.armed = true
	m.armedAt = m.now()
}

// DeleteArmed reports whether a confirmation is pending and still fresh.
func (m *Manager[T]) DeleteArmed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed && m.now().Sub(m.armedAt) <= m.cfg.ArmWindow
}

// ConfirmDelete removes the looked-up record if the confirmation is still
// armed and fresh. A stale or missing arm re-arms instead of deleting, so a
// slow second click can never destroy a record. On success the panel clears
// and the page refreshes.
func (m *Manager[T]) ConfirmDelete(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.lookupRec == nil {
		m.armed = false
		m.mu.Unlock()
		return false, nil
	}
	fresh := m.armed && m.now().Sub(m.armedAt) <= m.cfg.ArmWindow
	if !fresh {
		m.armed = true
		m.armedAt = m.now()
		m.mu.Unlock()
		return false, nil
	}
	id := m.idOf(m.lookupRec)
	m.armed = false
	m.mu.Unlock()

	err := m.client.Remove(ctx, id)

	m.mu.Lock()
	if err != nil {
		m.lookupErr = err.Error()
		if IsNotFound(err) {
			// The record is gone either way; drop it from the panel.
			m.lookupRec = nil
			m.lookupPristine = nil
		}
		m.mu.Unlock()
		return false, err
	}
	m.lookupRec = nil
	m.lookupPristine = nil
	m.lookupErr = ""
	m.mu.Unlock()
	if rerr := m.Reload(ctx); rerr != nil {
		return true, rerr
	}
	return true, nil
}
