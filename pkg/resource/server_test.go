package resource

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type testContact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// fakePortal is an in-memory stand-in for the contacts API speaking the
// portal envelope. Handlers run under beforeHandle when set, which lets
// tests stall individual requests.
type fakePortal struct {
	mu           sync.Mutex
	seq          int
	records      map[string]*testContact
	pageSize     int
	beforeHandle func(r *http.Request)
	// sparse strips total_pages and empty items arrays from list
	// responses to mimic older server builds.
	sparse bool

	srv *httptest.Server
}

func newFakePortal() *fakePortal {
	p := &fakePortal{records: map[string]*testContact{}, pageSize: 20}
	p.srv = httptest.NewServer(http.HandlerFunc(p.handle))
	return p
}

func (p *fakePortal) Close()      { p.srv.Close() }
func (p *fakePortal) URL() string { return p.srv.URL + "/api" }

func (p *fakePortal) add(c testContact) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	c.ID = strconv.Itoa(p.seq)
	if c.Status == "" {
		c.Status = "pending"
	}
	p.records[c.ID] = &c
	return c.ID
}

func (p *fakePortal) get(id string) (testContact, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.records[id]
	if !ok {
		return testContact{}, false
	}
	return *c, true
}

func writeEnv(w http.ResponseWriter, status int, code, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code": code, "message": message, "data": data,
	})
}

func (p *fakePortal) handle(w http.ResponseWriter, r *http.Request) {
	if fn := p.beforeHandle; fn != nil {
		fn(r)
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/contacts")
	path = strings.Trim(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		p.handleList(w, r)
	case path == "" && r.Method == http.MethodPost:
		p.handleCreate(w, r)
	case strings.HasSuffix(path, "/status") && r.Method == http.MethodPatch:
		p.handleStatus(w, r, strings.TrimSuffix(path, "/status"))
	case r.Method == http.MethodGet:
		p.handleGet(w, path)
	case r.Method == http.MethodPut:
		p.handleUpdate(w, r, path)
	case r.Method == http.MethodDelete:
		p.handleDelete(w, path)
	default:
		writeEnv(w, 405, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	}
}

func (p *fakePortal) handleList(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	all := make([]testContact, 0, len(p.records))
	for _, c := range p.records {
		all = append(all, *c)
	}
	sparse := p.sparse
	pageSize := p.pageSize
	p.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	if v, _ := strconv.Atoi(r.URL.Query().Get("limit")); v > 0 {
		pageSize = v
	}
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	items := all[start:end]

	data := map[string]interface{}{
		"total": total, "page": page, "page_size": pageSize,
	}
	if !sparse {
		data["items"] = items
		data["total_pages"] = totalPages
	} else if len(items) > 0 {
		data["items"] = items
	}
	writeEnv(w, 200, "OK", "", data)
}

func (p *fakePortal) handleCreate(w http.ResponseWriter, r *http.Request) {
	var c testContact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeEnv(w, 400, "BAD_REQUEST", "invalid body", nil)
		return
	}
	if c.Email == "" {
		writeEnv(w, 400, "VALIDATION_FAILED", "email is required", nil)
		return
	}
	c.ID = ""
	id := p.add(c)
	stored, _ := p.get(id)
	writeEnv(w, 200, "OK", "", stored)
}

func (p *fakePortal) handleGet(w http.ResponseWriter, id string) {
	c, ok := p.get(id)
	if !ok {
		writeEnv(w, 404, "CONTACT_NOT_FOUND", fmt.Sprintf("contact %s not found", id), nil)
		return
	}
	writeEnv(w, 200, "OK", "", c)
}

func (p *fakePortal) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var in testContact
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnv(w, 400, "BAD_REQUEST", "invalid body", nil)
		return
	}
	p.mu.Lock()
	c, ok := p.records[id]
	if ok {
		c.Name = in.Name
		c.Message = in.Message
		if in.Status != "" {
			c.Status = in.Status
		}
	}
	p.mu.Unlock()
	if !ok {
		writeEnv(w, 404, "CONTACT_NOT_FOUND", fmt.Sprintf("contact %s not found", id), nil)
		return
	}
	stored, _ := p.get(id)
	writeEnv(w, 200, "OK", "", stored)
}

func (p *fakePortal) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Status == "" {
		writeEnv(w, 400, "BAD_REQUEST", "status is required", nil)
		return
	}
	p.mu.Lock()
	c, ok := p.records[id]
	if ok {
		c.Status = in.Status
	}
	p.mu.Unlock()
	if !ok {
		writeEnv(w, 404, "CONTACT_NOT_FOUND", fmt.Sprintf("contact %s not found", id), nil)
		return
	}
	stored, _ := p.get(id)
	writeEnv(w, 200, "OK", "", stored)
}

func (p *fakePortal) handleDelete(w http.ResponseWriter, id string) {
	p.mu.Lock()
	_, ok := p.records[id]
	if ok {
		delete(p.records, id)
	}
	p.mu.Unlock()
	if !ok {
		writeEnv(w, 404, "CONTACT_NOT_FOUND", fmt.Sprintf("contact %s not found", id), nil)
		return
	}
	writeEnv(w, 200, "OK", "", nil)
}
