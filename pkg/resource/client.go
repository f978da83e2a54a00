package resource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Page is one page of a listing, already tolerant of sparse server payloads:
// a missing items array decodes as an empty slice and a missing total_pages
// is normalized to 1.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:1816/api.
	BaseURL string
	// Resource is the collection path segment, e.g. "contacts".
	Resource string
	// Tokens supplies the bearer token; nil sends unauthenticated requests.
	Tokens TokenSource
	// ReadTimeout bounds list/get calls, WriteTimeout bounds mutations.
	// Zero values fall back to 5s and 10s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client talks to one resource collection of the portal API. All methods
// return *Error on failure so callers can branch on the kind.
type Client[T any] struct {
	base         string
	resource     string
	tokens       TokenSource
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient[T any](opts Options) *Client[T] {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	return &Client[T]{
		base:         strings.TrimRight(opts.BaseURL, "/"),
		resource:     strings.Trim(opts.Resource, "/"),
		tokens:       opts.Tokens,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
	}
}

func (c *Client[T]) collectionURL() string {
	return c.base + "/" + c.resource
}

func (c *Client[T]) itemURL(id string) string {
	return c.collectionURL() + "/" + id
}

func (c *Client[T]) headers() gout.H {
	h := gout.H{
		"Accept":       "application/json",
		"X-Request-Id": uuid.NewString(),
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			h["Authorization"] = "Bearer " + tok
		}
	}
	return h
}

// envelope mirrors the server response wrapper.
type envelope struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Detail  string              `json:"detail"`
	Data    jsoniter.RawMessage `json:"data"`
}

// do runs one request and decodes the envelope data into out (skipped when
// out is nil). op names the action for error text.
func (c *Client[T]) do(ctx context.Context, op string, df *dataflow.DataFlow, timeout time.Duration, out interface{}) error {
	var (
		body []byte
		code int
	)
	err := df.WithContext(ctx).
		SetTimeout(timeout).
		SetHeader(c.headers()).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return transportErr(op, err)
	}

	var env envelope
	if len(body) > 0 {
		// A malformed body on a 2xx is a server bug; on errors we still
		// want the status-based message, so decode failures are soft.
		if derr := json.Unmarshal(body, &env); derr != nil && code >= 200 && code < 300 {
			return &Error{Kind: KindServer, Status: code,
				Message: fmt.Sprintf("failed to %s: bad response body", op)}
		}
	}
	if code < 200 || code >= 300 {
		return normalizeHTTP(op, code, env.Message)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if derr := json.Unmarshal(env.Data, out); derr != nil {
		return &Error{Kind: KindServer, Status: code,
			Message: fmt.Sprintf("failed to %s: bad response body", op)}
	}
	return nil
}

// List fetches one page. page is 1-based; limit <= 0 lets the server pick.
func (c *Client[T]) List(ctx context.Context, page, limit int) (Page[T], error) {
	var out Page[T]
	q := gout.H{"page": page}
	if limit > 0 {
		q["limit"] = limit
	}
	err := c.do(ctx, "load "+c.resource, gout.GET(c.collectionURL()).SetQuery(q), c.readTimeout, &out)
	if err != nil {
		return Page[T]{}, err
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	if out.TotalPages < 1 {
		out.TotalPages = 1
	}
	if out.Page < 1 {
		out.Page = page
	}
	return out, nil
}

// GetByID fetches a single record; a missing id yields a KindNotFound error.
func (c *Client[T]) GetByID(ctx context.Context, id string) (T, error) {
	var out T
	err := c.do(ctx, "load record", gout.GET(c.itemURL(id)), c.readTimeout, &out)
	return out, err
}

// Create posts a new record and returns the stored row.
func (c *Client[T]) Create(ctx context.Context, draft interface{}) (T, error) {
	var out T
	err := c.do(ctx, "create record", gout.POST(c.collectionURL()).SetJSON(draft), c.writeTimeout, &out)
	return out, err
}

// Update replaces the editable fields of id and returns the stored row.
func (c *Client[T]) Update(ctx context.Context, id string, draft interface{}) (T, error) {
	var out T
	err := c.do(ctx, "save record", gout.PUT(c.itemURL(id)).SetJSON(draft), c.writeTimeout, &out)
	return out, err
}

// PatchStatus moves a record to the given status and returns the stored row.
func (c *Client[T]) PatchStatus(ctx context.Context, id, status string) (T, error) {
	var out T
	err := c.do(ctx, "update status",
		gout.PATCH(c.itemURL(id)+"/status").SetJSON(gout.H{"status": status}), c.writeTimeout, &out)
	return out, err
}

// Remove deletes id. Removing an already-removed id returns KindNotFound.
func (c *Client[T]) Remove(ctx context.Context, id string) error {
	return c.do(ctx, "delete record", gout.DELETE(c.itemURL(id)), c.writeTimeout, nil)
}
