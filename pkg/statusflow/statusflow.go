// Package statusflow defines the declarative status machines used by every
// status-bearing resource. A Flow is pure data: ordered states, each with a
// display badge and an optional next state. All transition decisions go
// through Flow.Next so no handler carries its own transition table.
package statusflow

type State struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	// Next is nil for terminal states.
	Next *string `json:"next,omitempty"`
}

type Flow struct {
	Resource string  `json:"resource"`
	States   []State `json:"states"`
	Initial  string  `json:"initial"`

	index map[string]int
}

func NewFlow(resource string, initial string, states ...State) *Flow {
	f := &Flow{Resource: resource, States: states, Initial: initial, index: map[string]int{}}
	for i, s := range states {
		f.index[s.Code] = i
	}
	return f
}

// Valid reports whether code is a state of this flow.
func (f *Flow) Valid(code string) bool {
	_, ok := f.index[code]
	return ok
}

// Next returns the successor of current, or ok=false when current is
// terminal or unknown.
func (f *Flow) Next(current string) (string, bool) {
	i, ok := f.index[current]
	if !ok || f.States[i].Next == nil {
		return "", false
	}
	return *f.States[i].Next, true
}

// Badge returns the display state for code; unknown codes get a neutral badge
// so a bad row never renders blank.
func (f *Flow) Badge(code string) State {
	if i, ok := f.index[code]; ok {
		return f.States[i]
	}
	return State{Code: code, Label: code, Icon: "question", Color: "gray"}
}

// Codes returns all state codes in declaration order.
func (f *Flow) Codes() []string {
	codes := make([]string, 0, len(f.States))
	for _, s := range f.States {
		codes = append(codes, s.Code)
	}
	return codes
}

func next(code string) *string { return &code }

// Contact submissions cycle so an admin can re-open a rejected inquiry.
var ContactFlow = NewFlow("contact", "pending",
	State{Code: "pending", Label: "Pending", Icon: "clock", Color: "yellow", Next: next("processed")},
	State{Code: "processed", Label: "Processed", Icon: "check", Color: "green", Next: next("rejected")},
	State{Code: "rejected", Label: "Rejected", Icon: "x", Color: "red", Next: next("pending")},
)

// Service messages move one way and end archived.
var MessageFlow = NewFlow("message", "new",
	State{Code: "new", Label: "New", Icon: "mail", Color: "blue", Next: next("in_progress")},
	State{Code: "in_progress", Label: "In Progress", Icon: "loader", Color: "yellow", Next: next("resolved")},
	State{Code: "resolved", Label: "Resolved", Icon: "check", Color: "green", Next: next("archived")},
	State{Code: "archived", Label: "Archived", Icon: "archive", Color: "gray"},
)

// UserRoleFlow toggles between the two account roles.
var UserRoleFlow = NewFlow("user", "user",
	State{Code: "user", Label: "User", Icon: "user", Color: "blue", Next: next("admin")},
	State{Code: "admin", Label: "Admin", Icon: "shield", Color: "purple", Next: next("user")},
)

var TestimonialFlow = NewFlow("testimonial", "pending",
	State{Code: "pending", Label: "Pending", Icon: "clock", Color: "yellow", Next: next("approved")},
	State{Code: "approved", Label: "Approved", Icon: "check", Color: "green", Next: next("rejected")},
	State{Code: "rejected", Label: "Rejected", Icon: "x", Color: "red", Next: next("pending")},
)

// PaymentFlow: refunded is terminal, failed payments can be retried.
var PaymentFlow = NewFlow("payment", "pending",
	State{Code: "pending", Label: "Pending", Icon: "clock", Color: "yellow", Next: next("completed")},
	State{Code: "completed", Label: "Completed", Icon: "check", Color: "green", Next: next("refunded")},
	State{Code: "refunded", Label: "Refunded", Icon: "rotate-ccw", Color: "gray"},
	State{Code: "failed", Label: "Failed", Icon: "x", Color: "red", Next: next("pending")},
)

var flows = map[string]*Flow{
	ContactFlow.Resource:     ContactFlow,
	MessageFlow.Resource:     MessageFlow,
	UserRoleFlow.Resource:    UserRoleFlow,
	TestimonialFlow.Resource: TestimonialFlow,
	PaymentFlow.Resource:     PaymentFlow,
}

// Lookup returns the registered flow for a resource name.
func Lookup(resource string) (*Flow, bool) {
	f, ok := flows[resource]
	return f, ok
}
