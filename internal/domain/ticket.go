package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TicketRecord is one row of an OTRS ticket export. Raw state, queue and
// priority labels are kept verbatim so distributions report exactly what the
// helpdesk configured; normalization helpers interpret them where needed.
type TicketRecord struct {
	Number        string     `json:"number"`
	Title         string     `json:"title,omitempty"`
	Queue         string     `json:"queue,omitempty"`
	Owner         string     `json:"owner,omitempty"`
	State         string     `json:"state"`
	Priority      string     `json:"priority,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	FirstResponse *time.Time `json:"first_response,omitempty"`
	Age           string     `json:"age,omitempty"`
}

// IsOpen reports whether the ticket has no close timestamp. OTRS leaves the
// Closed column empty for tickets that are still in flight.
func (t *TicketRecord) IsOpen() bool {
	return t.ClosedAt == nil
}

// ResolutionTime returns the created-to-closed duration. The second return
// value is false for open tickets.
func (t *TicketRecord) ResolutionTime() (time.Duration, bool) {
	if t.ClosedAt == nil || t.CreatedAt.IsZero() {
		return 0, false
	}
	return t.ClosedAt.Sub(t.CreatedAt), true
}

// Validate checks per-record invariants.
func (t *TicketRecord) Validate() error {
	if t.Number == "" {
		return ErrMissingTicketNumber
	}
	if t.ClosedAt != nil && !t.CreatedAt.IsZero() && t.ClosedAt.Before(t.CreatedAt) {
		return ErrClosedBeforeCreated
	}
	return nil
}

// AgeHours returns the ticket age in hours at the reference time. The raw
// OTRS Age column ("1 d 12 h", "45 m") wins when present; otherwise the age
// is derived from the creation timestamp.
func (t *TicketRecord) AgeHours(ref time.Time) float64 {
	if strings.TrimSpace(t.Age) != "" {
		return ParseAgeHours(t.Age)
	}
	if t.CreatedAt.IsZero() {
		return 0
	}
	return ref.Sub(t.CreatedAt).Hours()
}

// IsClosedState reports whether a raw state label marks the ticket as done.
// OTRS installations rename states freely, so this matches the
// closed/resolved substrings case-insensitively.
func IsClosedState(state string) bool {
	s := strings.ToLower(state)
	return strings.Contains(s, "closed") || strings.Contains(s, "resolved")
}

// PriorityRank orders OTRS priority labels ("1 very high", "2 high",
// "3 normal", ...) by their leading number. Labels without one sort last.
func PriorityRank(priority string) int {
	trimmed := strings.TrimSpace(priority)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return unrankedPriority
	}
	rank, err := strconv.Atoi(trimmed[:i])
	if err != nil {
		return unrankedPriority
	}
	return rank
}

const unrankedPriority = 999

var agePart = regexp.MustCompile(`(\d+)\s*([dhm])`)

// ParseAgeHours converts an OTRS age string such as "1 d 12 h" or "2 h 10 m"
// to total hours. Unrecognized input yields 0.
func ParseAgeHours(age string) float64 {
	var days, hours, minutes int
	for _, m := range agePart.FindAllStringSubmatch(strings.ToLower(age), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2] {
		case "d":
			days = n
		case "h":
			hours = n
		case "m":
			minutes = n
		}
	}
	return float64(days)*24 + float64(hours) + float64(minutes)/60
}

// Custom errors
var (
	ErrMissingTicketNumber = NewDomainError("ticket number is required")
	ErrClosedBeforeCreated = NewDomainError("close timestamp precedes creation timestamp")
	ErrDuplicateTicket     = NewDomainError("duplicate ticket number in export")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}
