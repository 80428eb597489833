package core

import "time"

// Status distinguishes how a GenerationResult was produced.
type Status string

const (
	StatusOK       Status = "ok"       // Live content that passed validation
	StatusMock     Status = "mock"     // No credential configured, placeholder content
	StatusFallback Status = "fallback" // A live attempt failed or under-validated
	StatusError    Status = "error"    // Request rejected at the transport boundary
)

// DateLayout is the calendar-day format used for request dates and record keys.
const DateLayout = "2006-01-02"

// GenerationRequest is the inbound payload for a single generation call.
type GenerationRequest struct {
	Date   string `json:"date,omitempty"`   // Calendar day, YYYY-MM-DD
	Topic  string `json:"topic,omitempty"`  // Optional caller-supplied focus topic
	UserID string `json:"userId,omitempty"` // Optional caller identity, used only as a store key
}

// ResearchBrief is the daily research write-up.
type ResearchBrief struct {
	Title        string `json:"title"`
	Introduction string `json:"introduction"`
	KeyFindings  string `json:"keyFindings"`
	Conclusion   string `json:"conclusion"`
	Source       string `json:"source"`
}

// ConceptCard is a single flashcard concept.
type ConceptCard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// GenerationResult is returned for every generation call, live or not.
// It is built fresh per request and never mutated after it is returned.
type GenerationResult struct {
	Status   Status         `json:"status"`
	Research ResearchBrief  `json:"research"`
	Concepts []ConceptCard  `json:"concepts"`
	Debug    map[string]any `json:"debug"`
	Error    string         `json:"error,omitempty"` // Set only by the transport boundary
}

// ModelDescriptor describes one model exposed by the generation provider.
type ModelDescriptor struct {
	Name                string   `json:"name"`
	SupportedOperations []string `json:"supportedOperations"`
}

// Supports reports whether the model lists the given operation.
func (m ModelDescriptor) Supports(op string) bool {
	for _, o := range m.SupportedOperations {
		if o == op {
			return true
		}
	}
	return false
}

// DayRecord is the persisted state for one user and one calendar day.
type DayRecord struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Date      string        `json:"date"`
	Research  ResearchBrief `json:"research"`
	Concepts  []ConceptCard `json:"concepts"`
	Journal   string        `json:"journal"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// HasBrief reports whether generated content has been stored for the day.
// Journal-only records have none.
func (d DayRecord) HasBrief() bool {
	return d.Research.Title != ""
}
