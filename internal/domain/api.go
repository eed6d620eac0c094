package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// ============================================================
// Request bodies
// ============================================================

// InputValue is a form value that may arrive as a JSON string or number.
// Anything else reads as empty.
type InputValue json.RawMessage

// UnmarshalJSON keeps the raw token for lazy interpretation.
func (v *InputValue) UnmarshalJSON(b []byte) error {
	*v = append((*v)[:0], b...)
	return nil
}

// Text returns the value as entered: the string contents, or the literal
// digits of a number.
func (v InputValue) Text() string {
	raw := bytes.TrimSpace(v)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

// SalaryRequest is the body of POST /v1/budget/salary.
type SalaryRequest struct {
	Value InputValue `json:"value"`
}

// UpdateItemRequest is the body of PATCH /v1/budget/items/{category}/{id}.
type UpdateItemRequest struct {
	Field string     `json:"field"`
	Value InputValue `json:"value"`
}

// ============================================================
// Responses
// ============================================================

// SnapshotResponse is returned by every budget route.
type SnapshotResponse struct {
	Snapshot
	Display SnapshotDisplay `json:"display"`
}

// NewSnapshotResponse pairs s with its formatted values.
func NewSnapshotResponse(s Snapshot) SnapshotResponse {
	return SnapshotResponse{Snapshot: s, Display: FormatSnapshot(s)}
}

// BudgetView is the full form: items plus derived values.
type BudgetView struct {
	State    BudgetState      `json:"state"`
	Snapshot SnapshotResponse `json:"snapshot"`
}

// AddItemResponse is returned by POST /v1/budget/items/{category}.
type AddItemResponse struct {
	Category Category         `json:"category"`
	Item     LineItem         `json:"item"`
	Snapshot SnapshotResponse `json:"snapshot"`
}

// SessionResponse is returned by POST /v1/sessions.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	BudgetView
}

// ============================================================
// Events
// ============================================================

// SnapshotEvent is published to subscribers after every mutation.
type SnapshotEvent struct {
	SessionID  string    `json:"session_id"`
	Operation  string    `json:"operation"`
	Snapshot   Snapshot  `json:"snapshot"`
	OccurredAt time.Time `json:"occurred_at"`
}
