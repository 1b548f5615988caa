package entity

import "time"

// ActionKind classifies what the decision loop chose to do on one
// iteration, in priority order.
type ActionKind string

const (
	ActionAddToBooking   ActionKind = "add_to_booking"
	ActionBookService    ActionKind = "book_service"
	ActionSelectOption   ActionKind = "select_option"
	ActionFillFields     ActionKind = "fill_fields"
	ActionSelectCheckbox ActionKind = "select_checkbox"
	ActionClickButton    ActionKind = "click_button"
)

// TraceStep records one iteration of the form-filling loop: what was
// observed, what instruction was executed, and how it went.
type TraceStep struct {
	Step        int        `json:"step"`
	Kind        ActionKind `json:"kind"`
	Instruction string     `json:"instruction"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
	At          time.Time  `json:"at"`
}

// FormTrace is the append-only record of a whole form-filling run,
// returned to the caller so a human can judge what happened.
type FormTrace struct {
	Steps        []TraceStep `json:"steps"`
	TerminatedBy string      `json:"terminated_by"`
	Iterations   int         `json:"iterations"`
}

// Termination reasons surfaced in FormTrace.TerminatedBy.
const (
	TermNoElements      = "no actionable elements"
	TermBudgetExhausted = "iteration budget exhausted"
	TermNegativeOutcome = "negative outcome reported"
	TermNoMatch         = "no classified action"
	TermDeadline        = "deadline reached"
)
