package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Food           Category = "food"
	Transportation Category = "transportation"
	Entertainment  Category = "entertainment"
	Utilities      Category = "utilities"
	Other          Category = "other"
)

type (
	// Category classifies a transaction's purpose. The set is closed: the
	// store rejects any value outside it instead of defaulting.
	Category string

	// Date is a calendar day. Time-of-day carries no meaning and is
	// discarded on input.
	Date struct {
		time.Time
	}

	// Transaction is a single recorded expense. ID is assigned by the
	// store on creation and immutable thereafter.
	Transaction struct {
		ID          string   `json:"id"`
		Date        Date     `json:"date"`
		Description string   `json:"description"`
		Amount      Money    `json:"amount"`
		Category    Category `json:"category"`
	}

	// Budget is a spending ceiling for exactly one category. At most one
	// budget record exists per category at any time.
	Budget struct {
		ID       string   `json:"id"`
		Category Category `json:"category"`
		Amount   Money    `json:"amount"`
	}
)

var (
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingAmount    = errors.New("amount is required")
	ErrUnknownCategory  = errors.New("unknown category")
)

// ValidationError names the offending record and field of a malformed input.
// Aggregation and the stores fail with it rather than coercing to zero or
// silently dropping the record.
type ValidationError struct {
	RecordID string
	Field    string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("record %s: invalid %s: %v", e.RecordID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(recordID, field string, err error) *ValidationError {
	return &ValidationError{RecordID: recordID, Field: field, Err: err}
}

// Categories returns the closed category set in its canonical order.
func Categories() []Category {
	return []Category{Food, Transportation, Entertainment, Utilities, Other}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	switch c {
	case Food, Transportation, Entertainment, Utilities, Other:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts "2006-01-02" or an RFC 3339 timestamp (the previous
// store returned full timestamps); any time-of-day is dropped.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return ErrZeroDate
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", s, err)
		}
	}
	*d = NewDate(t.Year(), t.Month(), t.Day())
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Validate checks every field a meaningful aggregation depends on.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return invalid(t.ID, "date", err)
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return invalid(t.ID, "description", ErrEmptyDescription)
	}
	if len(t.Description) > 200 {
		return invalid(t.ID, "description", errors.New("description too long (max 200 characters)"))
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid(t.ID, "amount", err)
	}
	if !t.Category.Valid() {
		return invalid(t.ID, "category", ErrUnknownCategory)
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return invalid(b.ID, "category", ErrUnknownCategory)
	}
	if err := b.Amount.Validate(); err != nil {
		return invalid(b.ID, "amount", err)
	}
	return nil
}
