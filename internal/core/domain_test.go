package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("%q expected valid", c)
		}
	}
	for _, c := range []Category{"", "groceries", "Food", "none"} {
		if c.Valid() {
			t.Fatalf("%q expected invalid", c)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "t1",
		Date:        NewDate(2024, time.January, 5),
		Description: "coffee",
		Amount:      Money{Cents: 450},
		Category:    Food,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		tx    Transaction
		field string
	}{
		{"zero date", Transaction{ID: "t2", Description: "a", Amount: Money{Cents: 1}, Category: Food}, "date"},
		{"empty description", Transaction{ID: "t3", Date: NewDate(2024, 1, 1), Description: "  ", Amount: Money{Cents: 1}, Category: Food}, "description"},
		{"negative amount", Transaction{ID: "t4", Date: NewDate(2024, 1, 1), Description: "a", Amount: Money{Cents: -1}, Category: Food}, "amount"},
		{"unknown category", Transaction{ID: "t5", Date: NewDate(2024, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: "snacks"}, "category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("field = %q, want %q", verr.Field, tc.field)
			}
			if verr.RecordID != tc.tx.ID {
				t.Fatalf("record id = %q, want %q", verr.RecordID, tc.tx.ID)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{ID: "b1", Category: Utilities, Amount: Money{Cents: 50000}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{ID: "b2", Category: "rent", Amount: Money{Cents: 1}}).Validate(); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if err := (Budget{ID: "b3", Category: Food, Amount: Money{Cents: -5}}).Validate(); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2023, time.December, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2023-12-15"` {
		t.Fatalf("marshal = %s", b)
	}

	var parsed Date
	if err := json.Unmarshal([]byte(`"2023-12-15"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Fatalf("parsed = %v, want %v", parsed, d)
	}

	// RFC 3339 timestamps are accepted, time-of-day discarded
	if err := json.Unmarshal([]byte(`"2023-12-15T18:30:00.000Z"`), &parsed); err != nil {
		t.Fatalf("unmarshal rfc3339: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Fatalf("parsed = %v, want %v", parsed, d)
	}

	if err := json.Unmarshal([]byte(`"15/12/2023"`), &parsed); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
