package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/store"
)

func TestListNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	older, _ := s.CreateTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, time.January, 1), Description: "old", Amount: core.Money{Cents: 100}, Category: core.Food,
	})
	newer, _ := s.CreateTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, time.March, 1), Description: "new", Amount: core.Money{Cents: 200}, Category: core.Food,
	})

	list, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestRecentLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	for day := 1; day <= 4; day++ {
		if _, err := s.CreateTransaction(ctx, core.Transaction{
			Date: core.NewDate(2024, time.May, day), Description: "x", Amount: core.Money{Cents: 1}, Category: core.Other,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	recent, err := s.RecentTransactions(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 || recent[0].Date.Day() != 4 {
		t.Fatalf("unexpected recent: %+v", recent)
	}
}

func TestDeleteExactlyOne(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.CreateTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, time.January, 1), Description: "a", Amount: core.Money{Cents: 1}, Category: core.Food,
	})
	b, _ := s.CreateTransaction(ctx, core.Transaction{
		Date: core.NewDate(2024, time.January, 2), Description: "b", Amount: core.Money{Cents: 2}, Category: core.Food,
	})

	if err := s.DeleteTransaction(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := s.ListTransactions(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("delete removed the wrong record: %+v", list)
	}
	if len(s.seq) != 1 || s.seq[0] != b.ID {
		t.Fatalf("id sequence not pruned on delete: %v", s.seq)
	}

	var nf *store.NotFoundError
	if err := s.DeleteTransaction(ctx, a.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSetBudgetReplacesNotDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.SetBudget(ctx, core.Food, core.Money{Cents: 10000})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	second, err := s.SetBudget(ctx, core.Food, core.Money{Cents: 15000})
	if err != nil {
		t.Fatalf("set again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("upsert should keep the original id")
	}

	budgets, _ := s.ListBudgets(ctx)
	if len(budgets) != 1 || budgets[0].Amount.Cents != 15000 {
		t.Fatalf("expected single replaced budget, got %+v", budgets)
	}

	if _, err := s.SetBudget(ctx, "vacation", core.Money{Cents: 1}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
