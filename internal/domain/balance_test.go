package domain

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBalanceBook_AdjustCreditAndDebit(t *testing.T) {
	bb := NewBalanceBook()
	ctx := context.Background()

	if err := bb.Adjust(ctx, "u1", decimal.RequireFromString("100")); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if err := bb.Adjust(ctx, "u1", decimal.RequireFromString("-30")); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	bal, err := bb.Balance(ctx, "u1")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !bal.Equal(decimal.RequireFromString("70")) {
		t.Fatalf("expected 70, got %s", bal)
	}
}

func TestBalanceBook_UnknownUserStartsAtZero(t *testing.T) {
	bb := NewBalanceBook()
	bal, err := bb.Balance(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !bal.IsZero() {
		t.Fatalf("expected zero, got %s", bal)
	}
}

func TestBalance_VerifyInvariantPanicsOnNegative(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on negative balance")
		}
	}()
	b := &Balance{UserID: "u1", Amount: decimal.RequireFromString("-1")}
	b.VerifyInvariant()
}

func TestBalanceBook_VerifyAllPanicsIfAnyNegative(t *testing.T) {
	bb := NewBalanceBook()
	bb.Adjust(context.Background(), "u1", decimal.RequireFromString("-5"))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected VerifyAll to panic when a balance is negative")
		}
	}()
	bb.VerifyAll()
}

func TestBalanceBook_Snapshot(t *testing.T) {
	bb := NewBalanceBook()
	bb.Adjust(context.Background(), "u1", decimal.RequireFromString("50"))
	bb.Adjust(context.Background(), "u2", decimal.RequireFromString("25"))

	snap := bb.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(snap))
	}
	if !snap["u1"].Amount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected u1 balance 50, got %s", snap["u1"].Amount)
	}
}
