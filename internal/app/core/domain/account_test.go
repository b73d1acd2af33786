package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccountDepositWithdraw(t *testing.T) {
	account := NewAccount(1)

	if err := account.Deposit(dec("100.25")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := account.Withdraw(dec("0.25")); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if !account.Available.Equal(dec("100")) {
		t.Errorf("available = %s, want 100", account.Available)
	}
	if !account.Total.Equal(dec("100")) {
		t.Errorf("total = %s, want 100", account.Total)
	}
	account.AssertBalanced()
}

func TestAccountWithdrawInsufficient(t *testing.T) {
	account := NewAccount(1)
	if err := account.Withdraw(dec("1")); !errors.Is(err, ErrNotEnoughFunds) {
		t.Fatalf("expected ErrNotEnoughFunds, got %v", err)
	}
	if !account.Total.IsZero() {
		t.Errorf("failed withdraw must not change balances, total = %s", account.Total)
	}
}

func TestAccountNegativeAmounts(t *testing.T) {
	account := NewAccount(1)
	if err := account.Deposit(dec("-1")); !errors.Is(err, ErrInternal) {
		t.Fatalf("deposit: expected ErrInternal, got %v", err)
	}
	if err := account.Withdraw(dec("-1")); !errors.Is(err, ErrInternal) {
		t.Fatalf("withdraw: expected ErrInternal, got %v", err)
	}
}

func TestAccountHoldRelease(t *testing.T) {
	account := NewAccount(1)
	if err := account.Deposit(dec("120")); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	account.Hold(dec("120"))
	if !account.Available.IsZero() || !account.Held.Equal(dec("120")) || !account.Total.Equal(dec("120")) {
		t.Errorf("after hold: available=%s held=%s total=%s", account.Available, account.Held, account.Total)
	}
	account.AssertBalanced()

	account.Release(dec("120"))
	if !account.Available.Equal(dec("120")) || !account.Held.IsZero() {
		t.Errorf("after release: available=%s held=%s", account.Available, account.Held)
	}
	account.AssertBalanced()
}

func TestAccountChargeback(t *testing.T) {
	account := NewAccount(1)
	if err := account.Deposit(dec("120")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	account.Hold(dec("120"))
	account.Chargeback(dec("120"))

	if !account.Total.IsZero() || !account.Held.IsZero() {
		t.Errorf("after chargeback: held=%s total=%s", account.Held, account.Total)
	}
	if !account.Locked {
		t.Error("chargeback must lock the account")
	}
	account.AssertBalanced()
}

func TestAssertBalancedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on invariant violation")
		}
	}()

	account := NewAccount(1)
	account.Total = dec("1") // 手動弄壞不變量
	account.AssertBalanced()
}

func TestSnapshotIsCopy(t *testing.T) {
	account := NewAccount(1)
	if err := account.Deposit(dec("5")); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	snapshot := account.Snapshot()
	snapshot.Available = dec("9999")
	if !account.Available.Equal(dec("5")) {
		t.Error("snapshot mutation leaked into account")
	}
}
