package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account 帳戶
//
// 結構:
//
//	Client: 帳戶 ID (外部紀錄的 client 欄位)
//	Available: 可動用餘額
//	Held: 爭議中被凍結的餘額
//	Total: 總餘額，恆等於 Available + Held
//	Locked: 鎖定後永久拒絕任何交易
type Account struct {
	Client    uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// NewAccount 建立零餘額的新帳戶 (首次引用時延遲建立)
func NewAccount(client uint16) *Account {
	return &Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Deposit 存款
func (a *Account) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInternal
	}

	a.Available = a.Available.Add(amount)
	a.Total = a.Total.Add(amount)
	return nil
}

// Withdraw 提款
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInternal
	}

	if a.Available.LessThan(amount) {
		return ErrNotEnoughFunds
	}

	a.Available = a.Available.Sub(amount)
	a.Total = a.Total.Sub(amount)
	return nil
}

// Hold 凍結爭議金額：Available -> Held，Total 不變
func (a *Account) Hold(amount decimal.Decimal) {
	a.Available = a.Available.Sub(amount)
	a.Held = a.Held.Add(amount)
}

// Release 解凍爭議金額：Held -> Available，Total 不變 (Hold 的反向操作)
func (a *Account) Release(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Available = a.Available.Add(amount)
}

// Chargeback 爭議成立：凍結資金永久移除並鎖定帳戶
func (a *Account) Chargeback(amount decimal.Decimal) {
	a.Held = a.Held.Sub(amount)
	a.Total = a.Total.Sub(amount)
	a.Locked = true
}

// Snapshot 回傳帳戶目前狀態的複本 (報表用)
func (a *Account) Snapshot() Account {
	return *a
}

// AssertBalanced 檢查 Total == Available + Held 不變量
// 違反代表狀態機本身有邏輯缺陷，直接 panic 而不是回傳錯誤
func (a *Account) AssertBalanced() {
	if !a.Total.Equal(a.Available.Add(a.Held)) {
		panic(fmt.Sprintf(
			"account %d balance invariant violated: total=%s available=%s held=%s",
			a.Client, a.Total, a.Available, a.Held,
		))
	}
}
