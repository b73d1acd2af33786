package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType 交易類型
// 為了極致節省記憶體，使用 uint8
type TransactionType uint8

const (
	// 存款
	TransactionTypeDeposit TransactionType = 1
	// 提款
	TransactionTypeWithdrawal TransactionType = 2
	// 發起爭議 (凍結被引用存款的資金)
	TransactionTypeDispute TransactionType = 3
	// 撤銷爭議 (資金解凍)
	TransactionTypeResolve TransactionType = 4
	// 爭議成立 (資金退回並鎖定帳戶)
	TransactionTypeChargeback TransactionType = 5
)

// String 回傳外部紀錄格式使用的小寫名稱
func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "deposit"
	case TransactionTypeWithdrawal:
		return "withdrawal"
	case TransactionTypeDispute:
		return "dispute"
	case TransactionTypeResolve:
		return "resolve"
	case TransactionTypeChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ParseTransactionType 解析外部紀錄的 type 欄位 (不分大小寫)
//
// 參數:
//
//	s: 紀錄中的 type 欄位值
//
// 回傳:
//
//	TransactionType: 對應的交易類型
//	error: 無法辨識時回傳 ErrMalformedRecord
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return TransactionTypeDeposit, nil
	case "withdrawal":
		return TransactionTypeWithdrawal, nil
	case "dispute":
		return TransactionTypeDispute, nil
	case "resolve":
		return TransactionTypeResolve, nil
	case "chargeback":
		return TransactionTypeChargeback, nil
	default:
		return 0, ErrMalformedRecord
	}
}

// DisputeState 爭議狀態
type DisputeState uint8

const (
	// DisputeNone 從未被爭議 (零值)
	DisputeNone DisputeState = 0
	// DisputeOpen 爭議進行中
	DisputeOpen DisputeState = 1
	// DisputeResolved 爭議已終結
	DisputeResolved DisputeState = 2
)

// Transaction 交易 注意欄位排序以避免 Padding
type Transaction struct {
	// Amount: 金額，只對 Deposit/Withdrawal 有意義
	Amount decimal.Decimal
	// TxID: 交易 ID，Deposit/Withdrawal 全域唯一；
	// Dispute/Resolve/Chargeback 以此引用原始存款
	TxID uint32
	// Client: 帳戶 ID
	Client uint16
	// Type: 放到最後面，利用 Padding 空間
	Type TransactionType
}

// HasAmount 回傳此交易類型是否攜帶金額
func (t *Transaction) HasAmount() bool {
	return t.Type == TransactionTypeDeposit || t.Type == TransactionTypeWithdrawal
}
