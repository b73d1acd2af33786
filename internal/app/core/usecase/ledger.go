package usecase

import (
	"context"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// Ledger 是帳務狀態機的介面
type Ledger interface {
	// 不分交易類型，直接看 tran.Type 決定
	// 成功時恰好一個帳戶的餘額反映這筆交易；失敗時狀態完全不變
	Apply(ctx context.Context, tran *domain.Transaction) error
	// AccountBalance 取得單一帳戶狀態
	AccountBalance(ctx context.Context, client uint16) (domain.Account, error)
	// Accounts 取得所有帳戶快照 (順序不保證)
	Accounts(ctx context.Context) ([]domain.Account, error)
}

// TransactionSource 依序供應交易的來源 (Ingestion Adapter 實作)
//
// Next 回傳:
//
//	*domain.Transaction: 下一筆交易
//	error: io.EOF 代表來源結束；
//	       domain.ErrMalformedRecord 代表該筆紀錄無法解析，應跳過
type TransactionSource interface {
	Next() (*domain.Transaction, error)
}
