package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// disputeEntry 爭議快取的單筆內容
//
// 結構:
//
//	tran: 原始存款交易 (只有存款會進入快取)
//	state: 爭議狀態，DisputeNone 代表從未被爭議
type disputeEntry struct {
	tran  *domain.Transaction
	state domain.DisputeState
}

// MutexLedger 是一個使用 Mutex 實現的帳務狀態機
//
// 結構:
//
//	accounts: 帳戶資料 Map
//	txCache: 可爭議交易快取，以 TxID 為 key
//	mu: Mutex 用於保護以上兩個 Map
//
// 交易必須依收到的順序套用 (由外部來源保證全序)；
// Mutex 只是讓併發讀取安全，引擎本身不做任何重排
type MutexLedger struct {
	accounts map[uint16]*domain.Account
	txCache  map[uint32]*disputeEntry
	mu       sync.RWMutex
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
func NewMutexLedger() *MutexLedger {
	return &MutexLedger{
		accounts: make(map[uint16]*domain.Account, 1024),
		txCache:  make(map[uint32]*disputeEntry, 1024),
	}
}

// AccountBalance 取得指定帳戶的當前狀態
//
// 參數:
//
//	ctx: 上下文
//	client: 帳戶 ID
//
// 回傳:
//
//	domain.Account: 帳戶快照
//	error: 查詢錯誤 (如帳戶不存在)
func (m *MutexLedger) AccountBalance(ctx context.Context, client uint16) (domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[client]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account.Snapshot(), nil
}

// Accounts 取得所有帳戶快照 (Map 迭代順序不保證)
func (m *MutexLedger) Accounts(ctx context.Context) ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshots := make([]domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		snapshots = append(snapshots, account.Snapshot())
	}
	return snapshots, nil
}

// Apply 套用單筆交易
//
// 參數:
//
//	ctx: 上下文
//	tran: 交易物件
//
// 回傳:
//
//	error: 業務規則錯誤；回傳錯誤時引擎狀態完全不變
func (m *MutexLedger) Apply(ctx context.Context, tran *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyInternal(tran)
}

// applyInternal 執行交易核心邏輯 (內部方法，呼叫方需持有鎖)
func (m *MutexLedger) applyInternal(tran *domain.Transaction) error {
	// 1. 負數金額直接拒絕，連帳戶都不建立
	//    負數會讓餘額正負翻轉，破壞所有後續檢查
	if tran.HasAmount() && tran.Amount.IsNegative() {
		return domain.ErrInternal
	}

	// 2. 取得或延遲建立帳戶 (零餘額、未鎖定)
	account, ok := m.accounts[tran.Client]
	if !ok {
		account = domain.NewAccount(tran.Client)
		m.accounts[tran.Client] = account
	}

	// 3. 鎖定是終結狀態：鎖定後該帳戶的所有交易一律拒絕
	if account.Locked {
		return domain.ErrAccountLocked
	}

	// 4. 核心交易分發
	var err error
	switch tran.Type {
	case domain.TransactionTypeDeposit:
		err = m.handleDeposit(account, tran)
	case domain.TransactionTypeWithdrawal:
		err = account.Withdraw(tran.Amount)
	case domain.TransactionTypeDispute:
		err = m.handleDispute(account, tran)
	case domain.TransactionTypeResolve:
		err = m.handleResolve(account, tran)
	case domain.TransactionTypeChargeback:
		err = m.handleChargeback(account, tran)
	default:
		err = domain.ErrMalformedRecord
	}
	if err != nil {
		return err
	}

	// 5. Resolve/Chargeback 之後該交易永遠不能再被爭議，立即從快取移除
	if tran.Type == domain.TransactionTypeResolve || tran.Type == domain.TransactionTypeChargeback {
		delete(m.txCache, tran.TxID)
	}

	// NOTE: Sanity check，違反代表狀態機壞掉，直接 panic
	account.AssertBalanced()

	return nil
}

// handleDeposit 處理存款邏輯
// 存款是唯一會進入爭議快取的交易類型
func (m *MutexLedger) handleDeposit(account *domain.Account, tran *domain.Transaction) error {
	if err := account.Deposit(tran.Amount); err != nil {
		return err
	}
	cached := *tran
	m.txCache[tran.TxID] = &disputeEntry{tran: &cached}
	return nil
}

// handleDispute 處理發起爭議
//
// 檢查順序: 交易存在 -> 所有權 -> 尚未爭議 -> 必須是存款
// 效果: Available -> Held，Total 不變
func (m *MutexLedger) handleDispute(account *domain.Account, tran *domain.Transaction) error {
	entry, ok := m.txCache[tran.TxID]
	if !ok {
		return domain.ErrTxDoesntExist
	}
	if entry.tran.Client != tran.Client {
		return domain.ErrUnauthorized
	}
	if entry.state != domain.DisputeNone {
		return domain.ErrTxAlreadyDisputed
	}
	// 快取只收存款，這個分支理論上走不到，保留做為明確的政策宣告
	if entry.tran.Type != domain.TransactionTypeDeposit {
		return domain.ErrInvalidDispute
	}

	account.Hold(entry.tran.Amount)
	entry.state = domain.DisputeOpen
	return nil
}

// handleResolve 處理撤銷爭議
// 效果: Held -> Available (Dispute 的反向操作)
func (m *MutexLedger) handleResolve(account *domain.Account, tran *domain.Transaction) error {
	entry, ok := m.txCache[tran.TxID]
	if !ok {
		return domain.ErrTxDoesntExist
	}
	if entry.tran.Client != tran.Client {
		return domain.ErrUnauthorized
	}
	if entry.tran.Type != domain.TransactionTypeDeposit {
		return domain.ErrInvalidDispute
	}
	if entry.state != domain.DisputeOpen {
		return domain.ErrTxNotUnderDispute
	}

	account.Release(entry.tran.Amount)
	entry.state = domain.DisputeResolved
	return nil
}

// handleChargeback 處理爭議成立
// 效果: 凍結資金永久移除，帳戶鎖定
func (m *MutexLedger) handleChargeback(account *domain.Account, tran *domain.Transaction) error {
	entry, ok := m.txCache[tran.TxID]
	if !ok {
		return domain.ErrTxDoesntExist
	}
	if entry.tran.Client != tran.Client {
		return domain.ErrUnauthorized
	}
	if entry.tran.Type != domain.TransactionTypeDeposit {
		return domain.ErrInvalidDispute
	}
	if entry.state != domain.DisputeOpen {
		return domain.ErrTxNotUnderDispute
	}

	account.Chargeback(entry.tran.Amount)
	entry.state = domain.DisputeResolved
	return nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
