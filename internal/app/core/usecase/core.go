package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// RejectSink 接收被拒絕紀錄的落地介面 (pkg/journal 實作)
type RejectSink interface {
	Write(v any) error
}

// RejectedRecord 是寫入 journal 的單筆拒絕紀錄
type RejectedRecord struct {
	ReplayID uuid.UUID `json:"replay_id"`
	Type     string    `json:"type"`
	Client   uint16    `json:"client"`
	Tx       uint32    `json:"tx"`
	Amount   string    `json:"amount,omitempty"`
	Error    string    `json:"error"`
	At       int64     `json:"at"`
}

// ReplayStats 整批重放的統計結果
type ReplayStats struct {
	// ReplayID: 本次重放的追蹤 ID
	ReplayID uuid.UUID
	// Applied: 成功套用的交易數
	Applied uint64
	// Rejected: 被業務規則拒絕的交易數
	Rejected uint64
	// Malformed: 無法解析而跳過的來源紀錄數
	Malformed uint64
}

// CoreUseCase 是核心業務邏輯層
type CoreUseCase struct {
	ledger  Ledger
	logger  *zap.Logger
	journal RejectSink
	verbose bool
}

// CoreOption 定義 CoreUseCase 的配置選項函數
type CoreOption func(*CoreUseCase)

// WithJournal 設定拒絕紀錄的落地目標
func WithJournal(journal RejectSink) CoreOption {
	return func(c *CoreUseCase) {
		c.journal = journal
	}
}

// WithVerbose 開啟逐筆拒絕紀錄的 log 輸出
func WithVerbose(verbose bool) CoreOption {
	return func(c *CoreUseCase) {
		c.verbose = verbose
	}
}

func NewCoreUseCase(ledger Ledger, logger *zap.Logger, opts ...CoreOption) *CoreUseCase {
	c := &CoreUseCase{
		ledger: ledger,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply 套用單筆交易
func (c *CoreUseCase) Apply(ctx context.Context, tran *domain.Transaction) error {
	return c.ledger.Apply(ctx, tran)
}

// AccountBalance 取得帳戶狀態
func (c *CoreUseCase) AccountBalance(ctx context.Context, client uint16) (domain.Account, error) {
	return c.ledger.AccountBalance(ctx, client)
}

// Accounts 取得所有帳戶快照
func (c *CoreUseCase) Accounts(ctx context.Context) ([]domain.Account, error) {
	return c.ledger.Accounts(ctx)
}

// Replay 依序重放整個交易來源
//
// 單筆業務錯誤只會讓該筆被丟棄，不會中斷整批重放；
// 來源結束 (io.EOF) 時回傳統計結果
//
// 參數:
//
//	ctx: 上下文
//	src: 交易來源 (Ingestion Adapter)
//
// 回傳:
//
//	ReplayStats: 重放統計
//	error: 來源本身的致命錯誤 (非單筆紀錄問題)
func (c *CoreUseCase) Replay(ctx context.Context, src TransactionSource) (ReplayStats, error) {
	stats := ReplayStats{ReplayID: uuid.New()}

	for {
		tran, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, domain.ErrMalformedRecord) {
				stats.Malformed++
				if c.verbose {
					c.logger.Warn("skipping malformed record",
						zap.String("replay_id", stats.ReplayID.String()),
						zap.Error(err),
					)
				}
				continue
			}
			return stats, err
		}

		if err := c.ledger.Apply(ctx, tran); err != nil {
			stats.Rejected++
			c.recordReject(stats.ReplayID, tran, err)
			continue
		}
		stats.Applied++
	}

	c.logger.Info("replay finished",
		zap.String("replay_id", stats.ReplayID.String()),
		zap.Uint64("applied", stats.Applied),
		zap.Uint64("rejected", stats.Rejected),
		zap.Uint64("malformed", stats.Malformed),
	)
	return stats, nil
}

// recordReject 落地單筆被拒絕的交易 (log + journal，兩者皆為 best effort)
func (c *CoreUseCase) recordReject(replayID uuid.UUID, tran *domain.Transaction, cause error) {
	if c.verbose {
		c.logger.Warn("transaction rejected",
			zap.String("replay_id", replayID.String()),
			zap.String("type", tran.Type.String()),
			zap.Uint16("client", tran.Client),
			zap.Uint32("tx", tran.TxID),
			zap.Error(cause),
		)
	}

	if c.journal == nil {
		return
	}
	rec := RejectedRecord{
		ReplayID: replayID,
		Type:     tran.Type.String(),
		Client:   tran.Client,
		Tx:       tran.TxID,
		Error:    cause.Error(),
		At:       time.Now().UnixMilli(),
	}
	if tran.HasAmount() {
		rec.Amount = tran.Amount.String()
	}
	if err := c.journal.Write(rec); err != nil {
		c.logger.Warn("failed to journal rejected transaction", zap.Error(err))
	}
}
