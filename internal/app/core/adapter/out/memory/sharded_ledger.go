package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// applyRequest 交易請求包裝channel，讓Apply可以等待結果
type applyRequest struct {
	Tran   *domain.Transaction
	Result chan error // 讓 Apply 等這個 channel
}

// shard 單一分片：獨佔自己的帳戶與爭議快取，只由自己的 run loop 寫入
type shard struct {
	state    *MutexLedger
	requests chan *applyRequest
}

// ShardedLedger 依 client ID 將帳戶切成多個互不相干的分片
//
// 沒有任何交易會同時碰到兩個 client，所以分片之間零互動；
// 每個分片一條輸送帶 + 一個 run loop，分片內依送入順序處理，
// 等同於每個分片各跑一台獨立的狀態機
type ShardedLedger struct {
	shards []*shard
	// Pool 減少 GC 壓力
	requestPool sync.Pool
}

// NewShardedLedger 建立一個新的 ShardedLedger 實例
//
// 參數:
//
//	shardCount: 分片數量 (小於 1 時視為 1)
//
// 回傳:
//
//	*ShardedLedger: ShardedLedger 實例
//
// 注意: 必須先呼叫 Start 啟動 run loop，否則 Apply 會永久阻塞
func NewShardedLedger(shardCount int) *ShardedLedger {
	if shardCount < 1 {
		shardCount = 1
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{
			state:    NewMutexLedger(),
			requests: make(chan *applyRequest, 1000), // Buffer 1000
		}
	}

	return &ShardedLedger{
		shards: shards,
		requestPool: sync.Pool{
			New: func() interface{} {
				return &applyRequest{
					Result: make(chan error, 1),
				}
			},
		},
	}
}

// shardFor 依 client ID 選擇分片
func (l *ShardedLedger) shardFor(client uint16) *shard {
	return l.shards[int(client)%len(l.shards)]
}

// Start 啟動所有分片的 run loop (非同步)
func (l *ShardedLedger) Start(ctx context.Context) {
	for _, s := range l.shards {
		go l.run(ctx, s)
	}
}

func (l *ShardedLedger) run(ctx context.Context, s *shard) {
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的交易處理完
			l.drain(s)
			return
		case req := <-s.requests:
			l.processRequest(s, req)
		}
	}
}

func (l *ShardedLedger) drain(s *shard) {
	for {
		select {
		case req := <-s.requests:
			l.processRequest(s, req)
		default:
			return
		}
	}
}

// processRequest 在分片的 run loop 中處理單筆交易並回傳結果
func (l *ShardedLedger) processRequest(s *shard, req *applyRequest) {
	req.Result <- s.state.Apply(context.Background(), req.Tran)
}

// Apply 接收交易請求，路由到對應分片並等待結果
//
// Apply(等待) -> Shard Channel -> Run Loop -> 狀態機 -> Result Channel -> Apply(收到結果)
//
// 參數:
//
//	ctx: 上下文
//	tran: 交易請求物件
//
// 回傳:
//
//	error: 處理錯誤
func (l *ShardedLedger) Apply(ctx context.Context, tran *domain.Transaction) error {
	// 放入輸送帶 (使用 sync.Pool 減少 GC)
	req := l.requestPool.Get().(*applyRequest)
	req.Tran = tran
	// 清空 Channel (雖然理論上應該是空的，但保險起見)
	select {
	case <-req.Result:
	default:
	}

	s := l.shardFor(tran.Client)
	s.requests <- req
	err := <-req.Result
	l.requestPool.Put(req)
	return err
}

// AccountBalance 取得指定帳戶的當前狀態 (路由到所屬分片)
func (l *ShardedLedger) AccountBalance(ctx context.Context, client uint16) (domain.Account, error) {
	return l.shardFor(client).state.AccountBalance(ctx, client)
}

// Accounts 合併所有分片的帳戶快照 (順序不保證)
func (l *ShardedLedger) Accounts(ctx context.Context) ([]domain.Account, error) {
	var snapshots []domain.Account
	for _, s := range l.shards {
		part, err := s.state.Accounts(ctx)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, part...)
	}
	return snapshots, nil
}

var _ usecase.Ledger = (*ShardedLedger)(nil)
