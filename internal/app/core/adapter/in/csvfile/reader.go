package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
)

// Source 從 CSV 串流解碼交易 (Ingestion Adapter)
//
// 欄位對應由 header 決定，欄位值前後空白一律忽略；
// 無法解析的單筆紀錄回傳 domain.ErrMalformedRecord，由重放層跳過
type Source struct {
	reader *csv.Reader
	// header 欄位名稱 -> 欄位索引
	cols map[string]int
}

// NewSource 建立 CSV 交易來源並讀取 header
//
// 參數:
//
//	r: CSV 內容 (第一列必須是 header)
//
// 回傳:
//
//	*Source: 來源實例
//	error: header 缺漏或無法讀取 (整個來源不可用，屬致命錯誤)
func NewSource(r io.Reader) (*Source, error) {
	reader := csv.NewReader(r)
	// dispute/resolve/chargeback 紀錄常省略 amount 欄位，不強制欄位數一致
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"type", "client", "tx"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header missing required column %q", required)
		}
	}

	return &Source{
		reader: reader,
		cols:   cols,
	}, nil
}

// Next 讀取下一筆交易
//
// 回傳:
//
//	*domain.Transaction: 下一筆交易
//	error: io.EOF 代表來源結束；
//	       domain.ErrMalformedRecord 代表該筆無法解析 (可跳過)
func (s *Source) Next() (*domain.Transaction, error) {
	record, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
		}
		return nil, err
	}

	txType, err := domain.ParseTransactionType(s.field(record, "type"))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrMalformedRecord, s.field(record, "type"))
	}

	client, err := strconv.ParseUint(s.field(record, "client"), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: bad client %q", domain.ErrMalformedRecord, s.field(record, "client"))
	}

	txID, err := strconv.ParseUint(s.field(record, "tx"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad tx %q", domain.ErrMalformedRecord, s.field(record, "tx"))
	}

	tran := &domain.Transaction{
		Type:   txType,
		Client: uint16(client),
		TxID:   uint32(txID),
	}

	// amount 只有 Deposit/Withdrawal 需要，其餘類型即使帶值也忽略
	if tran.HasAmount() {
		raw := s.field(record, "amount")
		if raw == "" {
			return nil, fmt.Errorf("%w: missing amount for %s", domain.ErrMalformedRecord, txType)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q", domain.ErrMalformedRecord, raw)
		}
		tran.Amount = amount
	}

	return tran, nil
}

// field 取出指定欄位值並去除前後空白；欄位不存在時回傳空字串
func (s *Source) field(record []string, name string) string {
	idx, ok := s.cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

var _ usecase.TransactionSource = (*Source)(nil)
