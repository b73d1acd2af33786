package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// Write 將帳戶快照序列化成 CSV 報表 (Reporting Adapter)
//
// 欄位順序固定: client, available, held, total, locked
//
// 參數:
//
//	w: 輸出目標 (通常是 stdout)
//	accounts: 帳戶快照
//	sorted: 是否依 client ID 排序輸出
//	        (引擎的迭代順序不保證，下游需要穩定輸出時開啟)
//
// 回傳:
//
//	error: 寫入錯誤
func Write(w io.Writer, accounts []domain.Account, sorted bool) error {
	if sorted {
		sort.Slice(accounts, func(i, j int) bool {
			return accounts[i].Client < accounts[j].Client
		})
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}

	for _, account := range accounts {
		row := []string{
			strconv.FormatUint(uint64(account.Client), 10),
			account.Available.String(),
			account.Held.String(),
			account.Total.String(),
			strconv.FormatBool(account.Locked),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
