package journal

import (
	"encoding/json"
	"io/fs"
	"os"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀) - 適用於大多數檔案
	FileModeReadOnly fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫) - 適用於私鑰、機密檔
	FileModePrivate fs.FileMode = 0600
)

// Journal 是 append-only 的 JSON-lines 紀錄檔
// 用來落地重放過程中被拒絕的交易，方便事後稽核
type Journal struct {
	file *os.File
	mu   sync.Mutex
}

// NewJournal 開啟或建立一個 Journal 檔案
// O_RDWR讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewJournal(path string) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeReadOnly)
	if err != nil {
		return nil, err
	}
	return &Journal{file: file,
		mu: sync.Mutex{},
	}, nil
}

// Write 寫入一筆資料並刷入硬碟
func (j *Journal) Write(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := json.NewEncoder(j.file).Encode(v); err != nil {
		return err
	}
	return j.file.Sync()
}

// Sync 強制刷入硬碟
func (j *Journal) Sync() error {
	return j.file.Sync()
}

// Close 關閉檔案
func (j *Journal) Close() error {
	return j.file.Close()
}

// ReadAll 讀取所有資料
// callback 是一個函式，接收一個 json.RawMessage
// 這樣可以避免一次將所有資料載入記憶體
func (j *Journal) ReadAll(callback func(jsonRaw []byte) error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	// 確保從頭讀取
	if _, err := j.file.Seek(0, 0); err != nil {
		return err
	}

	decoder := json.NewDecoder(j.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if err.Error() == "EOF" { // io.EOF check
				break
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
	return nil
}
