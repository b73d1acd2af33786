package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/in/csvfile"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/adapter/out/report"
	"github.com/JoeShih716/go-payments-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-payments-engine/pkg/journal"
	"github.com/JoeShih716/go-payments-engine/pkg/logger"
)

const defaultConfigPath = "config/config.yaml"

// JournalConfig 拒絕紀錄落地設定
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Config struct {
	// Engine 設定使用哪種引擎: "mutex" 或 "sharded"
	Engine string `yaml:"engine"`
	// Shards 分片數量 (只對 sharded 引擎有效)
	Shards int `yaml:"shards"`
	// SortedOutput 報表是否依 client ID 排序
	SortedOutput bool `yaml:"sorted_output"`
	// Verbose 逐筆輸出被拒絕的交易
	Verbose bool          `yaml:"verbose"`
	Journal JournalConfig `yaml:"journal"`
}

var rootCmd = &cobra.Command{
	Use:   "engine <input_file>",
	Short: "Replay a transaction stream and print the resulting account balances",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// 1. 載入設定 (config.yaml 可有可無，沒有就全用預設值)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Verbose)
	defer log.Sync()

	// 2. 開啟輸入檔並建立 CSV 來源
	input, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer input.Close()

	src, err := csvfile.NewSource(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 依設定初始化引擎
	var ledger usecase.Ledger
	switch cfg.Engine {
	case "sharded":
		sharded := memory.NewShardedLedger(cfg.Shards)
		sharded.Start(ctx)
		ledger = sharded
	case "mutex":
		ledger = memory.NewMutexLedger()
	default:
		return fmt.Errorf("invalid engine type: %q", cfg.Engine)
	}

	opts := []usecase.CoreOption{usecase.WithVerbose(cfg.Verbose)}
	if cfg.Journal.Enabled {
		rejects, err := journal.NewJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer rejects.Close()
		opts = append(opts, usecase.WithJournal(rejects))
	}

	// 4. 初始化 UseCase 並重放整個來源
	core := usecase.NewCoreUseCase(ledger, log, opts...)
	if _, err := core.Replay(ctx, src); err != nil {
		return err
	}

	// 5. 輸出報表到 stdout (log 都走 stderr，不會混在一起)
	accounts, err := core.Accounts(ctx)
	if err != nil {
		return err
	}
	return report.Write(os.Stdout, accounts, cfg.SortedOutput)
}

func loadConfig() (Config, error) {
	cfg := Config{
		Engine: "mutex",
		Shards: 4,
		Journal: JournalConfig{
			Path: "rejects.log",
		},
	}

	cfgData, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	// 補全預設配置 (如果 yaml 沒寫)
	if cfg.Engine == "" {
		cfg.Engine = "mutex"
	}
	if cfg.Shards == 0 {
		cfg.Shards = 4
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "rejects.log"
	}
	return cfg, nil
}
