package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookstore-ledger/pkg/logger"
)

// env 命令共享的依赖,按需懒加载
type env struct {
	configDir string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "图书账本运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&e.configDir, "config-dir", "", "配置文件目录(默认 ./config 和 .)")

	root.AddCommand(
		newMigrateCmd(e),
		newPublishCmd(e),
		newRestockCmd(e),
		newSetPriceCmd(e),
		newTokenCmd(e),
		newEventsCmd(e),
	)
	return root
}

func (e *env) load() error {
	var paths []string
	if e.configDir != "" {
		paths = append(paths, e.configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}
	l, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stderr", // stdout留给命令输出
	})
	if err != nil {
		return err
	}
	e.cfg, e.logger = cfg, l
	return nil
}

// openDB 打开数据库,返回的close必须调用
func (e *env) openDB() (*gorm.DB, func(), error) {
	db, err := sqlstore.NewDB(e.cfg, e.logger)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
