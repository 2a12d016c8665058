package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/sqlstore"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建/更新表结构",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := sqlstore.AutoMigrate(db); err != nil {
				return fmt.Errorf("迁移失败: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "迁移完成")
			return nil
		},
	}
}

func newPublishCmd(e *env) *cobra.Command {
	var (
		title     string
		year      int
		unitPrice string
		stock     int
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "publish <isbn>",
		Short: "上架图书(图书 + 首条价格 + 库存)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(unitPrice)
			if err != nil {
				return fmt.Errorf("价格格式错误: %w", err)
			}

			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			books := sqlstore.NewBookRepository(db)
			invRepo := sqlstore.NewInventoryRepository(db)
			tx := sqlstore.NewTxManager(db)
			ledger := price.NewLedger(sqlstore.NewPriceRepository(db), books, tx, e.logger)
			uc := catalog.NewPublishBookUseCase(books, ledger, invRepo, tx, catalog.NopSnapshotCache{}, e.logger)

			snapshot, err := uc.Execute(cmd.Context(), catalog.PublishBookRequest{
				ISBN:             args[0],
				Title:            title,
				PublicationYear:  year,
				UnitPrice:        p,
				InitialStock:     stock,
				ReorderThreshold: threshold,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, snapshot)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "书名")
	cmd.Flags().IntVar(&year, "year", 0, "出版年份")
	cmd.Flags().StringVar(&unitPrice, "price", "", "单价,如 29.99")
	cmd.Flags().IntVar(&stock, "stock", 0, "初始库存")
	cmd.Flags().IntVar(&threshold, "reorder-threshold", 0, "补货阈值")
	for _, name := range []string{"title", "year", "price"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newRestockCmd(e *env) *cobra.Command {
	var (
		added int
		ref   string
	)
	cmd := &cobra.Command{
		Use:   "restock <isbn>",
		Short: "补货",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ledger := inventory.NewLedger(sqlstore.NewInventoryRepository(db), sqlstore.NewTxManager(db), e.logger)
			// 命令行不连Redis,快照靠TTL自然过期
			uc := catalog.NewRestockUseCase(ledger, catalog.NopSnapshotCache{}, e.logger)

			inv, err := uc.Execute(cmd.Context(), catalog.RestockRequest{ISBN: args[0], Added: added, Reference: ref})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"isbn":      inv.ISBN,
				"quantity":  inv.Quantity,
				"reserved":  inv.QuantityReserved,
				"available": inv.Available(),
			})
		},
	}
	cmd.Flags().IntVar(&added, "added", 0, "补货数量")
	cmd.Flags().StringVar(&ref, "ref", "ledgerctl", "入库单号,写入库存日志")
	_ = cmd.MarkFlagRequired("added")
	return cmd
}

func newSetPriceCmd(e *env) *cobra.Command {
	var effective string
	cmd := &cobra.Command{
		Use:   "set-price <isbn> <unit-price>",
		Short: "调价(关闭当前价格记录并追加新记录)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("价格格式错误: %w", err)
			}
			var effectiveAt time.Time
			if effective != "" {
				if effectiveAt, err = time.Parse(time.RFC3339, effective); err != nil {
					return fmt.Errorf("生效时间格式错误(RFC3339): %w", err)
				}
			}

			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ledger := price.NewLedger(sqlstore.NewPriceRepository(db), sqlstore.NewBookRepository(db), sqlstore.NewTxManager(db), e.logger)
			uc := catalog.NewSetPriceUseCase(ledger, catalog.NopSnapshotCache{}, e.logger)

			record, err := uc.Execute(cmd.Context(), catalog.SetPriceRequest{
				ISBN:        args[0],
				UnitPrice:   unitPrice,
				EffectiveAt: effectiveAt,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"price_id":   record.ID,
				"isbn":       record.ISBN,
				"unit_price": record.UnitPrice.StringFixed(2),
				"valid_from": record.ValidFrom.UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&effective, "effective-at", "", "生效时间(RFC3339),默认立即生效")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
