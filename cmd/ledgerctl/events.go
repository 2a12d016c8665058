package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apporder "github.com/xiebiao/bookstore-ledger/internal/application/order"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-ledger/pkg/mq"
)

// newEventsCmd 订阅订单事件并逐行打印,用于联调时确认事件确实发出
func newEventsCmd(e *env) *cobra.Command {
	var queue string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "打印订单事件(order.created / order.cancelled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !e.cfg.MQ.Enabled {
				return fmt.Errorf("配置中未启用mq")
			}
			consumer, err := mq.NewConsumer(e.cfg.MQ.URL, e.cfg.MQ.Exchange, messaging.ExchangeType, queue,
				[]string{apporder.RoutingKeyOrderCreated, apporder.RoutingKeyOrderCancelled}, e.logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			e.logger.Info("开始消费订单事件", zap.String("exchange", e.cfg.MQ.Exchange), zap.String("queue", queue))
			return consumer.Consume(ctx, func(routingKey string, body []byte) error {
				_, err := fmt.Fprintf(out, "%s\t%s\n", routingKey, body)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&queue, "queue", "", "队列名,为空时由RabbitMQ生成")
	return cmd
}
