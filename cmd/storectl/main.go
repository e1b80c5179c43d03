package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/ariefcatur/go-storefront/internal/app"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/logger"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	// CLI talks to a shared backend; events are only published by the server
	cfg.EventsSink = "none"

	log := logger.Must(logger.Config{IsDevelopment: true, Encoding: "console", Level: cfg.LogLevel})
	defer log.Sync()

	if err := newRootCmd(cfg, log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "storectl",
		Short:        "Dev tooling for the storefront storage area",
		SilenceUsage: true,
	}

	// open is deferred to RunE so --help works without a backend
	withApp := func(fn func(ctx context.Context, a *app.App, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := app.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(ctx, a, cmd)
		}
	}

	stock := &cobra.Command{Use: "stock", Short: "Inspect or reset the stock ledger"}
	stock.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print remaining stock per product and size",
			RunE: withApp(func(ctx context.Context, a *app.App, cmd *cobra.Command) error {
				ledger, err := a.Stock.Snapshot(ctx)
				if err != nil {
					return err
				}
				ids := make([]string, 0, len(ledger))
				for id := range ledger {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PRODUCT\tXS\tS\tM\tL")
				for _, id := range ids {
					fmt.Fprintf(tw, "%s", id)
					for _, s := range catalog.Sizes {
						fmt.Fprintf(tw, "\t%d", ledger.Available(id, s))
					}
					fmt.Fprintln(tw)
				}
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore catalog default stock",
			RunE: withApp(func(ctx context.Context, a *app.App, cmd *cobra.Command) error {
				if err := a.Stock.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "stock reset to catalog defaults")
				return nil
			}),
		},
	)

	var group string
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Tail order-committed events from kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderCommitted, 1, log.Named("kafka"))
			out := json.NewEncoder(cmd.OutOrStdout())
			return cons.Start(ctx, func(_ context.Context, m kafkago.Message) error {
				var ev orders.Envelope
				if err := json.Unmarshal(m.Value, &ev); err != nil {
					log.Warn("skip malformed event", zap.Error(err))
					return nil
				}
				if kafkax.HeaderValue(m.Headers, "x-event-type") != orders.EventOrderCommitted {
					return nil
				}
				p, err := kafkax.UnwrapPayload[orders.OrderCommittedPayload](ev.Payload)
				if err != nil {
					log.Warn("skip payload", zap.Error(err))
					return nil
				}
				return out.Encode(p)
			})
		},
	}
	watch.Flags().StringVar(&group, "group", "storectl-watch", "kafka consumer group")

	ordersCmd := &cobra.Command{Use: "orders", Short: "Inspect recorded orders"}
	ordersCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the order ledger, most recent first",
			RunE: withApp(func(ctx context.Context, a *app.App, cmd *cobra.Command) error {
				list, err := a.Orders.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NUMBER\tID\tITEMS\tTOTAL\tCREATED")
				for _, o := range list {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
						o.Number, o.ID, o.Items.TotalItems(), o.Total.StringFixed(2), o.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return tw.Flush()
			}),
		},
		watch,
	)

	clearAll := &cobra.Command{
		Use:   "clear-all",
		Short: "Wipe cart, stock ledger and orders",
		RunE: withApp(func(ctx context.Context, a *app.App, cmd *cobra.Command) error {
			if err := a.ClearAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cart, stock and orders cleared")
			return nil
		}),
	}

	root.AddCommand(stock, ordersCmd, clearAll)
	return root
}
