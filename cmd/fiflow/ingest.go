package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	mdusecase "fiflow_backend/internal/feature/marketdata/usecase"

	"github.com/spf13/cobra"
)

var ingestFile string

var ingestCMD = &cobra.Command{
	Use:   "ingest",
	Short: "Reconcile crawler output from a JSON file",
	Long: `Read a JSON array of crawler payloads (symbol, date, price, change,
changeRate, stockName, foreignerNetBuy[], foreignerNetBuyDate[]) and reconcile
each one into the snapshot store. Numeric fields may be strings or numbers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", ingestFile, err)
		}
		defer f.Close()

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if err := requireSharedStore(a.cfg); err != nil {
			return err
		}

		return ingest(cmd.Context(), f, a.container.Reconciler)
	},
}

func init() {
	ingestCMD.Flags().StringVarP(&ingestFile, "file", "f", "", "path to the JSON file")
	_ = ingestCMD.MarkFlagRequired("file")
}

type snapshotReconciler interface {
	Reconcile(ctx context.Context, in mdusecase.IncomingSnapshot) (mdusecase.ReconcileResult, error)
}

// ingest は1件の失敗で止めず、最後に失敗件数をエラーとして返します。
func ingest(ctx context.Context, r io.Reader, rec snapshotReconciler) error {
	var payloads []mdusecase.SnapshotPayload
	if err := json.NewDecoder(r).Decode(&payloads); err != nil {
		return fmt.Errorf("failed to decode payloads: %w", err)
	}

	failed := 0
	for i, p := range payloads {
		in, err := p.Normalize()
		if err != nil {
			slog.Error("invalid payload", "index", i, "symbol", p.Symbol, "error", err)
			failed++
			continue
		}
		res, err := rec.Reconcile(ctx, in)
		if err != nil {
			slog.Error("failed to reconcile", "index", i, "symbol", in.Symbol, "date", in.Date, "error", err)
			failed++
			continue
		}
		slog.Info("reconciled", "symbol", in.Symbol, "date", in.Date, "outcome", res.Outcome.String())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d payloads failed", failed, len(payloads))
	}
	slog.Info("ingest ok", "count", len(payloads))
	return nil
}
