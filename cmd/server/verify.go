package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/equip-api/internal/config"
	"github.com/KirkDiggler/equip-api/internal/orchestrators/totals"
	"github.com/KirkDiggler/equip-api/internal/redis"
	equipmentset "github.com/KirkDiggler/equip-api/internal/repositories/equipment_set"
	"github.com/KirkDiggler/equip-api/internal/store"
)

var verifyDelete bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check every stored equipment set",
	Long: `Scan the equipment sets stored in Redis, load each one and recompute its totals.
Sets that cannot be decoded or loaded are reported and, with --delete, removed.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("redis-addr", "", "Redis address (defaults to redis.addr from config)")
	verifyCmd.Flags().BoolVar(&verifyDelete, "delete", false, "delete broken sets")
	rootCmd.AddCommand(verifyCmd)
}

// verifyReport lists what a scan found
type verifyReport struct {
	Checked int
	Broken  map[string]string
	Deleted []string
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	if err := v.BindPFlag(config.KeyRedisAddr, cmd.Flag("redis-addr")); err != nil {
		return err
	}
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("verify needs a redis address")
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

	client, err := redis.NewClient(cfg.Redis.Addr, &redis.Options{
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ctx := cmd.Context()
	if err := redis.Ping(ctx, client, 5*time.Second); err != nil {
		return err
	}

	report, err := verifySets(ctx, client, verifyDelete, logger)
	if err != nil {
		return err
	}

	return printReport(cmd.OutOrStdout(), report)
}

// verifySets scans every set document key. A document is broken when it does
// not decode, does not load into a store, or its totals cannot be computed.
func verifySets(ctx context.Context, client redis.Client, del bool, logger *slog.Logger) (*verifyReport, error) {
	report := &verifyReport{Broken: make(map[string]string)}

	iter := client.Scan(ctx, 0, equipmentset.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if key == equipmentset.IndexKey {
			continue
		}
		report.Checked++

		data, err := client.Get(ctx, key).Bytes()
		if err != nil {
			logger.Warn("failed to read set", "key", key, "error", err)
			continue
		}

		if reason := checkDocument(ctx, data, logger); reason != "" {
			report.Broken[key] = reason
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sets: %w", err)
	}

	if !del {
		return report, nil
	}
	for key := range report.Broken {
		id := strings.TrimPrefix(key, equipmentset.KeyPrefix)
		pipe := client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.SRem(ctx, equipmentset.IndexKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("failed to delete set", "key", key, "error", err)
			continue
		}
		report.Deleted = append(report.Deleted, key)
	}

	return report, nil
}

func checkDocument(ctx context.Context, data []byte, logger *slog.Logger) string {
	doc := &store.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return "corrupted JSON: " + err.Error()
	}

	mem, err := store.NewMemory(&store.MemoryConfig{Document: doc})
	if err != nil {
		return "invalid document: " + err.Error()
	}

	orch, err := totals.NewOrchestrator(&totals.Config{Store: mem, Logger: logger})
	if err != nil {
		return err.Error()
	}
	if _, err := orch.Recalculate(ctx, &totals.RecalculateInput{}); err != nil {
		return "totals failed: " + err.Error()
	}

	return ""
}

func printReport(w io.Writer, report *verifyReport) error {
	if _, err := fmt.Fprintf(w, "checked %d sets, %d broken\n", report.Checked, len(report.Broken)); err != nil {
		return err
	}
	for key, reason := range report.Broken {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", key, reason); err != nil {
			return err
		}
	}
	for _, key := range report.Deleted {
		if _, err := fmt.Fprintf(w, "deleted %s\n", key); err != nil {
			return err
		}
	}
	return nil
}
