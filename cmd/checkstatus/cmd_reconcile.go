package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	appreconcile "github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/application/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/cache"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/config"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/ordersystem"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/tracesystem"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/interfaces/http/dto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var (
	reconcileMode         string
	reconcileFile         string
	reconcileOutput       string
	reconcileForceRefresh bool
)

// reconcileCmd runs one batch
var reconcileCmd = &cobra.Command{
	Use:   "reconcile [identifier...]",
	Short: "Reconcile a batch of identifiers",
	Long: `Reconcile a batch of tracking or pickup numbers.

Identifiers come from the arguments, or from --file, or from stdin when
neither is given. Lines may hold several identifiers separated by commas or
spaces. Batches above the configured maximum are truncated.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileMode, "mode", "m", string(reconcile.ModeTracking), "Identifier kind: tracking or pickup")
	reconcileCmd.Flags().StringVarP(&reconcileFile, "file", "f", "", "Read identifiers from a file")
	reconcileCmd.Flags().StringVarP(&reconcileOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	reconcileCmd.Flags().BoolVar(&reconcileForceRefresh, "force-refresh", false, "Log in to Order-System again before the batch")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	mode, err := reconcile.ParseMode(reconcileMode)
	if err != nil {
		return err
	}
	if !isOutputFormat(reconcileOutput) {
		return fmt.Errorf("unknown output format %q", reconcileOutput)
	}

	raw, err := collectIdentifiers(args, reconcileFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine, tokens, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = tokens.Close() }()

	ids, truncated := dto.NormalizeIdentifiers(raw, engine.MaxBatch())
	if len(ids) == 0 {
		return fmt.Errorf("no identifiers given")
	}
	if truncated > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "batch truncated to %d identifiers (%d dropped)\n", len(ids), truncated)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var opts []appreconcile.ReconcileOption
	if reconcileForceRefresh {
		opts = append(opts, appreconcile.WithForceRefresh())
	}
	results, err := engine.Reconcile(ctx, mode, ids, opts...)
	if err != nil {
		return err
	}

	return renderResults(cmd.OutOrStdout(), reconcileOutput, dto.ToResultViews(results))
}

// newEngine wires the backends from configuration. The token cache follows
// token_cache.driver so a redis cache lets successive runs share a login.
func newEngine(cfg *config.Config, log *zap.Logger) (*appreconcile.Engine, reconcile.TokenStore, error) {
	tokens, err := cache.NewTokenStoreFactory(
		cfg.TokenCache.Driver,
		cache.RedisConfig{Addr: cfg.Redis.RedisAddr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token store: %w", err)
	}

	orders := ordersystem.NewClient(ordersystem.Config{
		BaseURL:   cfg.OrderSystem.BaseURL,
		Account:   cfg.OrderSystem.Account,
		Password:  cfg.OrderSystem.Password,
		ClientID:  cfg.OrderSystem.ClientID,
		CompanyID: cfg.OrderSystem.CompanyID,
		Timeout:   cfg.OrderSystem.Timeout,
	})
	traces := tracesystem.NewClient(tracesystem.Config{
		BaseURL:  cfg.TraceSystem.BaseURL,
		Username: cfg.TraceSystem.Username,
		Password: cfg.TraceSystem.Password,
		GroupID:  cfg.TraceSystem.GroupID,
		Timeout:  cfg.TraceSystem.Timeout,
	})

	engine := appreconcile.NewEngine(orders, traces, tokens, appreconcile.EngineConfig{
		Concurrency:     cfg.Reconcile.Concurrency,
		MaxBatch:        cfg.Reconcile.MaxBatch,
		RefreshPerBatch: cfg.OrderSystem.RefreshPerBatch,
		BatchTimeout:    cfg.Reconcile.BatchTimeout,
	}, appreconcile.WithSessionOptions(
		appreconcile.WithTokenKey(cfg.TokenCache.Key),
		appreconcile.WithTokenTTL(cfg.TokenCache.TTL),
	))
	return engine, tokens, nil
}

// collectIdentifiers reads identifiers from args, else path, else stdin
func collectIdentifiers(args []string, path string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return splitIdentifiers(args), nil
	}

	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	return splitIdentifiers(lines), nil
}

func splitIdentifiers(chunks []string) []string {
	var ids []string
	for _, chunk := range chunks {
		ids = append(ids, strings.FieldsFunc(chunk, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})...)
	}
	return ids
}

func isOutputFormat(format string) bool {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return true
	}
	return false
}

func renderResults(w io.Writer, format string, views []dto.ResultView) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, views)
	}
}

func renderTable(w io.Writer, views []dto.ResultView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tDO\tORDER\tORDER STATUS\tLOCATION\tTRACE\tTRACE STATUS")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Identifier,
			dash(v.OrderRef),
			orderState(v.Order),
			dash(joinStatus(v.Order.Status, v.Order.SubStatus)),
			dash(v.Order.Location),
			traceState(v.Trace),
			dash(joinStatus(v.Trace.Status, v.Trace.SubStatus)),
		)
	}
	return tw.Flush()
}

func orderState(o dto.OrderView) string {
	switch {
	case !o.Found:
		return "not found"
	case o.NetworkError:
		return "network error"
	case o.GeneralError:
		return "error"
	case o.Partial:
		return "partial"
	default:
		return "ok"
	}
}

func traceState(t dto.TraceView) string {
	switch {
	case !t.Attempted:
		return "skipped"
	case t.NotFound:
		return "not found"
	default:
		return "ok"
	}
}

func joinStatus(status, sub string) string {
	if sub == "" {
		return status
	}
	if status == "" {
		return sub
	}
	return status + " / " + sub
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
