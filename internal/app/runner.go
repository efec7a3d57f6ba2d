package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/webapi/internal/config"
	"github.com/samvad-hq/webapi/internal/domain"
	"github.com/samvad-hq/webapi/internal/logger"
	"github.com/samvad-hq/webapi/internal/runner"
	"github.com/samvad-hq/webapi/internal/storage"
	"github.com/samvad-hq/webapi/pkg/publishers"
	"github.com/samvad-hq/webapi/pkg/requests"
)

// Runner is the plan execution runtime. It loads the request plan, wires the
// outcome store and publishers, and drives the runner service either once or
// on a fixed interval.
type Runner struct {
	cfg         *config.Config
	plan        *requests.Registry
	fanout      *publishers.Fanout
	service     *runner.Service
	runInterval time.Duration
	log         logger.Logger
	store       storage.Store
}

// NewRunner builds a runtime from config files.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	plan, err := requests.LoadRegistryFrom(ctx, nil, cfg.RequestsFile)
	if err != nil {
		return nil, fmt.Errorf("load requests plan: %w", err)
	}
	planList := plan.All()
	requestIDs := make([]string, 0, len(planList))
	for _, s := range planList {
		requestIDs = append(requestIDs, s.ID)
	}
	log.InfoObj("requests plan loaded", "requests_meta", map[string]any{
		"count": len(requestIDs),
		"ids":   requestIDs,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		OutcomeTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"outcome_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	defaults := requests.Defaults{
		Timeout:         cfg.RequestTimeout,
		VerifyTLS:       cfg.VerifyTLS,
		Debug:           cfg.Debug,
		PublicRoot:      cfg.PublicRoot,
		UserAgent:       cfg.UserAgent,
		BasicUserPrefix: cfg.BasicUserPrefix,
		Logger:          log,
	}

	return &Runner{
		cfg:         cfg,
		plan:        plan,
		fanout:      fanout,
		service:     runner.NewService(defaults, store, fanout, log),
		runInterval: cfg.RunInterval,
		log:         log,
		store:       store,
	}, nil
}

// buildFanout loads the optional publishers file. An empty path yields an
// empty fanout.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no publishers file configured; outcomes stay local", "publishers_meta", map[string]any{"count": 0})
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run executes the plan. With a zero interval it performs a single pass and
// returns its error; otherwise it repeats until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.close()

	specs := r.plan.Enabled()
	if len(specs) == 0 {
		r.log.WarnObj("no enabled requests; nothing to run", "requests_file", r.cfg.RequestsFile)
		return nil
	}

	if r.runInterval <= 0 {
		_, err := r.runOnce(ctx, specs)
		return err
	}

	r.log.InfoObj("runner loop starting", "runner_state", map[string]any{
		"requests_count":   len(specs),
		"publishers_count": r.fanout.Size(),
		"run_interval":     r.runInterval.String(),
	})

	if _, err := r.runOnce(ctx, specs); err != nil {
		r.log.ErrorObj("initial run failed", "error", err.Error())
	}

	ticker := time.NewTicker(r.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("runner loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := r.runOnce(ctx, specs); err != nil {
				r.log.ErrorObj("scheduled run failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs a single pass across the enabled specs.
func (r *Runner) runOnce(ctx context.Context, specs []requests.Spec) ([]domain.Outcome, error) {
	start := time.Now()
	r.log.InfoObj("run started", "run_meta", map[string]any{
		"requests_count": len(specs),
		"started_at":     start.UTC(),
	})
	outcomes, err := r.service.Run(ctx, specs)
	r.log.InfoObj("run completed", "run_meta", map[string]any{
		"requests_count": len(specs),
		"completed":      len(outcomes),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	})
	return outcomes, err
}

// close releases the store and publishers, logging any errors encountered.
func (r *Runner) close() {
	if r == nil {
		return
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err.Error())
	}
}
