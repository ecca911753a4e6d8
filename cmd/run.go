package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mapleads-cli/internal/export"
	"github.com/sells-group/mapleads-cli/internal/model"
	"github.com/sells-group/mapleads-cli/internal/pipeline"
	"github.com/sells-group/mapleads-cli/internal/resilience"
	"github.com/sells-group/mapleads-cli/internal/scrape"
	"github.com/sells-group/mapleads-cli/internal/sink"
	"github.com/sells-group/mapleads-cli/internal/store"
	"github.com/sells-group/mapleads-cli/pkg/googlemaps"
)

// searchRunner is the part of the pipeline the run command drives.
type searchRunner interface {
	Run(ctx context.Context, req model.SearchRequest) ([]model.PlaceRecord, error)
}

// newSearchPipeline builds the production pipeline from the loaded
// configuration. Package-level so tests can substitute a stub.
var newSearchPipeline = func() searchRunner {
	limiter := resilience.NewWindowLimiter(
		cfg.RateLimit.MaxCalls,
		time.Duration(cfg.RateLimit.PeriodSecs)*time.Second,
	)
	mapsClient := googlemaps.NewClient(cfg.Google.APIKey, googlemaps.WithLimiter(limiter))
	return pipeline.New(mapsClient, scrape.NewEmailScraper())
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the search, enrichment, and export pipeline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if errs := cfg.Validate(); len(errs) > 0 {
			for _, err := range errs {
				zap.L().Error("configuration error", zap.Error(err))
			}
			return eris.Errorf("configuration invalid: %d problem(s), see log", len(errs))
		}

		zap.L().Info("configuration loaded", cfg.LogFields()...)

		p := newSearchPipeline()

		st := openRunStore(ctx)
		if st != nil {
			defer st.Close() //nolint:errcheck
		}

		req := model.SearchRequest{
			Location:     cfg.Search.Location,
			Query:        cfg.Search.Query,
			NumResults:   cfg.Search.NumResults,
			RadiusMeters: cfg.Search.RadiusMeters,
		}
		run := recordRunStart(ctx, st, req)

		records, err := p.Run(ctx, req)
		if err != nil {
			recordRunEnd(ctx, st, run, model.RunStatusFailed, 0, err.Error())
			return eris.Wrap(err, "pipeline run")
		}

		if len(records) == 0 {
			recordRunEnd(ctx, st, run, model.RunStatusFailed, 0, "no records collected")
			return eris.New("no records collected, check the logs for provider errors")
		}

		formats := export.Formats{
			CSV:  cfg.Output.CSV,
			JSON: cfg.Output.JSON,
			XLSX: cfg.Output.XLSX,
		}
		if failed := export.WriteAll(records, cfg.Output.FileStem, formats); failed > 0 {
			zap.L().Warn("some output formats failed", zap.Int("failed", failed))
		}

		if cfg.Supabase.Enabled {
			syncRecords(ctx, records)
		}

		recordRunEnd(ctx, st, run, model.RunStatusComplete, len(records), "")
		zap.L().Info("run complete", zap.Int("records", len(records)))
		return nil
	},
}

// syncRecords pushes records to Supabase. An incomplete sync configuration
// skips the step with a logged error; file outputs have already happened.
func syncRecords(ctx context.Context, records []model.PlaceRecord) {
	if missing := cfg.SupabaseMissing(); len(missing) > 0 {
		zap.L().Error("supabase sync enabled but not fully configured, skipping sync",
			zap.Strings("missing", missing),
		)
		return
	}

	var s sink.RecordSink
	if cfg.Supabase.DBURL != "" {
		pgSink, err := sink.NewPostgres(ctx, cfg.Supabase.DBURL, cfg.Supabase.Table)
		if err != nil {
			zap.L().Error("supabase direct connection failed, skipping sync", zap.Error(err))
			return
		}
		defer pgSink.Close()
		s = pgSink
	} else {
		s = sink.NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Table)
	}

	sink.SyncAll(ctx, s, records)
}

// openRunStore opens the local run-history database. Returns nil when the
// store is unavailable; run history is never worth failing a collection over.
func openRunStore(ctx context.Context) store.Store {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		zap.L().Warn("run store unavailable", zap.Error(err))
		return nil
	}
	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run store migration failed", zap.Error(err))
		_ = st.Close()
		return nil
	}
	return st
}

func recordRunStart(ctx context.Context, st store.Store, req model.SearchRequest) *model.Run {
	if st == nil {
		return nil
	}
	run, err := st.CreateRun(ctx, req)
	if err != nil {
		zap.L().Warn("failed to record run start", zap.Error(err))
		return nil
	}
	return run
}

func recordRunEnd(ctx context.Context, st store.Store, run *model.Run, status model.RunStatus, count int, runErr string) {
	if st == nil || run == nil {
		return
	}
	if err := st.CompleteRun(ctx, run.ID, status, count, runErr); err != nil {
		zap.L().Warn("failed to record run end", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
