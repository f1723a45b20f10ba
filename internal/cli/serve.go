package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/boundary-layer-viewer/internal/adapter/chart"
	httpadapter "github.com/couchcryptid/boundary-layer-viewer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/boundary-layer-viewer/internal/adapter/kafka"
	"github.com/couchcryptid/boundary-layer-viewer/internal/observability"
	"github.com/couchcryptid/boundary-layer-viewer/internal/pipeline"
	"github.com/couchcryptid/boundary-layer-viewer/internal/session"
)

const (
	minSweepInterval = time.Second
	maxSweepInterval = time.Minute
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion pipeline and serve the web viewer",
		Long: `Serve loads the sample table, then serves the station scrubber page, its
JSON API, the chart endpoint, and /healthz, /readyz and /metrics until
interrupted. POST /api/reload re-runs ingestion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), observability.NewMetrics())
		},
	}
}

func (a *app) serve(ctx context.Context, metrics *observability.Metrics) error {
	cfg, logger := a.cfg, a.logger

	var opts []pipeline.Option
	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("profile publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaProfileTopic)
	} else {
		logger.Info("profile publishing disabled")
	}

	p := a.newPipeline(metrics, opts...)
	sessions := session.NewStore(cfg.SessionTTL)
	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Profile:    p,
		Sessions:   sessions,
		Charts:     chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight, cfg.ChartCacheSize, metrics, logger),
		Metrics:    metrics,
		FreeStream: cfg.FreeStreamVelocity,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.Run(gctx)
	})
	g.Go(func() error {
		sessions.RunSweeper(gctx, sweepInterval(cfg.SessionTTL), func(live int) {
			metrics.ActiveSessions.Set(float64(live))
		})
		return nil
	})
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if writer != nil {
		if cerr := writer.Close(); cerr != nil {
			logger.Error("kafka writer close error", "error", cerr)
		}
	}
	logger.Info("shutdown complete")
	return err
}

// sweepInterval runs the sweeper at half the TTL, at least once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(min(ttl/2, maxSweepInterval), minSweepInterval)
}
