package precompute

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/cache"
	"github.com/openrace/f1-replay-go/pkg/cmd/cmdutil"
	"github.com/openrace/f1-replay-go/pkg/config"
	"github.com/openrace/f1-replay-go/pkg/provider"
	"github.com/openrace/f1-replay-go/pkg/session"
)

func NewPrecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precompute <session-dump>",
		Short: "compute and cache the replay timeline for a session dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return precompute(cmd.Context(), args[0])
		},
	}
	return cmd
}

func precompute(parent context.Context, dumpFile string) error {
	logger := cmdutil.SetupLogger()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	prov, err := provider.NewDumpFileProvider(dumpFile)
	if err != nil {
		return err
	}

	gap, err := time.ParseDuration(config.GapThreshold)
	if err != nil {
		return err
	}

	loader := session.NewLoader(
		session.WithStore(cache.NewStore(cache.WithDir(config.CacheDir))),
		session.WithFPS(config.FPS),
		session.WithGapThreshold(gap),
		session.WithRefresh(config.Refresh),
		session.WithWorkers(config.Workers),
		session.WithLogger(logger.Named("session")),
	)

	start := time.Now()
	tl, err := loader.Load(ctx, prov)
	if err != nil {
		return err
	}
	log.Info("timeline ready",
		log.String("session", prov.SessionInfo().String()),
		log.Int("frames", tl.Len()),
		log.Int("drivers", len(tl.Drivers)),
		log.Int("totalLaps", tl.TotalLaps),
		log.Duration("took", time.Since(start)))
	return nil
}
