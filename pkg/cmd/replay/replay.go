// Package replay drives a headless console replay of one session: the
// loop advances the playback controller at wall-clock rate and prints
// the derived standings. It stands in for an interactive renderer and
// exercises the full outbound interface of the engine.
package replay

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/openrace/f1-replay-go/log"
	"github.com/openrace/f1-replay-go/pkg/cache"
	"github.com/openrace/f1-replay-go/pkg/cmd/cmdutil"
	"github.com/openrace/f1-replay-go/pkg/config"
	"github.com/openrace/f1-replay-go/pkg/model"
	"github.com/openrace/f1-replay-go/pkg/playback"
	"github.com/openrace/f1-replay-go/pkg/processing/rank"
	"github.com/openrace/f1-replay-go/pkg/provider"
	"github.com/openrace/f1-replay-go/pkg/session"
)

var printInterval string

func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <session-dump>",
		Short: "replay a session on the console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replaySession(cmd.Context(), args[0])
		},
	}
	cmd.Flags().Float64Var(&config.Speed, "speed", 1.0,
		"playback speed multiplier")
	cmd.Flags().StringVar(&printInterval, "print-interval", "1s",
		"how often standings are printed")
	return cmd
}

//nolint:funlen // command wiring
func replaySession(parent context.Context, dumpFile string) error {
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
	interval, err := time.ParseDuration(printInterval)
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
	tl, err := loader.Load(ctx, prov)
	if err != nil {
		return err
	}

	ranker := rank.NewRanker(rank.WithStallWindow(config.StallWindow))
	ctrl := playback.NewController(tl,
		playback.WithSpeed(config.Speed),
		playback.WithAutoPlay())

	log.Info("starting replay",
		log.String("session", prov.SessionInfo().String()),
		log.Float64("speed", ctrl.Speed()),
		log.Int("frames", tl.Len()))

	ticker := time.NewTicker(time.Second / time.Duration(tl.FPS))
	defer ticker.Stop()

	last := time.Now()
	nextPrint := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			tick := ctrl.Advance(now.Sub(last))
			last = now
			if now.After(nextPrint) {
				printStandings(tl, ranker.Standings(tl, tick), tick)
				nextPrint = now.Add(interval)
			}
			if !ctrl.Playing() && ctrl.AtEnd() {
				printStandings(tl, ranker.Standings(tl, tick), tick)
				log.Info("replay finished")
				return nil
			}
		}
	}
}

func printStandings(tl *model.Timeline, standings []model.Standing, tick int) {
	sec := tl.Frames[tick].T
	header := fmt.Sprintf("t=%s", formatRaceTime(sec))
	if status := tl.StatusAt(sec); status != "" && status != model.StatusClear {
		header += " [" + statusLabel(status) + "]"
	}
	fmt.Println(header)
	for _, s := range standings {
		flag := ""
		if s.Out {
			flag = "  OUT"
		}
		fmt.Printf("%3d. %-4s lap %2d  %s%s\n",
			s.Position, s.Driver, s.Lap, rank.FormatGap(s.Gap), flag)
	}
}

func formatRaceTime(sec float64) string {
	d := time.Duration(sec * float64(time.Second))
	return fmt.Sprintf("%02d:%02d:%02d",
		int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

func statusLabel(status string) string {
	switch status {
	case model.StatusYellow:
		return "YELLOW FLAG"
	case model.StatusSafetyCar:
		return "SAFETY CAR"
	case model.StatusRed:
		return "RED FLAG"
	case model.StatusVirtualSC:
		return "VIRTUAL SAFETY CAR"
	default:
		return status
	}
}
