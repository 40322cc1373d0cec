package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/chase3718/lou-dome/internal/animation"
	"github.com/chase3718/lou-dome/internal/binding"
	"github.com/chase3718/lou-dome/internal/config"
	"github.com/chase3718/lou-dome/internal/frame"
	"github.com/chase3718/lou-dome/internal/midi"
	"github.com/chase3718/lou-dome/internal/sink"
)

var (
	flagSerial  string
	flagBaud    int
	flagPreview string
	flagNoMIDI  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the show",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		if flagSerial != "" {
			p.Output.Serial = &config.Serial{Device: flagSerial, Baud: flagBaud}
		}
		if cmd.Flags().Changed("preview") {
			p.Output.Preview = flagPreview
		}
		return runShow(cmd.Context(), p)
	},
}

func init() {
	runCmd.Flags().StringVar(&flagSerial, "serial", "", "serial device of an LED strip controller")
	runCmd.Flags().IntVar(&flagBaud, "baud", sink.DefaultBaud, "serial baud rate")
	runCmd.Flags().StringVar(&flagPreview, "preview", "", "websocket preview listen address, empty to disable")
	runCmd.Flags().BoolVar(&flagNoMIDI, "no-midi", false, "run without MIDI input")
}

func runShow(parent context.Context, p *config.Profile) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := p.NewShow()
	if err != nil {
		return err
	}
	dome, lookup, err := p.BuildLayout()
	if err != nil {
		return err
	}

	dispatcher := binding.NewDispatcher(logger)
	if err := dispatcher.Attach(cfg, p.BindingConfigs()); err != nil {
		return fmt.Errorf("bindings: %w", err)
	}

	var pubs sink.Fanout
	var cleanup []func() error
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			if err := cleanup[i](); err != nil {
				logger.Warn("run: cleanup failed", "err", err)
			}
		}
	}()

	if s := p.Output.Serial; s != nil {
		strip, err := sink.OpenSerial(s.Device, s.Baud, logger)
		if err != nil {
			return err
		}
		pubs = append(pubs, strip)
		cleanup = append(cleanup, strip.Close)
	}
	if len(p.Output.ArtNet) > 0 {
		an, err := sink.DialArtNet(p.Output.ArtNet, logger)
		if err != nil {
			return err
		}
		pubs = append(pubs, an)
		cleanup = append(cleanup, an.Close)
	}
	var server *http.Server
	if p.Output.Preview != "" {
		preview, err := sink.NewPreview(dome.Positions(lookup), logger)
		if err != nil {
			return err
		}
		pubs = append(pubs, preview)
		cleanup = append(cleanup, preview.Close)
		mux := http.NewServeMux()
		mux.Handle("/ws", preview)
		server = &http.Server{Addr: p.Output.Preview, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	queue := frame.NewQueue()
	consumer, err := frame.NewConsumer(queue, dome.Units(), pubs, logger)
	if err != nil {
		return err
	}
	engine := animation.NewEngine(cfg, queue, dome.Units(), logger)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return consumer.Run(ctx, p.Animation.Poll) })
	g.Go(func() error { return engine.Run(ctx, p.Animation.Tick) })

	if flagNoMIDI {
		logger.Info("midi: input disabled")
	} else {
		drv, err := rtmididrv.New()
		if err != nil {
			logger.Warn("midi: driver unavailable, running without input", "err", err)
		} else {
			cleanup = append(cleanup, func() error { drv.Close(); return nil })
			watcher := midi.NewWatcher(drv, p.MIDIOptions(),
				func(ev binding.Event) { _ = dispatcher.Dispatch(ev) },
				func() { logger.Warn("midi: input lost, show keeps its last settings") },
				logger)
			g.Go(func() error { return watcher.Run(ctx) })
		}
	}

	if server != nil {
		g.Go(func() error {
			logger.Info("preview: listening", "addr", server.Addr)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("preview: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	logger.Info("run: show started", "units", dome.Units(), "bindings", dispatcher.Len(), "outputs", len(pubs))
	err = g.Wait()
	stats := consumer.Stats()
	logger.Info("run: show stopped", "frames", stats.Frames, "commands", stats.Commands, "dropped", stats.Dropped, "publish_errors", stats.PublishErrors)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
