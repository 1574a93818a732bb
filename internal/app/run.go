package app

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// Run starts the pool and every background component and blocks until ctx
// is done, the chat session ends, or a component fails. On the way out the
// pool is stopped: queued inputs are discarded and in-flight presses finish.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.pool.Start(); err != nil {
		_ = app.Close()
		return NewComponentError("dispatch", "start", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	app.logger.Info("starting bot",
		"channel", app.cfg.Twitch.ChannelToJoin,
		"commands", app.processor.Table().Len(),
		"input_threads", app.cfg.Bot.InputThreads)

	g.Go(func() error {
		// The session ending for any reason ends the run.
		defer cancel()
		if err := app.session.Run(gctx); err != nil {
			return NewComponentError("chat", "run", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := app.hotkey.Run(gctx); err != nil {
			// Chat keeps working without the hotkey; commands stay in
			// whatever state they were in.
			app.logger.Warn("toggle hotkey unavailable", "error", err)
		}
		return nil
	})

	if app.watcher != nil {
		g.Go(func() error {
			if err := app.watcher.Run(gctx); err != nil {
				app.logger.Warn("config watcher stopped", "error", err)
			}
			return nil
		})
	}

	runErr := g.Wait()
	_ = app.Close()
	shutdownErr := app.shutdown()
	return errors.Join(runErr, shutdownErr)
}

// Close releases resources New acquired, for an Application that will not
// be run again. Run releases them itself on return.
func (app *Application) Close() error {
	if c, ok := app.watcher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// shutdown stops the pool and logs the run summary.
func (app *Application) shutdown() error {
	app.logger.Info("shutting down bot")

	ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
	defer cancel()

	var err error
	if stopErr := app.pool.Stop(ctx); stopErr != nil {
		if errors.Is(stopErr, context.DeadlineExceeded) {
			err = ErrShutdownTimeout
		} else {
			err = NewComponentError("dispatch", "stop", stopErr)
		}
	}

	stats := app.pool.Stats()
	attrs := append(app.metrics.Snapshot().LogAttrs(),
		"inputs_pressed", stats.Succeeded,
		"inputs_failed", stats.Failed+stats.Panicked,
		"inputs_discarded", stats.Discarded)
	app.logger.Info("run summary", attrs...)
	return err
}
