// Package dispatch runs emulated key presses on a fixed-size worker pool.
//
// Matched chat commands become PendingActions. The Pool keeps them in an
// unbounded FIFO queue; each Submit lets one worker take one action and run
// its press cycle:
//
//	PressDown -> hold KeypressDuration -> PressUp -> wait KeypressDelay
//
// The delay paces the worker that ran the action, not the pool as a whole,
// so with more than one worker, presses of different actions may overlap and
// complete out of queue order.
//
// # Errors and Panics
//
// A failed or panicking press is recovered, logged and counted in Stats.
// The worker then takes the next action; nothing is retried.
//
// # Shutdown
//
// Stop refuses new work, lets in-flight cycles run to completion and
// discards actions that were queued but not yet picked up by a worker.
//
// # Usage
//
//	pool := dispatch.NewPool(emu,
//	    dispatch.WithWorkerCount(2),
//	    dispatch.WithKeypressDuration(100*time.Millisecond),
//	    dispatch.WithKeypressDelay(100*time.Millisecond),
//	)
//	if err := pool.Start(); err != nil {
//	    return err
//	}
//	defer pool.Stop(context.Background())
//
//	_ = pool.Dispatch(dispatch.NewPendingAction("up"))
package dispatch
