// Package lifecycle implements the shutdown sequence shared by both
// recording and playback modes: signal handling, a quiescence window,
// and (recording only) batch content-pipeline finalization of the
// inventory, per spec.md §4.G.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// quiescenceWindow is how long recording mode waits after shutdown is
// signaled before batch-processing, to let in-flight responses land.
const quiescenceWindow = 1 * time.Second

// playbackDrainWindow is playback mode's shorter, simpler drain before
// exit: no batch processing, just letting in-flight responses finish.
const playbackDrainWindow = 500 * time.Millisecond

// visibilityRetries/visibilityInterval bound the post-save stat check
// that confirms every content file a sibling process will read is
// actually visible on disk.
const (
	visibilityRetries  = 10
	visibilityInterval = 1 * time.Second
)

// WaitForSignal returns a context canceled when SIGINT or SIGTERM (or
// Ctrl+C/Ctrl+Break on Windows) arrives, matching the teacher's
// os/signal-based shutdown trigger generalized to context cancellation
// so every long-running task can select on ctx.Done() instead of a
// bespoke channel.
func WaitForSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
