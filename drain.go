package gaze

import (
	"runtime"
	"time"

	"github.com/zoobzio/clockz"
)

// DefaultDrainTimeout bounds how long a reload waits for one display's
// in-flight transfer before forcing recovery.
const DefaultDrainTimeout = 100 * time.Millisecond

// AwaitReady polls ready until it reports true or timeout elapses on
// clock. On expiry it calls recovery and returns false. The poll yields
// between attempts but never sleeps, so a transfer that completes is
// observed immediately.
func AwaitReady(clock clockz.Clock, timeout time.Duration, ready func() bool, recovery func()) bool {
	start := clock.Now()
	for !ready() {
		if clock.Since(start) > timeout {
			if recovery != nil {
				recovery()
			}
			return false
		}
		runtime.Gosched()
	}
	return true
}
