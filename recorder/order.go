package recorder

import "sync/atomic"

// globalOrder is the single process-wide monotonic counter that defines
// the total order of recorded events across every recorder. It is the
// sole source of truth for cross-recorder ordering.
var globalOrder atomic.Uint64

// nextOrder claims and returns the next global order value.
func nextOrder() uint64 {
	return globalOrder.Add(1) - 1
}
