package alarm

import "sync/atomic"

// WakeFlag is the single word of state shared between the interrupt handler
// and the run loop. Signal is the only operation the handler performs; it
// sets the flag and counts the edge. Multiple edges before the loop gets
// around to TakeAndClear collapse into one wake.
type WakeFlag struct {
	flag  uint32
	edges uint32
}

// Signal marks a pending wake. Safe to call from interrupt context.
func (w *WakeFlag) Signal() {
	atomic.StoreUint32(&w.flag, 1)
	atomic.AddUint32(&w.edges, 1)
}

// TakeAndClear atomically consumes the pending wake, reporting whether one
// was pending. An edge arriving after the swap sets the flag again and is
// seen on the next call.
func (w *WakeFlag) TakeAndClear() bool {
	return atomic.SwapUint32(&w.flag, 0) != 0
}

// Edges returns the total number of signals since boot. Wraps at 2^32.
func (w *WakeFlag) Edges() uint32 {
	return atomic.LoadUint32(&w.edges)
}
