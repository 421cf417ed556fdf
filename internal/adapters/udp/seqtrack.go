package udp

// seqHalf splits the 16-bit sequence space: anything further ahead than
// this is treated as a late or replayed frame rather than a gap.
const seqHalf = 1 << 15

// SeqTracker follows the 16-bit frame sequence counter and reports
// duplicates and gaps. The counter wraps at 65535; wrap is handled by
// unsigned modular arithmetic. The tracker is used from a single
// goroutine (the receive loop) and is not safe for concurrent use.
type SeqTracker struct {
	last    uint16
	started bool
}

// NewSeqTracker creates a tracker with no observations yet.
func NewSeqTracker() *SeqTracker {
	return &SeqTracker{}
}

// Observe feeds the next received sequence number. It returns whether
// the frame is a duplicate (or late arrival) and how many frames were
// lost since the previous observation. The first observation sets the
// baseline and reports neither.
func (t *SeqTracker) Observe(seq uint16) (dup bool, lost int) {
	if !t.started {
		t.started = true
		t.last = seq
		return false, 0
	}

	delta := seq - t.last
	switch {
	case delta == 0:
		return true, 0
	case delta < seqHalf:
		t.last = seq
		return false, int(delta) - 1
	default:
		// Behind the baseline: late or replayed, baseline keeps moving
		// forward only.
		return true, 0
	}
}

// Reset clears the baseline so the next observation starts fresh, e.g.
// after a device reboot resets its counter.
func (t *SeqTracker) Reset() {
	t.started = false
	t.last = 0
}
