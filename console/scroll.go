package console

// Viewport is the scroll-position state machine reconciling append-only growth
// with a reader inspecting history. Pinned means every append jumps the view
// to the newest line; unpinned leaves the reader's position untouched.
type Viewport struct {
	tolerance int
	pinned    bool
	// lastLen is the buffer length at the last observed scroll event. A scroll
	// event arriving while the length is unchanged is an active user scroll
	// rather than content growing under the reader.
	lastLen int
}

// NewViewport returns a viewport pinned to the bottom.
func NewViewport(tolerance int) *Viewport {
	return &Viewport{tolerance: tolerance, pinned: true}
}

// Pinned reports whether the viewport follows appends.
func (v *Viewport) Pinned() bool {
	return v.pinned
}

// ObserveScroll records a manual scroll event. offsetFromBottom is the
// distance, in scroll units, between the viewport's resulting position and the
// newest content; bufferLen is the buffer length at the time of the event.
func (v *Viewport) ObserveScroll(offsetFromBottom, bufferLen int) {
	defer func() { v.lastLen = bufferLen }()
	if offsetFromBottom <= v.tolerance {
		v.pinned = true
		return
	}
	if bufferLen == v.lastLen {
		v.pinned = false
	}
}

// OnAppend records buffer growth and reports whether the view must jump to the
// newest line. Jumps are non-animated so rapid bursts stay correct.
func (v *Viewport) OnAppend(bufferLen int) (jump bool) {
	if v.pinned {
		v.lastLen = bufferLen
		return true
	}
	return false
}

// Repin forces the pinned state; the caller jumps to the bottom immediately.
func (v *Viewport) Repin(bufferLen int) {
	v.pinned = true
	v.lastLen = bufferLen
}
