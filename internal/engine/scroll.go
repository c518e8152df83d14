package engine

// nearBottomThreshold is how close to the bottom the viewer must already be
// for a new message to pull the view down.
const nearBottomThreshold = 100

// ScrollMetrics describes the host's scroll container at decision time.
// Units are whatever the host renders in (pixels, rows); the policy only
// compares distances.
type ScrollMetrics struct {
	ScrollHeight int
	ScrollTop    int
	ClientHeight int
}

// DistanceFromBottom is how far the viewer has scrolled up from the end.
func (m ScrollMetrics) DistanceFromBottom() int {
	return m.ScrollHeight - m.ScrollTop - m.ClientHeight
}

// ShouldScrollToBottom decides whether a message-list mutation may move the
// view. A reader who has scrolled up to history is never yanked down; with
// no metrics available the answer is always yes, preserving the simple
// always-scroll behavior for hosts without scroll detection.
func ShouldScrollToBottom(m *ScrollMetrics) bool {
	if m == nil {
		return true
	}
	return m.DistanceFromBottom() < nearBottomThreshold
}

// maybeScroll runs the policy against the host's current metrics and asks
// the host to scroll when it passes. Called after every view mutation.
// Must not hold e.mu.
func (e *Engine) maybeScroll() {
	if e.cfg.OnScrollToBottom == nil {
		return
	}
	var metrics *ScrollMetrics
	if e.cfg.ScrollMetrics != nil {
		metrics = e.cfg.ScrollMetrics()
	}
	if ShouldScrollToBottom(metrics) {
		e.cfg.OnScrollToBottom()
	}
}
