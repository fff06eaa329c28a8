package feed

// Sentinel is the virtual row just past the last loaded post.
type Sentinel struct {
	Top    int
	Height int
}

// Viewport is the band of list rows currently on screen.
type Viewport struct {
	Offset int
	Height int
}

// Trigger reports when the sentinel becomes visible. Only the rising edge
// is reported, and staying visible reports nothing further. Disabling clears
// the visible state and drops the observation, so re-enabling with the
// sentinel still on screen produces a new edge.
type Trigger struct {
	threshold float64
	margin    int

	enabled  bool
	attached bool
	sentinel Sentinel
	visible  bool
}

// NewTrigger returns an enabled trigger. threshold is the fraction of the
// sentinel that must overlap the viewport; margin widens the viewport by
// that many rows on each side.
func NewTrigger(threshold float64, margin int) *Trigger {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	if margin < 0 {
		margin = 0
	}
	return &Trigger{threshold: threshold, margin: margin, enabled: true}
}

func (t *Trigger) SetEnabled(on bool) {
	if !on {
		t.Detach()
	}
	t.enabled = on
}

// Attach starts observing s. Moving to a different sentinel starts a
// fresh observation, so a sentinel that lands inside the viewport after a
// page is appended produces its own edge.
func (t *Trigger) Attach(s Sentinel) {
	if !t.enabled {
		return
	}
	if s.Height <= 0 {
		s.Height = 1
	}
	if !t.attached || s != t.sentinel {
		t.visible = false
	}
	t.sentinel = s
	t.attached = true
}

func (t *Trigger) Detach() {
	t.attached = false
	t.visible = false
}

// Observe updates visibility for vp and reports the became-visible edge.
func (t *Trigger) Observe(vp Viewport) bool {
	if !t.enabled || !t.attached {
		return false
	}
	now := t.intersects(vp)
	edge := now && !t.visible
	t.visible = now
	return edge
}

func (t *Trigger) intersects(vp Viewport) bool {
	if vp.Height <= 0 {
		return false
	}
	top := vp.Offset - t.margin
	bottom := vp.Offset + vp.Height + t.margin

	start := max(top, t.sentinel.Top)
	end := min(bottom, t.sentinel.Top+t.sentinel.Height)
	overlap := end - start
	if overlap <= 0 {
		return false
	}
	return float64(overlap)/float64(t.sentinel.Height) >= t.threshold
}

func (t *Trigger) Enabled() bool   { return t.enabled }
func (t *Trigger) Visible() bool   { return t.visible }
func (t *Trigger) Observing() bool { return t.enabled && t.attached }
