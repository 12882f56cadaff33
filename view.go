package embedview

import (
	"time"

	"github.com/gogpu/embedview/internal/gpu"
	"github.com/gogpu/embedview/surface"
)

// Renderer draws one frame into a surface for time t in seconds and
// reports whether a frame was submitted. The host's display-refresh
// collaborator calls it once per tick.
type Renderer interface {
	Render(s *surface.Surface, t float64) bool
}

// Stats is a snapshot of a view's frame counters.
type Stats = gpu.Stats

// SkipReason explains why a tick produced no frame.
type SkipReason = gpu.SkipReason

// Skip reasons, used to index Stats.Skipped.
const (
	SkipUncompiled   = gpu.SkipUncompiled
	SkipNoDrawable   = gpu.SkipNoDrawable
	SkipBackpressure = gpu.SkipBackpressure
	SkipEncode       = gpu.SkipEncode
	SkipSubmit       = gpu.SkipSubmit
	SkipReleased     = gpu.SkipReleased
)

// View is one embedded GPU view: a drawable surface paired with the
// renderer that draws into it.
type View struct {
	id        int64
	args      any
	surface   *surface.Surface
	renderer  *gpu.FrameRenderer
	clock     func() time.Time
	offscreen *surface.OffscreenSource
}

func newView(id int64, args any, hint LayoutHint, r *gpu.FrameRenderer, clock func() time.Time) *View {
	return &View{
		id:       id,
		args:     args,
		surface:  surface.New(hint.Width, hint.Height),
		renderer: r,
		clock:    clock,
	}
}

// ID returns the host-assigned view identifier.
func (v *View) ID() int64 { return v.id }

// Args returns the opaque creation arguments passed to the first Create.
func (v *View) Args() any { return v.args }

// Surface returns the view's drawable surface.
func (v *View) Surface() *surface.Surface { return v.surface }

// Renderer returns the view's per-frame renderer.
func (v *View) Renderer() Renderer { return v.renderer }

// Offscreen returns the headless drawable source attached by
// WithOffscreenDrawables, or nil.
func (v *View) Offscreen() *surface.OffscreenSource { return v.offscreen }

// Layout sets the drawable size. Negative sizes clamp to zero.
func (v *View) Layout(width, height int) {
	v.surface.SetSize(width, height)
}

// Attach binds a host drawable source to the view. Nil detaches.
func (v *View) Attach(src surface.DrawableSource) {
	v.surface.Attach(src)
}

// Draw renders one frame for wall-clock time now.
func (v *View) Draw(now time.Time) bool {
	return v.renderer.Render(v.surface, Seconds(now))
}

// Tick renders one frame at the factory clock's current time.
func (v *View) Tick() bool {
	return v.Draw(v.clock())
}

// Stats returns the view's frame counters.
func (v *View) Stats() Stats {
	return v.renderer.Stats()
}

func (v *View) release() {
	v.renderer.Release()
	v.surface.Detach()
	if v.offscreen != nil {
		v.offscreen.Close()
	}
}

// Seconds converts a wall-clock time to the seconds value used as the
// animation time.
func Seconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
