package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/embedview/surface"
)

const (
	// MaxFramesInFlight bounds the frames a renderer may have submitted
	// but not yet retired. Ticks beyond it are skipped.
	MaxFramesInFlight = 3

	// releaseTimeout bounds the wait for in-flight frames in Release.
	releaseTimeout = time.Second
)

// ErrRendererReleased is returned when encoding on a released renderer.
var ErrRendererReleased = errors.New("gpu: renderer released")

// inflightFrame holds the per-frame objects of one submitted frame until
// the renderer's fence reaches value.
type inflightFrame struct {
	value    uint64
	vertBuf  hal.Buffer
	cmdBuf   hal.CommandBuffer
	drawable surface.Drawable
}

// FrameRenderer draws the rotating triangle for one view. Each Render call
// is one display-refresh tick; it never blocks on the GPU.
//
// FrameRenderer is safe for concurrent use, though a host normally drives
// it from a single refresh callback.
type FrameRenderer struct {
	ctx *Context
	id  int64

	mu        sync.Mutex
	fence     hal.Fence
	nextValue uint64
	inflight  []inflightFrame
	scratch   [vertexDataSize]byte
	released  bool

	stats counters
}

// NewFrameRenderer creates a renderer for the view with the given id. It
// creates no GPU objects until the first frame.
func NewFrameRenderer(ctx *Context, id int64) *FrameRenderer {
	return &FrameRenderer{
		ctx:      ctx,
		id:       id,
		inflight: make([]inflightFrame, 0, MaxFramesInFlight),
	}
}

// ID returns the view identifier used as the phase offset.
func (r *FrameRenderer) ID() int64 { return r.id }

// Render draws one frame into s for time t (seconds). It returns true when
// a frame was submitted and presented; any failure skips the tick.
func (r *FrameRenderer) Render(s *surface.Surface, t float64) (submitted bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slogger().Warn("gpu: frame panicked", "view", r.id, "panic", rec)
			r.skip(SkipEncode, nil)
			submitted = false
		}
	}()

	ready, ok := r.ctx.Pipeline().(Ready)
	if !ok {
		r.skip(SkipUncompiled, nil)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		r.skip(SkipReleased, ErrRendererReleased)
		return false
	}
	device := r.ctx.Device()
	if device == nil {
		r.skip(SkipUncompiled, ErrContextClosed)
		return false
	}

	r.retire(device)
	if len(r.inflight) >= MaxFramesInFlight {
		r.skip(SkipBackpressure, nil)
		return false
	}

	drawable, ok := s.CurrentDrawable()
	if !ok {
		r.skip(SkipNoDrawable, nil)
		return false
	}

	frame, err := r.encode(device, ready.Pipeline, drawable, s.ClearColor(), t)
	if err != nil {
		retireDrawable(drawable)
		r.skip(SkipEncode, err)
		return false
	}
	frame.drawable = drawable

	frame.value = r.nextValue + 1
	if err := r.ctx.Submit(frame.cmdBuf, r.fence, frame.value); err != nil {
		freeFrame(device, frame)
		r.skip(SkipSubmit, err)
		return false
	}
	r.nextValue = frame.value
	drawable.Present()

	r.inflight = append(r.inflight, frame)
	r.stats.submitted.Add(1)
	r.stats.inFlight.Store(int64(len(r.inflight)))
	return true
}

// encode records one render pass that clears the drawable and draws the
// triangle. On error every object it created is released.
func (r *FrameRenderer) encode(
	device hal.Device,
	pipeline hal.RenderPipeline,
	drawable surface.Drawable,
	clearColor gputypes.Color,
	t float64,
) (inflightFrame, error) {
	if r.fence == nil {
		fence, err := device.CreateFence()
		if err != nil {
			return inflightFrame{}, fmt.Errorf("create fence: %w", err)
		}
		r.fence = fence
	}

	data := packVertices(r.scratch[:], TriangleVertices(t, r.id))
	vertBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "triangle_vertices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return inflightFrame{}, fmt.Errorf("create vertex buffer: %w", err)
	}
	if err := r.ctx.WriteBuffer(vertBuf, 0, data); err != nil {
		device.DestroyBuffer(vertBuf)
		return inflightFrame{}, fmt.Errorf("write vertex buffer: %w", err)
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "triangle_encoder",
	})
	if err != nil {
		device.DestroyBuffer(vertBuf)
		return inflightFrame{}, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("triangle_frame"); err != nil {
		device.DestroyBuffer(vertBuf)
		return inflightFrame{}, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "triangle_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       drawable.TextureView(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearColor,
		}},
	})
	rp.SetPipeline(pipeline)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.Draw(vertexCount, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		device.DestroyBuffer(vertBuf)
		return inflightFrame{}, fmt.Errorf("end encoding: %w", err)
	}
	return inflightFrame{vertBuf: vertBuf, cmdBuf: cmdBuf}, nil
}

// retire frees frames whose fence value has been reached. It polls with a
// zero timeout and stops at the first pending frame, since fence values
// complete in submission order.
func (r *FrameRenderer) retire(device hal.Device) {
	if r.fence == nil || len(r.inflight) == 0 {
		return
	}
	done := 0
	for _, f := range r.inflight {
		ok, err := device.Wait(r.fence, f.value, 0)
		if err != nil || !ok {
			break
		}
		freeFrame(device, f)
		done++
	}
	if done == 0 {
		return
	}
	n := copy(r.inflight, r.inflight[done:])
	clear(r.inflight[n:])
	r.inflight = r.inflight[:n]
	r.stats.retired.Add(uint64(done))
	r.stats.inFlight.Store(int64(n))
}

func freeFrame(device hal.Device, f inflightFrame) {
	if f.cmdBuf != nil {
		device.FreeCommandBuffer(f.cmdBuf)
	}
	if f.vertBuf != nil {
		device.DestroyBuffer(f.vertBuf)
	}
	retireDrawable(f.drawable)
}

// retireDrawable tells the drawable's source the GPU no longer uses it.
func retireDrawable(d surface.Drawable) {
	if r, ok := d.(surface.Retirer); ok {
		r.Retire()
	}
}

func (r *FrameRenderer) skip(reason SkipReason, err error) {
	r.stats.skipped[reason].Add(1)
	if err != nil {
		slogger().Debug("gpu: frame skipped", "view", r.id, "reason", reason, "err", err)
		return
	}
	slogger().Debug("gpu: frame skipped", "view", r.id, "reason", reason)
}

// Stats returns a snapshot of the frame counters.
func (r *FrameRenderer) Stats() Stats {
	return r.stats.snapshot()
}

// Release waits up to one second for in-flight frames, then frees them and
// the fence. Later Render calls are skipped. Release is idempotent.
func (r *FrameRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true

	device := r.ctx.Device()
	if device == nil {
		// The device is gone; its objects went with it.
		r.inflight = r.inflight[:0]
		r.fence = nil
		r.stats.inFlight.Store(0)
		return
	}

	if n := len(r.inflight); n > 0 {
		last := r.inflight[n-1].value
		ok, err := device.Wait(r.fence, last, releaseTimeout)
		if err != nil || !ok {
			slogger().Warn("gpu: in-flight frames not complete at release",
				"view", r.id, "pending", n, "err", err)
		}
		for _, f := range r.inflight {
			freeFrame(device, f)
		}
		r.stats.retired.Add(uint64(n))
		r.inflight = r.inflight[:0]
		r.stats.inFlight.Store(0)
	}
	if r.fence != nil {
		device.DestroyFence(r.fence)
		r.fence = nil
	}
	slogger().Debug("gpu: renderer released", "view", r.id)
}
