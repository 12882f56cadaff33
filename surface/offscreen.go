// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrSourceClosed is returned when an OffscreenSource is used after Close.
var ErrSourceClosed = errors.New("surface: offscreen source is closed")

// offscreenTarget is one render-attachment texture and its view. pending
// counts the drawables handed out for it that are not yet retired.
type offscreenTarget struct {
	tex     hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
	pending int
}

func (t *offscreenTarget) destroy(device hal.Device) {
	if t == nil {
		return
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// OffscreenSource is a DrawableSource backed by a single HAL texture.
// The texture is created lazily on the first NextDrawable and recreated
// when the requested size changes.
//
// Its drawables implement Retirer. A texture replaced by a resize is kept
// until every drawable handed out for it has been retired, however many
// resizes happen in between, and is destroyed by the last Retire or by
// Close.
type OffscreenSource struct {
	device hal.Device
	format gputypes.TextureFormat
	label  string

	mu      sync.Mutex
	current *offscreenTarget
	retired []*offscreenTarget
	closed  bool

	presented atomic.Uint64
	onPresent func(width, height uint32)
}

// NewOffscreenSource creates a headless drawable source on device.
// An undefined format selects the surface Format.
func NewOffscreenSource(device hal.Device, format gputypes.TextureFormat, label string) *OffscreenSource {
	if format == gputypes.TextureFormatUndefined {
		format = Format
	}
	if label == "" {
		label = "offscreen"
	}
	return &OffscreenSource{device: device, format: format, label: label}
}

// OnPresent installs a callback invoked on every Present with the size of
// the presented drawable. It must be set before rendering starts.
func (o *OffscreenSource) OnPresent(fn func(width, height uint32)) {
	o.onPresent = fn
}

// NextDrawable implements DrawableSource.
func (o *OffscreenSource) NextDrawable(width, height uint32) (Drawable, bool) {
	if width == 0 || height == 0 {
		return nil, false
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.ensureTarget(width, height); err != nil {
		return nil, false
	}
	o.current.pending++
	return &offscreenDrawable{
		source: o,
		target: o.current,
		view:   o.current.view,
		width:  o.current.width,
		height: o.current.height,
	}, true
}

// Size returns the size of the current backing texture, or zero before the
// first drawable was handed out.
func (o *OffscreenSource) Size() (width, height uint32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return 0, 0
	}
	return o.current.width, o.current.height
}

// Presented returns the number of drawables presented so far.
func (o *OffscreenSource) Presented() uint64 {
	return o.presented.Load()
}

// Retained returns the number of replaced textures still waiting for their
// drawables to be retired.
func (o *OffscreenSource) Retained() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.retired)
}

// Close releases the current texture and every retained one. The caller
// must ensure no submitted frame still references them. Close is
// idempotent.
func (o *OffscreenSource) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	for _, t := range o.retired {
		t.destroy(o.device)
	}
	o.current.destroy(o.device)
	o.retired = nil
	o.current = nil
}

// release drops one pending drawable of t and destroys t once it has been
// replaced and nothing references it.
func (o *OffscreenSource) release(t *offscreenTarget) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t.pending--
	if o.closed || t.pending > 0 || t == o.current {
		return
	}
	t.destroy(o.device)
	o.retired = slices.DeleteFunc(o.retired, func(r *offscreenTarget) bool { return r == t })
}

// ensureTarget must be called with o.mu held.
func (o *OffscreenSource) ensureTarget(width, height uint32) error {
	if o.closed {
		return ErrSourceClosed
	}
	if o.current != nil && o.current.width == width && o.current.height == height {
		return nil
	}

	tex, err := o.device.CreateTexture(&hal.TextureDescriptor{
		Label:         o.label + "_color",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        o.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	view, err := o.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: o.label + "_color_view",
	})
	if err != nil {
		o.device.DestroyTexture(tex)
		return fmt.Errorf("create offscreen view: %w", err)
	}

	if old := o.current; old != nil {
		if old.pending == 0 {
			old.destroy(o.device)
		} else {
			o.retired = append(o.retired, old)
		}
	}
	o.current = &offscreenTarget{tex: tex, view: view, width: width, height: height}
	return nil
}

// offscreenDrawable hands out one frame of an OffscreenSource.
type offscreenDrawable struct {
	source  *OffscreenSource
	target  *offscreenTarget
	view    hal.TextureView
	width   uint32
	height  uint32
	retired atomic.Bool
}

func (d *offscreenDrawable) TextureView() hal.TextureView { return d.view }

func (d *offscreenDrawable) Size() (uint32, uint32) { return d.width, d.height }

func (d *offscreenDrawable) Present() {
	d.source.presented.Add(1)
	if fn := d.source.onPresent; fn != nil {
		fn(d.width, d.height)
	}
}

// Retire implements Retirer. Calls after the first are ignored.
func (d *offscreenDrawable) Retire() {
	if d.retired.CompareAndSwap(false, true) {
		d.source.release(d.target)
	}
}

var (
	_ DrawableSource = (*OffscreenSource)(nil)
	_ Retirer        = (*offscreenDrawable)(nil)
)
