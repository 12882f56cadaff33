// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import "github.com/gogpu/wgpu/hal"

// Drawable is the presentable image buffer for one frame of one view.
// It is valid until Present is called.
type Drawable interface {
	// TextureView is the color attachment the frame is rendered into.
	TextureView() hal.TextureView

	// Size returns the drawable size in pixels.
	Size() (width, height uint32)

	// Present hands the frame back to the windowing system for display.
	// Called after the frame's command buffer has been submitted.
	Present()
}

// DrawableSource is the windowing system side of a surface: it supplies a
// fresh Drawable for every display-refresh tick.
type DrawableSource interface {
	// NextDrawable returns a drawable of the requested size, resizing the
	// backing storage if needed. It reports false when no drawable is
	// available this tick (window not live, swapchain out of date, ...).
	NextDrawable(width, height uint32) (Drawable, bool)
}

// Retirer is implemented by drawables that keep GPU resources alive until
// the frame rendered into them has completed. A renderer calls Retire once
// per drawable: after the frame's fence value is reached, or when the frame
// was dropped before submission.
type Retirer interface {
	Retire()
}
