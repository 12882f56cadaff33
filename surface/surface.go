// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// MaxDimension is the largest declared width or height. Larger layout
// bounds are clamped, matching the 2D texture limit of common adapters.
const MaxDimension = 8192

// Format is the fixed pixel format of every surface.
const Format = gputypes.TextureFormatBGRA8Unorm

// ClearColor is the fixed clear color of every surface (fully transparent),
// so the host's content shows through around the drawn primitive.
var ClearColor = gputypes.Color{R: 0, G: 0, B: 0, A: 0}

// Surface is the drawable surface of one embedded view.
//
// SetSize and Attach may be called from the layout path while the render
// path calls Size and CurrentDrawable; no further locking is required.
type Surface struct {
	// size packs width in the high 32 bits and height in the low 32 bits.
	size atomic.Uint64

	source atomic.Pointer[sourceHolder]
}

// sourceHolder boxes the interface so it can live in an atomic.Pointer.
type sourceHolder struct {
	src DrawableSource
}

// New creates a surface with a placeholder size. The real size is usually
// delivered later by the host's layout path; zero is accepted.
func New(width, height int) *Surface {
	s := &Surface{}
	s.SetSize(width, height)
	return s
}

// SetSize updates the declared size in place. Negative values clamp to
// zero and values above MaxDimension clamp to MaxDimension.
func (s *Surface) SetSize(width, height int) {
	s.size.Store(pack(clampDimension(width), clampDimension(height)))
}

// Size returns the declared size as last written by SetSize.
func (s *Surface) Size() (width, height uint32) {
	return unpack(s.size.Load())
}

// Format returns the surface pixel format.
func (s *Surface) Format() gputypes.TextureFormat {
	return Format
}

// ClearColor returns the color the render pass clears to.
func (s *Surface) ClearColor() gputypes.Color {
	return ClearColor
}

// Attach binds the surface to a presentable target supplied by the host's
// windowing system. Attaching nil is the same as Detach.
func (s *Surface) Attach(src DrawableSource) {
	if src == nil {
		s.source.Store(nil)
		return
	}
	s.source.Store(&sourceHolder{src: src})
}

// Detach unbinds the current drawable source, if any.
func (s *Surface) Detach() {
	s.source.Store(nil)
}

// Source returns the attached drawable source, or nil.
func (s *Surface) Source() DrawableSource {
	h := s.source.Load()
	if h == nil {
		return nil
	}
	return h.src
}

// CurrentDrawable obtains this tick's drawable at the declared size.
// It reports false when the surface has no area yet, when nothing is
// attached, or when the source has no drawable available.
func (s *Surface) CurrentDrawable() (Drawable, bool) {
	w, h := s.Size()
	if w == 0 || h == 0 {
		return nil, false
	}
	src := s.Source()
	if src == nil {
		return nil, false
	}
	d, ok := src.NextDrawable(w, h)
	if !ok || d == nil || d.TextureView() == nil {
		return nil, false
	}
	return d, true
}

func clampDimension(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case v > MaxDimension:
		return MaxDimension
	default:
		return uint32(v) //nolint:gosec // bounded by MaxDimension
	}
}

func pack(width, height uint32) uint64 {
	return uint64(width)<<32 | uint64(height)
}

func unpack(v uint64) (width, height uint32) {
	return uint32(v >> 32), uint32(v) //nolint:gosec // intentional split of packed word
}
