// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the drawable surface of an embedded view.
//
// A Surface is the per-view presentable target: a declared size written by
// the host's layout path, a fixed pixel format, a fixed transparent clear
// color, and an attached DrawableSource that hands out one Drawable per
// display-refresh tick.
//
// # Threading
//
// The declared size has exactly one writer (layout) and one reader
// (rendering). Both sides go through a single packed atomic word, so the
// reader never sees the width of one layout event paired with the height
// of another.
//
//	s := surface.New(0, 0)            // size unknown at creation
//	s.Attach(window)                  // host windowing system
//	s.SetSize(800, 600)               // layout path, any goroutine
//	d, ok := s.CurrentDrawable()      // render path, once per tick
//
// # Drawable Sources
//
// Native hosts attach their own DrawableSource (swapchain images of the
// view's window). OffscreenSource is a headless implementation backed by a
// HAL render-attachment texture, used for tests and tooling.
package surface
