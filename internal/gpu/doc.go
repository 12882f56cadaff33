// Package gpu owns the GPU side of an embedded view: the process-wide
// Context (device, queue, one compiled render pipeline) and the per-view
// FrameRenderer that draws one frame per display-refresh tick.
//
// # Lifetime
//
// A Context is opened once and shared read-only by every FrameRenderer
// for the rest of the process. Opening never fails from the caller's point
// of view: any device or shader failure leaves the pipeline Uncompiled,
// is recorded as an InitError, and is not retried.
//
// # Frames
//
// Each tick recomputes three vertices from the wall-clock time and the
// view identifier, encodes a single render pass into the surface's current
// drawable, submits it and presents the drawable. Nothing waits for the
// GPU; completed frames are retired by polling the renderer's fence on
// later ticks. Any failure inside a tick skips that tick.
//
// # Concurrency
//
// Encoding runs concurrently across renderers. Queue access (buffer
// writes and submission) is serialized by the Context.
package gpu
