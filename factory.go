package embedview

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/embedview/backend"
	"github.com/gogpu/embedview/internal/gpu"
	"github.com/gogpu/embedview/surface"
)

// LayoutHint is the provisional size a view is created with, before the
// host's first layout pass. The zero hint is valid: the view draws nothing
// until OnLayoutChanged gives it a nonzero size.
type LayoutHint struct {
	Width  int
	Height int
}

// Factory creates views on behalf of the host and maps view identifiers to
// them. It owns the shared GPU context, which is opened on the first
// Create and never retried.
//
// Factory is safe for concurrent use.
type Factory struct {
	opts options

	once sync.Once
	ctx  atomic.Pointer[gpu.Context]

	mu     sync.RWMutex
	views  map[int64]*View
	closed bool
}

// NewFactory creates a factory. No GPU work happens until the first Create.
func NewFactory(opts ...Option) *Factory {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Factory{
		opts:  o,
		views: make(map[int64]*View),
	}
}

// context opens the shared GPU context exactly once. It returns a zero,
// Uncompiled context when Close ran before the first Create.
func (f *Factory) context() *gpu.Context {
	f.once.Do(func() {
		f.ctx.Store(gpu.Open(f.gpuConfig()))
	})
	if ctx := f.ctx.Load(); ctx != nil {
		return ctx
	}
	return new(gpu.Context)
}

// gpuConfig resolves the device source from the options: provider, then
// instance factory, then the named or default backend.
func (f *Factory) gpuConfig() gpu.Config {
	cfg := gpu.Config{
		Provider:  f.opts.provider,
		Instances: f.opts.instances,
	}
	if cfg.Provider != nil || cfg.Instances != nil {
		return cfg
	}

	if f.opts.backendName == "" {
		name, instances, ok := backend.Default()
		if !ok {
			Logger().Warn("embedview: no GPU backend available", "registered", backend.Available())
			return cfg
		}
		Logger().Debug("embedview: using default backend", "backend", name)
		cfg.Instances = instances
		return cfg
	}

	instances, ok := backend.Get(f.opts.backendName)
	if !ok {
		Logger().Warn("embedview: backend unavailable",
			"backend", f.opts.backendName, "err", backend.ErrBackendNotAvailable)
		return cfg
	}
	cfg.Instances = instances
	return cfg
}

// Create returns the view for viewID, creating it on first use. It is the
// single entry point through which the host obtains a native view.
//
// If a view with viewID already exists it is returned unchanged, and args
// and hint are ignored. Create never fails: when the GPU context could not
// be set up the view is still returned and simply never draws.
func (f *Factory) Create(viewID int64, args any, hint LayoutHint) *View {
	ctx := f.context()

	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.views[viewID]; ok {
		Logger().Debug("embedview: reusing view", "id", viewID)
		return v
	}

	v := newView(viewID, args, hint, gpu.NewFrameRenderer(ctx, viewID), f.opts.clock)
	if f.closed {
		Logger().Warn("embedview: create after close, view will not draw", "id", viewID)
		return v
	}
	if f.opts.offscreen && ctx.Ready() {
		src := surface.NewOffscreenSource(ctx.Device(), ctx.Format(), fmt.Sprintf("view_%d", viewID))
		v.offscreen = src
		v.surface.Attach(src)
	}
	f.views[viewID] = v

	w, h := v.surface.Size()
	Logger().Info("embedview: view created", "id", viewID, "width", w, "height", h, "gpu", ctx.Ready())
	return v
}

// OnLayoutChanged sets the drawable size of the view viewID. It reports
// whether the view exists.
func (f *Factory) OnLayoutChanged(viewID int64, width, height int) bool {
	v, ok := f.View(viewID)
	if !ok {
		return false
	}
	v.Layout(width, height)
	return true
}

// View returns the view for viewID.
func (f *Factory) View(viewID int64) (*View, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.views[viewID]
	return v, ok
}

// Len returns the number of live views.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.views)
}

// IDs returns the identifiers of all live views in ascending order.
func (f *Factory) IDs() []int64 {
	f.mu.RLock()
	ids := make([]int64, 0, len(f.views))
	for id := range f.views {
		ids = append(ids, id)
	}
	f.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Release tears down the view viewID when the host discards it: its
// per-frame GPU objects are freed and its drawable source detached. The
// shared GPU context is not touched. Release reports whether the view
// existed.
func (f *Factory) Release(viewID int64) bool {
	f.mu.Lock()
	v, ok := f.views[viewID]
	delete(f.views, viewID)
	f.mu.Unlock()
	if !ok {
		return false
	}
	v.release()
	Logger().Info("embedview: view released", "id", viewID)
	return true
}

// Ready reports whether the shared GPU context has a compiled pipeline.
// It is false before the first Create.
func (f *Factory) Ready() bool {
	ctx := f.ctx.Load()
	return ctx != nil && ctx.Ready()
}

// InitErr returns why the shared GPU context is not ready, or nil when it
// is ready or has not been opened yet.
func (f *Factory) InitErr() error {
	ctx := f.ctx.Load()
	if ctx == nil {
		return nil
	}
	return ctx.InitErr()
}

// Close releases every view and then the GPU context. A device shared
// through WithDeviceProvider stays alive. Close is idempotent.
func (f *Factory) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	views := f.views
	f.views = make(map[int64]*View)
	f.mu.Unlock()

	// Consume the lazy open so no later Create acquires a device. An open
	// already under way finishes first and is closed below.
	f.once.Do(func() {})

	for _, v := range views {
		v.release()
	}
	if ctx := f.ctx.Load(); ctx != nil {
		ctx.Close()
	}
	Logger().Debug("embedview: factory closed", "views", len(views))
}
