package embedview

import (
	"time"

	"github.com/gogpu/embedview/backend"
)

// Option configures a Factory during creation.
//
// Example:
//
//	// Default: highest-priority backend, host-provided drawables
//	f := embedview.NewFactory()
//
//	// Headless rendering on the noop backend
//	f := embedview.NewFactory(
//	    embedview.WithBackend(backend.Noop),
//	    embedview.WithOffscreenDrawables(),
//	)
type Option func(*options)

// options holds optional configuration for Factory creation.
type options struct {
	backendName string
	instances   backend.InstanceFactory
	provider    DeviceHandle
	offscreen   bool
	clock       func() time.Time
}

// defaultOptions returns the default factory options.
func defaultOptions() options {
	return options{
		clock: time.Now,
	}
}

// WithBackend selects a registered backend by name (see package backend).
// An unknown or unavailable name leaves the GPU context Uncompiled.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithInstanceFactory supplies the HAL instance factory directly. It takes
// precedence over WithBackend.
func WithInstanceFactory(f backend.InstanceFactory) Option {
	return func(o *options) {
		o.instances = f
	}
}

// WithDeviceProvider shares a GPU device owned by the host application.
// The provider must also implement HalDevice() any and HalQueue() any.
// It takes precedence over WithBackend and WithInstanceFactory, and the
// device is not destroyed by Factory.Close.
func WithDeviceProvider(p DeviceHandle) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithOffscreenDrawables attaches a headless render-texture drawable source
// to every created view, in place of the host windowing system.
func WithOffscreenDrawables() Option {
	return func(o *options) {
		o.offscreen = true
	}
}

// WithClock sets the time source used by View.Tick. Nil keeps time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}
