// Package embedview provides a GPU-rendered view that a host application
// embeds into its own view hierarchy.
//
// # Overview
//
// The host asks a Factory for a view by identifier. Each view owns a
// drawable Surface and a per-view frame renderer that draws a continuously
// rotating, vertex-colored triangle every display-refresh tick. Views
// rendering side by side are phase-shifted by their identifier.
//
// # Quick Start
//
//	import "github.com/gogpu/embedview"
//
//	f := embedview.NewFactory(embedview.WithOffscreenDrawables())
//	defer f.Close()
//
//	v := f.Create(1, nil, embedview.LayoutHint{})
//	f.OnLayoutChanged(1, 800, 600)
//
//	// Called by the host on every display refresh:
//	v.Tick()
//
// # GPU Context
//
// The GPU device, queue and the single render pipeline are created lazily
// on the first Create and shared by every view for the rest of the
// process. If the device or the shader cannot be set up, the factory keeps
// working: views are created and laid out normally but never draw. The
// cause is available from Factory.InitErr and is logged at Warn level.
//
// # Devices
//
// By default the highest-priority registered backend (Vulkan) is used.
// WithBackend selects a backend by name, WithInstanceFactory supplies a HAL
// instance factory directly, and WithDeviceProvider shares a device the
// host application already owns.
//
// # Drawables
//
// Presentable targets come from the host windowing system through
// surface.DrawableSource. WithOffscreenDrawables attaches a headless
// render-texture source to every view instead, for tests and tooling.
//
// # Logging
//
// embedview is silent by default. Call SetLogger to enable logging.
package embedview
