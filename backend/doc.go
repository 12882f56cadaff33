// Package backend selects the HAL instance used to acquire a GPU device.
//
// Backends register themselves by name from init() functions and are
// selected at runtime, either by name or by priority:
//
//	// Highest-priority backend that is available on this system.
//	name, f, ok := backend.Default()
//
//	// A specific backend (e.g. for headless runs).
//	f, ok := backend.Get(backend.Noop)
//
// # Available Backends
//
//   - "vulkan": hardware device via gogpu/wgpu/hal/vulkan (priority 100)
//   - "noop": device that accepts every call and renders nothing
//     (priority 0). Never picked by Default; request it by name.
package backend
