package embedview

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// Key principle: when a DeviceHandle is supplied, embedview RECEIVES the
// device from the host and does not create one. The host keeps ownership;
// Factory.Close leaves the device alive.
//
// Besides the gpucontext methods, the handle must expose the wgpu/hal
// objects:
//
//	func (h *handle) HalDevice() any { return h.device } // hal.Device
//	func (h *handle) HalQueue() any  { return h.queue }  // hal.Queue
//
// A defined SurfaceFormat overrides the default BGRA8Unorm color format.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// A factory given a NullDeviceHandle never draws; views are still created
// and laid out.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
