package backend

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
)

// Backend names registered by this package.
const (
	Vulkan = "vulkan"
	Noop   = "noop"
)

// ErrBackendNotAvailable is returned when a requested backend is not registered
// or cannot be used on this system.
var ErrBackendNotAvailable = errors.New("backend: not available")

// InstanceFactory creates HAL instances. hal.Backend values returned by
// hal.GetBackend and noop.API both satisfy it.
type InstanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}
