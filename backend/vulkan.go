package backend

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	Register(Vulkan, 100, func() (InstanceFactory, bool) {
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok || b == nil {
			return nil, false
		}
		return b, true
	})
}
