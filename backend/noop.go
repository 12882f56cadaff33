package backend

import "github.com/gogpu/wgpu/hal/noop"

func init() {
	Register(Noop, 0, func() (InstanceFactory, bool) {
		return &noop.API{}, true
	})
}
