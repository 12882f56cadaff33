package gpu

import (
	"github.com/gogpu/wgpu/hal"
)

// PipelineState is the compiled-pipeline state of a Context: either
// Uncompiled or Ready. It is fixed when Open returns, with one exception:
// Close moves a Ready context to Uncompiled{Err: ErrContextClosed}, so
// renderers still holding the context skip every later tick.
type PipelineState interface {
	pipelineState()
}

// Uncompiled means no usable pipeline exists. Err holds the InitError,
// nil only for a zero Context. Renderers skip every frame in this state.
type Uncompiled struct {
	Err error
}

// Ready holds the render pipeline shared by every renderer.
type Ready struct {
	Pipeline hal.RenderPipeline
}

func (Uncompiled) pipelineState() {}
func (Ready) pipelineState()      {}
