package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/embedview/backend"
	"github.com/gogpu/embedview/surface"
)

// ErrContextClosed is the Uncompiled cause after Close.
var ErrContextClosed = errors.New("gpu: context closed")

// Config selects where the device comes from.
type Config struct {
	// Provider shares a device owned by the host application. It must also
	// implement HalDevice() any and HalQueue() any returning hal.Device and
	// hal.Queue. Takes precedence over Instances.
	Provider gpucontext.DeviceProvider

	// Instances creates a HAL instance from which an adapter and device
	// are opened. The Context owns everything it creates this way.
	Instances backend.InstanceFactory

	// ShaderSource overrides the embedded triangle shader. Empty selects
	// the embedded source.
	ShaderSource string
}

// Context is the process-wide GPU state: one device, one queue and one
// render pipeline. It is built once by Open and shared read-only by every
// FrameRenderer. Submit and WriteBuffer are serialized; everything else is
// safe to call concurrently.
type Context struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	owned    bool

	format      gputypes.TextureFormat
	adapterName string

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout

	mu      sync.RWMutex
	state   PipelineState
	initErr error
	closed  bool

	// submitMu is the submission guard.
	submitMu sync.Mutex
}

// Open acquires a device and compiles the render pipeline. It never fails:
// on any error the returned Context stays Uncompiled and the cause is
// available from InitErr. Open is not retried by callers.
func Open(cfg Config) (c *Context) {
	c = &Context{format: surface.Format}

	defer func() {
		if r := recover(); r != nil {
			c.fail(initErr(StageDevice, fmt.Errorf("panic: %v", r)))
		}
	}()

	var err error
	if cfg.Provider != nil {
		err = c.useProvider(cfg.Provider)
	} else {
		err = c.openDevice(cfg.Instances)
	}
	if err != nil {
		c.fail(err)
		return c
	}

	source := cfg.ShaderSource
	if source == "" {
		source = triangleShaderSource
	}
	pipeline, err := c.createPipeline(source)
	if err != nil {
		c.fail(err)
		return c
	}

	c.mu.Lock()
	c.state = Ready{Pipeline: pipeline}
	c.mu.Unlock()

	slogger().Info("gpu: pipeline ready",
		"adapter", c.adapterName, "format", c.format, "shared", !c.owned)
	return c
}

// useProvider takes the device and queue from the host application.
func (c *Context) useProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return initErr(StageProvider, ErrProviderNotHAL)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return initErr(StageProvider, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL))
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return initErr(StageProvider, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL))
	}
	c.device = device
	c.queue = queue
	c.owned = false
	c.adapterName = "host"
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		c.format = f
	}
	return nil
}

// openDevice creates an instance, selects an adapter and opens a device.
// Discrete GPUs are preferred, then integrated ones, then the first adapter.
func (c *Context) openDevice(instances backend.InstanceFactory) error {
	if instances == nil {
		return initErr(StageInstance, ErrNoBackend)
	}
	instance, err := instances.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return initErr(StageInstance, fmt.Errorf("create instance: %w", err))
	}
	c.instance = instance
	c.owned = true

	adapters := instance.EnumerateAdapters(nil)
	selected := selectAdapter(adapters)
	if selected == nil {
		return initErr(StageAdapter, ErrNoAdapter)
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return initErr(StageDevice, fmt.Errorf("open device: %w", err))
	}
	c.device = openDev.Device
	c.queue = openDev.Queue
	c.adapterName = selected.Info.Name
	slogger().Info("gpu: adapter selected",
		"name", selected.Info.Name, "type", selected.Info.DeviceType)
	return nil
}

func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// createPipeline validates the shader and builds the single render
// pipeline: per-vertex position and color, triangle list, no culling,
// no blending, color target in the context format.
func (c *Context) createPipeline(source string) (hal.RenderPipeline, error) {
	if err := validateShader(source); err != nil {
		return nil, initErr(StageShader, err)
	}

	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "triangle_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, initErr(StageShader, fmt.Errorf("create shader module: %w", err))
	}
	c.shader = shader

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "triangle_pipe_layout",
		BindGroupLayouts: nil,
	})
	if err != nil {
		return nil, initErr(StagePipeline, fmt.Errorf("create pipeline layout: %w", err))
	}
	c.pipeLayout = pipeLayout

	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "triangle_pipeline",
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: vertexEntryPoint,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: fragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    c.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, initErr(StagePipeline, fmt.Errorf("create render pipeline: %w", err))
	}
	return pipeline, nil
}

// fail records err, releases whatever was created and leaves the context
// Uncompiled.
func (c *Context) fail(err error) {
	c.releaseObjects(nil)
	c.mu.Lock()
	c.state = Uncompiled{Err: err}
	c.initErr = err
	c.mu.Unlock()
	slogger().Warn("gpu: context unavailable, frames will be skipped", "err", err)
}

// releaseObjects destroys pipeline objects in reverse creation order, then
// the device and instance when owned.
func (c *Context) releaseObjects(pipeline hal.RenderPipeline) {
	if c.device != nil {
		if pipeline != nil {
			c.device.DestroyRenderPipeline(pipeline)
		}
		if c.pipeLayout != nil {
			c.device.DestroyPipelineLayout(c.pipeLayout)
			c.pipeLayout = nil
		}
		if c.shader != nil {
			c.device.DestroyShaderModule(c.shader)
			c.shader = nil
		}
		if c.owned {
			c.device.Destroy()
		}
	}
	c.device = nil
	c.queue = nil
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}

// Pipeline returns the pipeline state.
func (c *Context) Pipeline() PipelineState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil {
		return Uncompiled{Err: initErr(StageDevice, ErrNotOpened)}
	}
	return c.state
}

// Ready reports whether the pipeline compiled.
func (c *Context) Ready() bool {
	_, ok := c.Pipeline().(Ready)
	return ok
}

// InitErr returns the error that left the context Uncompiled, or nil.
func (c *Context) InitErr() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initErr
}

// Format returns the color format the pipeline renders into.
func (c *Context) Format() gputypes.TextureFormat { return c.format }

// AdapterName returns the selected adapter's name, "host" for a shared
// device, or "" when no device was acquired.
func (c *Context) AdapterName() string { return c.adapterName }

// Device returns the HAL device, nil when none was acquired or after Close.
func (c *Context) Device() hal.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.device
}

// Queue returns the HAL queue, nil when none was acquired or after Close.
func (c *Context) Queue() hal.Queue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queue
}

// WriteBuffer uploads data into buf at offset under the submission guard.
func (c *Context) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()
	queue := c.Queue()
	if queue == nil {
		return ErrContextClosed
	}
	queue.WriteBuffer(buf, offset, data)
	return nil
}

// Submit submits one command buffer and signals fence with value when it
// completes. It does not wait.
func (c *Context) Submit(cmd hal.CommandBuffer, fence hal.Fence, value uint64) error {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()
	queue := c.Queue()
	if queue == nil {
		return ErrContextClosed
	}
	return queue.Submit([]hal.CommandBuffer{cmd}, fence, value)
}

// Close releases the pipeline, and the device and instance when the context
// created them. A device shared from a host provider is left alone.
// Renderers must be released first. Close is idempotent.
func (c *Context) Close() {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	var pipeline hal.RenderPipeline
	if r, ok := c.state.(Ready); ok {
		pipeline = r.Pipeline
	}
	c.releaseObjects(pipeline)
	if c.initErr == nil {
		c.state = Uncompiled{Err: ErrContextClosed}
	}
}
