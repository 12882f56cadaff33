package gpu

import (
	"errors"
	"fmt"
)

// Initialization stages reported by InitError.
const (
	StageInstance = "instance"
	StageAdapter  = "adapter"
	StageDevice   = "device"
	StageProvider = "provider"
	StageShader   = "shader"
	StagePipeline = "pipeline"
)

var (
	// ErrNoBackend is returned when neither a host device provider nor an
	// instance factory is configured.
	ErrNoBackend = errors.New("gpu: no device provider or backend configured")

	// ErrNoAdapter is returned when the instance exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrProviderNotHAL is returned when a host device provider does not
	// expose wgpu/hal device and queue objects.
	ErrProviderNotHAL = errors.New("gpu: device provider does not expose HAL types")

	// ErrNotOpened is the InitError cause of a zero Context.
	ErrNotOpened = errors.New("gpu: context not opened")
)

// InitError describes why a Context could not reach the Ready state.
// It is the only error kind produced by this package; it never reaches the
// host application and is kept on the Context for diagnostics.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("gpu: init %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

func initErr(stage string, err error) error {
	return &InitError{Stage: stage, Err: err}
}
