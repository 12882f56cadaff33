package gpu

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// Shader entry points in triangle.wgsl.
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
)

//go:embed shaders/triangle.wgsl
var triangleShaderSource string

// ErrEmptyShader is returned when the shader source is empty.
var ErrEmptyShader = errors.New("gpu: shader source is empty")

// TriangleShaderSource returns the WGSL source compiled into the pipeline.
func TriangleShaderSource() string {
	return triangleShaderSource
}

// validateShader runs the WGSL through naga so that malformed source is
// reported before any device object is created.
func validateShader(source string) error {
	if source == "" {
		return ErrEmptyShader
	}
	spirv, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("compile wgsl: %w", err)
	}
	slogger().Debug("gpu: shader validated", "spirv_bytes", len(spirv))
	return nil
}
