package correction

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/correction.wgsl
var correctionShaderWGSL string

// ShaderSource returns the WGSL source of the fullscreen correction pass.
// It reads binding 0 as a premultiplied linear texture and binding 1 as a
// Params uniform, and writes drive values.
func ShaderSource() string {
	return correctionShaderWGSL
}

// CompileShader compiles the correction pass to SPIR-V words.
func CompileShader() ([]uint32, error) {
	spirvBytes, err := naga.Compile(correctionShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("correction: compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("correction: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// NewShaderModule compiles the correction pass and creates it on device.
func NewShaderModule(device hal.Device) (hal.ShaderModule, error) {
	code, err := CompileShader()
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "psycolor_correction",
		Source: hal.ShaderSource{
			SPIRV: code,
		},
	})
}
