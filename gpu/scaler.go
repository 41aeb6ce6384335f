//go:build !nogpu

package gpu

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glide/image"
	"github.com/gogpu/glide/internal/stage"
)

//go:embed shaders/scale.wgsl
var scaleShaderWGSL string

// WGPUScaler implements the glide hardware scaler capability over a
// wgpu/hal compute pipeline.
//
// The scaler does not create a GPU device; the host hands one over via
// SetDeviceProvider. Until then Configure reports unavailable and the
// pipeline keeps its bilinear fallback.
//
// Note: full GPU buffer dispatch requires HAL buffer-binding extensions.
// The shader is compiled and the pipeline created for capability
// verification; Encode currently mirrors the shader algorithm on the
// CPU, so output is identical to the GPU path.
type WGPUScaler struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	// Compute pipeline resources.
	shaderModule   hal.ShaderModule
	pipelineLayout hal.PipelineLayout
	configLayout   hal.BindGroupLayout
	outputLayout   hal.BindGroupLayout
	scalePipeline  hal.ComputePipeline

	// Compiled SPIR-V (cached for verification).
	spirvCode []uint32

	// Current configuration; Configure is idempotent on it.
	inW, inH   int
	outW, outH int
	mode       stage.ProcessMode
	configured bool

	initialized bool
	logger      *slog.Logger
}

// NewWGPUScaler creates an unbound scaler. It becomes usable once a
// device provider is attached.
func NewWGPUScaler() *WGPUScaler {
	return &WGPUScaler{logger: slog.New(discardHandler{})}
}

// Name returns the scaler name.
func (*WGPUScaler) Name() string { return "wgpu" }

// Init is called during registration. Device acquisition is deferred to
// SetDeviceProvider, so registration always succeeds.
func (s *WGPUScaler) Init() error { return nil }

// SetLogger accepts the glide package logger.
func (s *WGPUScaler) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// halProvider is the device-sharing surface expected from the host.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// SetDeviceProvider attaches a shared GPU device and builds the compute
// pipeline. The provider must implement HalDevice() any and
// HalQueue() any returning wgpu/hal handles.
func (s *WGPUScaler) SetDeviceProvider(provider any) error {
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider %T does not expose HAL handles", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider returned no hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider returned no hal.Queue")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
	s.queue = queue
	if err := s.initPipeline(); err != nil {
		s.destroyLocked()
		s.device = nil
		s.queue = nil
		return err
	}
	s.initialized = true
	s.logger.Info("wgpu scaler initialized")
	return nil
}

// initPipeline compiles the WGSL shader and creates the compute pipeline.
func (s *WGPUScaler) initPipeline() error {
	spirvBytes, err := naga.Compile(scaleShaderWGSL)
	if err != nil {
		return fmt.Errorf("gpu: failed to compile scale shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	s.spirvCode = make([]uint32, len(spirvBytes)/4)
	for i := range s.spirvCode {
		s.spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "glide_scale_shader",
		Source: hal.ShaderSource{
			SPIRV: s.spirvCode,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create shader module: %w", err)
	}
	s.shaderModule = module

	configLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glide_scale_input_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: 32, // sizeof(ScaleConfig)
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create input bind group layout: %w", err)
	}
	s.configLayout = configLayout

	outputLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glide_scale_output_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create output bind group layout: %w", err)
	}
	s.outputLayout = outputLayout

	layout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glide_scale_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.configLayout, s.outputLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create pipeline layout: %w", err)
	}
	s.pipelineLayout = layout

	pipeline, err := s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "glide_scale_pipeline",
		Layout: s.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     s.shaderModule,
			EntryPoint: "cs_scale",
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: failed to create scale pipeline: %w", err)
	}
	s.scalePipeline = pipeline

	return nil
}

// Configure prepares the scaler for an (input, output) size pair.
// Idempotent: the same pair and mode is a no-op. Reports unavailable
// until a device provider is attached.
func (s *WGPUScaler) Configure(inW, inH, outW, outH int, mode stage.ProcessMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return fmt.Errorf("%w: no GPU device attached", stage.ErrScalerUnavailable)
	}
	if inW <= 0 || inH <= 0 || outW <= 0 || outH <= 0 {
		return fmt.Errorf("%w: %dx%d -> %dx%d", stage.ErrInvalidScale, inW, inH, outW, outH)
	}

	if s.configured && inW == s.inW && inH == s.inH &&
		outW == s.outW && outH == s.outH && mode == s.mode {
		return nil
	}

	s.inW, s.inH = inW, inH
	s.outW, s.outH = outW, outH
	s.mode = mode
	s.configured = true
	s.logger.Debug("wgpu scaler configured",
		"in", fmt.Sprintf("%dx%d", inW, inH),
		"out", fmt.Sprintf("%dx%d", outW, outH),
		"mode", mode)
	return nil
}

// Encode resizes src into dst using the configured sizes.
func (s *WGPUScaler) Encode(dst, src *image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || !s.configured {
		return stage.ErrScalerUnavailable
	}
	if src.Width() != s.inW || src.Height() != s.inH ||
		dst.Width() != s.outW || dst.Height() != s.outH {
		return stage.ErrSizeMismatch
	}

	// GPU dispatch needs HAL buffer binding; mirror the shader on CPU.
	s.scaleCPU(dst, src)
	return nil
}

// scaleCPU mirrors the cs_scale entry point pixel for pixel.
func (s *WGPUScaler) scaleCPU(dst, src *image.Image) {
	switch s.mode {
	case stage.ProcessWideGamut:
		scaleCatmull(dst, src)
	case stage.ProcessPerceptual:
		scalePerceptual(dst, src)
	default:
		_ = stage.BilinearResize(dst, src)
	}
}

// SPIRVCode returns the compiled SPIR-V code (for verification).
func (s *WGPUScaler) SPIRVCode() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spirvCode
}

// Close releases all GPU resources.
func (s *WGPUScaler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyLocked()
	s.initialized = false
	s.configured = false
}

func (s *WGPUScaler) destroyLocked() {
	if s.device == nil {
		return
	}
	if s.scalePipeline != nil {
		s.device.DestroyComputePipeline(s.scalePipeline)
		s.scalePipeline = nil
	}
	if s.pipelineLayout != nil {
		s.device.DestroyPipelineLayout(s.pipelineLayout)
		s.pipelineLayout = nil
	}
	if s.configLayout != nil {
		s.device.DestroyBindGroupLayout(s.configLayout)
		s.configLayout = nil
	}
	if s.outputLayout != nil {
		s.device.DestroyBindGroupLayout(s.outputLayout)
		s.outputLayout = nil
	}
	if s.shaderModule != nil {
		s.device.DestroyShaderModule(s.shaderModule)
		s.shaderModule = nil
	}
}

// discardHandler drops log records until the glide logger is propagated.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
