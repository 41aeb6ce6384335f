//go:build !nogpu

// Package gpu registers the wgpu-backed hardware scaler for the
// spatial upscale path.
//
// Import this package to let the pipeline delegate upscaling to a GPU
// compute shader. The scaler needs a GPU device from the host; pass a
// device provider (e.g. a gogpu window) via SetDeviceProvider. Until a
// device is available the capability reports unavailable and the
// pipeline keeps the bilinear fallback.
//
// Usage:
//
//	import _ "github.com/gogpu/glide/gpu" // enable the wgpu scaler
//
//	// later, once the host has a device:
//	gpu.SetDeviceProvider(window)
package gpu

import "github.com/gogpu/glide"

func init() {
	if err := glide.RegisterScaler(NewWGPUScaler()); err != nil {
		glide.Logger().Warn("wgpu scaler not available", "err", err)
	}
}

// SetDeviceProvider configures the registered scaler to use a shared GPU
// device from an external provider. The provider should implement
// HalDevice() any and HalQueue() any returning wgpu/hal types.
func SetDeviceProvider(provider any) error {
	return glide.SetScalerDeviceProvider(provider)
}
