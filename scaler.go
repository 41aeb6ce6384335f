package glide

import (
	"errors"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/glide/image"
	"github.com/gogpu/glide/internal/stage"
)

// ErrScalerUnavailable indicates the hardware scaler capability cannot
// serve on the current device. The pipeline falls back to the bilinear
// path for the rest of the session.
var ErrScalerUnavailable = stage.ErrScalerUnavailable

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu window or the overlay compositor) implements
// DeviceHandle and passes it to [SetScalerDeviceProvider], letting the
// hardware scaler share the host's GPU device. glide never creates a
// device of its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// glide-specific name while staying compatible with the gpucontext
// ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// HardwareScaler is the platform upscaler capability.
//
// When registered via RegisterScaler, the pipeline delegates the
// hardware-spatial upscale path to it. Any error from Configure or
// Encode latches the bilinear fallback for the session; the capability
// is probed again on the next engine start or size change.
//
// Implementations are provided by backend packages. Users opt in via
// blank import:
//
//	import _ "github.com/gogpu/glide/gpu" // enables the wgpu scaler
type HardwareScaler interface {
	// Name returns the scaler name (e.g. "wgpu").
	Name() string

	// Init initializes backend resources. Called once during registration.
	Init() error

	// Configure prepares the scaler for an (input, output) size pair.
	// Requesting the same pair and mode as the last call is a no-op.
	// Returns ErrScalerUnavailable when the capability cannot serve.
	Configure(inW, inH, outW, outH int, mode stage.ProcessMode) error

	// Encode resizes src into dst using the configured sizes.
	Encode(dst, src *image.Image) error

	// Close releases backend resources.
	Close()
}

// DeviceProviderAware is an optional interface for scalers that can share
// a GPU device with an external provider. When SetDeviceProvider is
// called, the scaler reuses the provided device instead of creating one.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	scalerMu sync.RWMutex
	scaler   HardwareScaler
)

// RegisterScaler registers a hardware scaler for the spatial upscale path.
//
// Only one scaler can be registered. Subsequent calls replace the
// previous one. The scaler's Init() method is called during registration;
// if it fails, the scaler is not registered and the error is returned.
//
// Typical usage via blank import in backend packages:
//
//	func init() {
//	    glide.RegisterScaler(NewWGPUScaler())
//	}
func RegisterScaler(s HardwareScaler) error {
	if s == nil {
		return errors.New("glide: scaler must not be nil")
	}
	if err := s.Init(); err != nil {
		return err
	}
	propagateLogger(s, Logger())
	scalerMu.Lock()
	old := scaler
	scaler = s
	scalerMu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("hardware scaler registered", "name", s.Name())
	return nil
}

// Scaler returns the currently registered hardware scaler, or nil if none.
func Scaler() HardwareScaler {
	scalerMu.RLock()
	s := scaler
	scalerMu.RUnlock()
	return s
}

// SetScalerDeviceProvider passes a device provider to the registered
// scaler, enabling GPU device sharing. If no scaler is registered or it
// does not support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any
// methods returning wgpu/hal types, or be a [DeviceHandle].
func SetScalerDeviceProvider(provider any) error {
	s := Scaler()
	if s == nil {
		return nil
	}
	if dpa, ok := s.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
