package hardware

import "errors"

// Errors returned while opening or using a hardware context.
var (
	// ErrBackendNotAvailable is returned by Open when no HAL backend is
	// registered for the requested variant.
	ErrBackendNotAvailable = errors.New("hardware: backend not available")

	// ErrNoAdapter is returned by Open when the backend exposes no adapter.
	ErrNoAdapter = errors.New("hardware: no GPU adapter found")

	// ErrProviderNotHAL is returned by NewFromProvider when the provider
	// does not hand out hal.Device and hal.Queue values.
	ErrProviderNotHAL = errors.New("hardware: device provider does not expose HAL handles")

	// ErrReleased is returned by calls made after Release.
	ErrReleased = errors.New("hardware: context released")
)
