package gbm

import "github.com/pkg/errors"

// Error taxonomy for the allocation layer. Format errors are caller
// errors and are never retried; kernel errors are surfaced with the
// underlying code and never retried internally. None of them is fatal
// to the process, fatality is a policy decision left to the caller.
var (
	// ErrInvalidFormat reports a format code outside the supported set
	// passed to the layout engine.
	ErrInvalidFormat = errors.New("gbm: invalid format")

	// ErrUnknownFormat reports a format code outside the supported set
	// passed to the bits-per-pixel classifier.
	ErrUnknownFormat = errors.New("gbm: unknown format")

	// ErrUnsupportedFormat reports a multi-plane format passed to an
	// operation that only handles single-plane buffers.
	ErrUnsupportedFormat = errors.New("gbm: unsupported format")

	// ErrAllocationFailed reports a failed DRM_IOCTL_MODE_CREATE_DUMB.
	ErrAllocationFailed = errors.New("gbm: dumb buffer allocation failed")

	// ErrReleaseFailed reports a failed DRM_IOCTL_MODE_DESTROY_DUMB or
	// DRM_IOCTL_GEM_CLOSE.
	ErrReleaseFailed = errors.New("gbm: buffer release failed")

	// ErrMapFailed reports a failed DRM_IOCTL_MODE_MAP_DUMB or mmap.
	ErrMapFailed = errors.New("gbm: buffer mapping failed")
)
