// Package gbm computes the physical memory layout of multi-plane pixel
// buffers and manages the kernel GEM handles that back them, on top of
// the drm/kms subsystem's buffer-object primitives. It is the allocation
// and bookkeeping layer beneath a higher-level buffer API: callers ask
// for a buffer of a given width, height and pixel format, and this
// package decides how each plane is strided, sized and placed inside a
// single contiguous allocation, and tracks which kernel handles are
// still referenced by a consumer.
package gbm
