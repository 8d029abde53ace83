package gbm

import "github.com/pkg/errors"

// MapInfo is one active CPU mapping of a buffer.
type MapInfo struct {
	// Data is the mapped region, read/write, shared with the kernel:
	// stores are visible to other mappers of the same handle.
	Data []byte

	// Length is the mapped byte count, accumulated across every plane
	// sharing the mapped handle.
	Length uint64

	// Handle is the GEM handle the mapping refers to.
	Handle uint32

	conn Conn
}

// Unmap releases the mapping. The MapInfo must not be used afterwards.
func (m *MapInfo) Unmap() error {
	return m.conn.Munmap(m.Data)
}

// CreateDumb allocates a CPU-visible buffer through the dumb-buffer
// interface. Dumb buffers are inherently single-plane, so multi-plane
// formats are rejected with ErrUnsupportedFormat. The pitch and size
// the kernel returns are authoritative; the kernel may pick a wider
// pitch than the packed minimum.
func (d *Driver) CreateDumb(width, height uint32, format Format) (*BufferObject, error) {
	switch n := NumPlanes(format); {
	case n == 0:
		return nil, errors.Wrapf(ErrUnknownFormat, "format code %#x", uint32(format))
	case n != 1:
		return nil, errors.Wrapf(ErrUnsupportedFormat,
			"%v has %d planes, dumb buffers are single-plane", format, n)
	}

	bpp, err := BppForPlane(format, 0)
	if err != nil {
		return nil, err
	}

	info, err := d.conn.CreateDumb(width, height, uint32(bpp))
	if err != nil {
		d.logger.Error("gbm: DRM_IOCTL_MODE_CREATE_DUMB failed",
			"width", width, "height", height, "bpp", bpp, "error", err)
		return nil, errors.Wrapf(ErrAllocationFailed, "%dx%d bpp=%d: %v", width, height, bpp, err)
	}

	return &BufferObject{
		Format: format,
		Width:  width,
		Height: height,
		Planes: []Plane{{
			Handle: info.Handle,
			Stride: info.Pitch,
			Size:   info.Size,
		}},
		TotalSize: info.Size,
	}, nil
}

// DestroyDumb releases a buffer allocated by CreateDumb and drops the
// reference-table entries for every handle the buffer owns. A kernel
// failure is reported with the handle value and not retried; whether it
// is fatal is up to the caller.
func (d *Driver) DestroyDumb(bo *BufferObject) error {
	handle := bo.Planes[0].Handle
	if err := d.conn.DestroyDumb(handle); err != nil {
		d.logger.Error("gbm: DRM_IOCTL_MODE_DESTROY_DUMB failed",
			"handle", handle, "error", err)
		return errors.Wrapf(ErrReleaseFailed, "handle %#x: %v", handle, err)
	}

	// The handles are gone only now; a failed release leaves the
	// table untouched so the buffer stays accounted for.
	for p := range bo.Planes {
		delete(d.refs, bo.Planes[p].Handle)
	}
	return nil
}

// MapPlane maps the plane's backing handle into the caller's address
// space at the offset the kernel assigns. Planes sharing a handle share
// one allocation and must be mapped together, so the mapped length is
// the sum of the sizes of every plane with the same handle, not just
// the requested plane's. Nothing is mapped if either step fails.
func (d *Driver) MapPlane(bo *BufferObject, plane int) (*MapInfo, error) {
	handle := bo.Planes[plane].Handle

	offset, err := d.conn.MapDumb(handle)
	if err != nil {
		d.logger.Error("gbm: DRM_IOCTL_MODE_MAP_DUMB failed",
			"handle", handle, "error", err)
		return nil, errors.Wrapf(ErrMapFailed, "handle %#x: %v", handle, err)
	}

	var length uint64
	for i := range bo.Planes {
		if bo.Planes[i].Handle == handle {
			length += bo.Planes[i].Size
		}
	}

	data, err := d.conn.Mmap(offset, length)
	if err != nil {
		d.logger.Error("gbm: mmap of dumb buffer failed",
			"handle", handle, "offset", offset, "length", length, "error", err)
		return nil, errors.Wrapf(ErrMapFailed, "handle %#x offset %#x: %v", handle, offset, err)
	}

	return &MapInfo{
		Data:   data,
		Length: length,
		Handle: handle,
		conn:   d.conn,
	}, nil
}

// ReleaseHandles closes every distinct GEM handle the buffer owns. A
// plane is skipped when an earlier plane aliases its handle, so each
// handle is closed exactly once even when several planes share it.
// Cleanup is best-effort: a failed close is logged and recorded but the
// remaining handles are still closed; the first error is returned.
func (d *Driver) ReleaseHandles(bo *BufferObject) error {
	var firstErr error
	for plane := range bo.Planes {
		i := 0
		for ; i < plane; i++ {
			if bo.Planes[i].Handle == bo.Planes[plane].Handle {
				break
			}
		}
		// An earlier plane already closed this handle.
		if i != plane {
			continue
		}

		handle := bo.Planes[plane].Handle
		if err := d.conn.CloseHandle(handle); err != nil {
			d.logger.Error("gbm: DRM_IOCTL_GEM_CLOSE failed",
				"handle", handle, "error", err)
			if firstErr == nil {
				firstErr = errors.Wrapf(ErrReleaseFailed, "handle %#x: %v", handle, err)
			}
		}
	}
	return firstErr
}
