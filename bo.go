package gbm

import "github.com/pkg/errors"

type (
	// Plane is one contiguous sub-region of a buffer carrying one
	// channel group (e.g. luma, interleaved chroma). Multiple planes
	// may share the same kernel handle.
	Plane struct {
		// Handle is the opaque GEM handle backing the plane; zero
		// until the buffer is bound to a kernel allocation.
		Handle uint32

		// Stride is the bytes per row, at least the tightly packed
		// minimum, possibly padded by the kernel.
		Stride uint32

		// Size is the byte size of the plane.
		Size uint64

		// Offset is the byte offset of the plane inside the single
		// backing allocation.
		Offset uint64
	}

	// BufferObject is one allocated pixel buffer. It is owned
	// exclusively by its creator until destroyed. The plane count is
	// len(Planes); the slice is populated in one pass together with
	// the geometry, so it can never disagree with it.
	BufferObject struct {
		Format        Format
		Width, Height uint32
		Planes        []Plane

		// TotalSize is the size in bytes of the single backing
		// allocation holding every plane.
		TotalSize uint64
	}
)

// NewLayout computes the per-plane geometry of a buffer of the given
// format and dimensions. Planes are packed contiguously in the order the
// format declares them, with no inter-plane padding: offset 0 for plane
// 0 and offset[i] = offset[i-1] + size[i-1] after that, which keeps the
// whole buffer a single allocation the way semi-planar consumers expect.
// Handles are left zero; binding them to a kernel allocation is the
// allocator's job.
func NewLayout(format Format, width, height uint32) (*BufferObject, error) {
	num := NumPlanes(format)
	if num == 0 {
		return nil, errors.Wrapf(ErrInvalidFormat, "format code %#x", uint32(format))
	}

	bo := &BufferObject{
		Format: format,
		Width:  width,
		Height: height,
		Planes: make([]Plane, num),
	}

	var offset uint64
	for p := 0; p < num; p++ {
		stride := StrideForPlane(format, width, p)
		size := SizeForPlane(format, stride, height, p)
		bo.Planes[p] = Plane{
			Stride: stride,
			Size:   size,
			Offset: offset,
		}
		offset += size
	}
	bo.TotalSize = offset

	return bo, nil
}
