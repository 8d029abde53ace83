package gbm_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/NeowayLabs/gbm"
)

// fakeConn is a deterministic in-memory kernel exchange. Handles are
// issued sequentially from 1; the pitch is the packed row width plus
// pitchPad, standing in for kernels that align the pitch.
type fakeConn struct {
	nextHandle uint32
	pitchPad   uint32

	created   []uint32
	destroyed []uint32
	closed    []uint32

	createErr  error
	destroyErr error
	mapErr     error
	mmapErr    error
	closeErr   map[uint32]error
}

func (c *fakeConn) CreateDumb(width, height, bpp uint32) (gbm.DumbInfo, error) {
	if c.createErr != nil {
		return gbm.DumbInfo{}, c.createErr
	}
	c.nextHandle++
	pitch := width*bpp/8 + c.pitchPad
	c.created = append(c.created, c.nextHandle)
	return gbm.DumbInfo{
		Handle: c.nextHandle,
		Pitch:  pitch,
		Size:   uint64(pitch) * uint64(height),
	}, nil
}

func (c *fakeConn) DestroyDumb(handle uint32) error {
	if c.destroyErr != nil {
		return c.destroyErr
	}
	c.destroyed = append(c.destroyed, handle)
	return nil
}

func (c *fakeConn) MapDumb(handle uint32) (uint64, error) {
	if c.mapErr != nil {
		return 0, c.mapErr
	}
	return uint64(handle) << 12, nil
}

func (c *fakeConn) CloseHandle(handle uint32) error {
	if err := c.closeErr[handle]; err != nil {
		return err
	}
	c.closed = append(c.closed, handle)
	return nil
}

func (c *fakeConn) Mmap(offset, length uint64) ([]byte, error) {
	if c.mmapErr != nil {
		return nil, c.mmapErr
	}
	return make([]byte, length), nil
}

func (c *fakeConn) Munmap(data []byte) error { return nil }

func (c *fakeConn) Close() error { return nil }

func newTestDriver(t *testing.T) (*gbm.Driver, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gbm.New(conn, logger), conn
}

// boWithHandles builds a bound buffer object whose planes carry the
// given handles, each plane 16 bytes followed by 8 bytes per extra
// plane, packed contiguously.
func boWithHandles(handles ...uint32) *gbm.BufferObject {
	bo := &gbm.BufferObject{
		Format: gbm.FormatNV12,
		Width:  4,
		Height: 4,
	}
	sizes := []uint64{16, 8, 8, 8}
	var offset uint64
	for i, h := range handles {
		bo.Planes = append(bo.Planes, gbm.Plane{
			Handle: h,
			Stride: 4,
			Size:   sizes[i],
			Offset: offset,
		})
		offset += sizes[i]
	}
	bo.TotalSize = offset
	return bo
}
