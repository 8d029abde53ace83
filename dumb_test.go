package gbm_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/NeowayLabs/gbm"
)

func TestCreateDumb(t *testing.T) {
	d, conn := newTestDriver(t)
	conn.pitchPad = 28 // kernel aligns the pitch beyond the packed row

	bo, err := d.CreateDumb(100, 50, gbm.FormatXRGB8888)
	require.NoError(t, err)
	require.Len(t, bo.Planes, 1)
	require.Equal(t, gbm.FormatXRGB8888, bo.Format)

	// The kernel-returned pitch and size win over the packed
	// computation (100*4 = 400).
	require.Equal(t, uint32(428), bo.Planes[0].Stride)
	require.Equal(t, uint64(428*50), bo.Planes[0].Size)
	require.Equal(t, uint64(428*50), bo.TotalSize)
	require.Zero(t, bo.Planes[0].Offset)
	require.Equal(t, conn.created[0], bo.Planes[0].Handle)
}

func TestCreateDumbRejectsMultiPlane(t *testing.T) {
	d, conn := newTestDriver(t)

	_, err := d.CreateDumb(4, 4, gbm.FormatNV12)
	require.True(t, errors.Is(err, gbm.ErrUnsupportedFormat))

	_, err = d.CreateDumb(4, 4, gbm.FormatYVU420)
	require.True(t, errors.Is(err, gbm.ErrUnsupportedFormat))

	// No kernel exchange happened.
	require.Empty(t, conn.created)
}

func TestCreateDumbUnknownFormat(t *testing.T) {
	d, conn := newTestDriver(t)

	bo, err := d.CreateDumb(4, 4, gbm.Format(0xdeadbeef))
	require.True(t, errors.Is(err, gbm.ErrUnknownFormat))
	require.Nil(t, bo)
	require.Empty(t, conn.created)
}

func TestCreateDumbKernelFailure(t *testing.T) {
	d, conn := newTestDriver(t)
	conn.createErr = errors.New("ENOMEM")

	bo, err := d.CreateDumb(4, 4, gbm.FormatXRGB8888)
	require.True(t, errors.Is(err, gbm.ErrAllocationFailed))
	require.Nil(t, bo)
}

func TestDestroyDumb(t *testing.T) {
	d, conn := newTestDriver(t)

	bo, err := d.CreateDumb(4, 4, gbm.FormatXRGB8888)
	require.NoError(t, err)
	handle := bo.Planes[0].Handle

	d.Acquire(bo)
	require.NoError(t, d.DestroyDumb(bo))
	require.Equal(t, []uint32{handle}, conn.destroyed)

	// Destroy drops the ref-table entries the buffer owned.
	require.Zero(t, d.RefCount(handle))
}

func TestDestroyDumbKernelFailure(t *testing.T) {
	d, conn := newTestDriver(t)

	bo, err := d.CreateDumb(4, 4, gbm.FormatXRGB8888)
	require.NoError(t, err)
	d.Acquire(bo)

	conn.destroyErr = errors.New("EINVAL")
	err = d.DestroyDumb(bo)
	require.True(t, errors.Is(err, gbm.ErrReleaseFailed))

	// The handle is still live, so its table entry must survive the
	// failed release.
	require.Equal(t, uint32(1), d.RefCount(bo.Planes[0].Handle))
}

func TestMapPlane(t *testing.T) {
	d, _ := newTestDriver(t)

	bo, err := d.CreateDumb(4, 4, gbm.FormatXRGB8888)
	require.NoError(t, err)

	m, err := d.MapPlane(bo, 0)
	require.NoError(t, err)
	require.Equal(t, bo.TotalSize, m.Length)
	require.Len(t, m.Data, int(m.Length))
	require.Equal(t, bo.Planes[0].Handle, m.Handle)
	require.NoError(t, m.Unmap())
}

// Planes sharing a handle share one allocation: mapping either of them
// maps the accumulated size, not just the requested plane's.
func TestMapPlaneSharedHandle(t *testing.T) {
	d, _ := newTestDriver(t)
	bo := boWithHandles(7, 7)

	for plane := range bo.Planes {
		m, err := d.MapPlane(bo, plane)
		require.NoError(t, err)
		require.Equal(t, uint64(24), m.Length, "plane %d", plane)
	}
}

func TestMapPlaneDistinctHandles(t *testing.T) {
	d, _ := newTestDriver(t)
	bo := boWithHandles(7, 8)

	m, err := d.MapPlane(bo, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(8), m.Length)
}

func TestMapPlaneFailure(t *testing.T) {
	d, conn := newTestDriver(t)
	bo := boWithHandles(7)

	conn.mapErr = errors.New("ENODEV")
	_, err := d.MapPlane(bo, 0)
	require.True(t, errors.Is(err, gbm.ErrMapFailed))

	conn.mapErr = nil
	conn.mmapErr = errors.New("EACCES")
	_, err = d.MapPlane(bo, 0)
	require.True(t, errors.Is(err, gbm.ErrMapFailed))
}

// Each distinct handle is closed exactly once, first occurrence wins:
// [h1, h1, h2] issues two closes, in plane order.
func TestReleaseHandlesDeduplicates(t *testing.T) {
	d, conn := newTestDriver(t)
	bo := boWithHandles(1, 1, 2)

	require.NoError(t, d.ReleaseHandles(bo))
	require.Equal(t, []uint32{1, 2}, conn.closed)
}

// A failed close does not stop the remaining handles from being
// closed; the first error is the one reported.
func TestReleaseHandlesBestEffort(t *testing.T) {
	d, conn := newTestDriver(t)
	conn.closeErr = map[uint32]error{1: errors.New("EINVAL")}
	bo := boWithHandles(1, 2, 3)

	err := d.ReleaseHandles(bo)
	require.True(t, errors.Is(err, gbm.ErrReleaseFailed))
	require.Equal(t, []uint32{2, 3}, conn.closed)
}
