package gbm

import "log/slog"

type (
	// DumbInfo is the kernel's response to a dumb-buffer allocation:
	// the new GEM handle plus the pitch and size the kernel actually
	// chose for the buffer.
	DumbInfo struct {
		Handle uint32
		Pitch  uint32
		Size   uint64
	}

	// Conn is the kernel exchange surface the allocation layer runs
	// on. Every call is a single blocking ioctl-style round trip with
	// no internal suspension; a blocked call blocks its caller until
	// the kernel responds. The real implementation wraps an open DRI
	// device node; tests substitute a fake.
	Conn interface {
		// CreateDumb allocates a CPU-visible single-plane buffer.
		CreateDumb(width, height, bpp uint32) (DumbInfo, error)

		// DestroyDumb releases a dumb-buffer allocation.
		DestroyDumb(handle uint32) error

		// MapDumb returns the mmap offset the kernel assigned to a
		// dumb-buffer handle.
		MapDumb(handle uint32) (uint64, error)

		// CloseHandle drops a GEM handle.
		CloseHandle(handle uint32) error

		// Mmap maps length bytes at a kernel-provided offset with
		// read/write access shared with the kernel.
		Mmap(offset, length uint64) ([]byte, error)

		// Munmap releases a mapping returned by Mmap.
		Munmap(data []byte) error

		// Close closes the device connection.
		Close() error
	}

	// Driver is one open device session: the kernel connection plus
	// the table tracking which GEM handles are still referenced by a
	// consumer. It is passed explicitly to every operation so multiple
	// independent sessions can coexist.
	//
	// A Driver is not internally synchronized. Callers operating from
	// multiple goroutines must serialize access to a given Driver.
	Driver struct {
		conn   Conn
		logger *slog.Logger

		// refs maps GEM handle to consumer reference count. Entries
		// never exist with count zero.
		refs map[uint32]uint32
	}
)

// New wraps an open kernel connection in a Driver. A nil logger means
// slog.Default().
func New(conn Conn, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		conn:   conn,
		logger: logger,
		refs:   make(map[uint32]uint32),
	}
}

// Close closes the underlying device connection. Buffers still holding
// kernel handles must be released first.
func (d *Driver) Close() error {
	return d.conn.Close()
}
