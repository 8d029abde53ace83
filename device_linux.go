package gbm

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"launchpad.net/gommap"

	"github.com/NeowayLabs/gbm/ioctl"
)

const (
	driPath = "/dev/dri"

	// DRM ioctl driver character.
	ioctlBase = 'd'

	// DRM_CAP_DUMB_BUFFER
	capDumbBuffer = 1
)

type (
	sysVersion struct {
		major   int32
		minor   int32
		patch   int32
		namelen int64
		name    uintptr
		datelen int64
		date    uintptr
		desclen int64
		desc    uintptr
	}

	sysCapability struct {
		cap uint64
		val uint64
	}

	sysCreateDumb struct {
		height, width uint32
		bpp           uint32
		flags         uint32

		// returned values
		handle uint32
		pitch  uint32
		size   uint64
	}

	sysMapDumb struct {
		handle uint32 // handle for the object being mapped
		pad    uint32

		// Fake offset to use for the subsequent mmap call.
		// This is a fixed-size type for 32/64 compatibility.
		offset uint64
	}

	sysDestroyDumb struct {
		handle uint32
	}

	sysGEMClose struct {
		handle uint32
		pad    uint32
	}
)

var (
	// DRM_IOWR(0x00, struct drm_version)
	ioctlVersion = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysVersion{})), ioctlBase, 0)

	// DRM_IOW(0x09, struct drm_gem_close)
	ioctlGEMClose = ioctl.NewCode(ioctl.Write,
		uint16(unsafe.Sizeof(sysGEMClose{})), ioctlBase, 0x09)

	// DRM_IOWR(0x0c, struct drm_get_cap)
	ioctlGetCap = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCapability{})), ioctlBase, 0x0c)

	// DRM_IOWR(0xB2, struct drm_mode_create_dumb)
	ioctlModeCreateDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateDumb{})), ioctlBase, 0xB2)

	// DRM_IOWR(0xB3, struct drm_mode_map_dumb)
	ioctlModeMapDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysMapDumb{})), ioctlBase, 0xB3)

	// DRM_IOWR(0xB4, struct drm_mode_destroy_dumb)
	ioctlModeDestroyDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysDestroyDumb{})), ioctlBase, 0xB4)
)

// Open opens /dev/dri/card<n> and wraps it in a Driver. The device must
// support dumb buffers. A nil logger means slog.Default().
func Open(n int, logger *slog.Logger) (*Driver, error) {
	file, err := os.OpenFile(fmt.Sprintf("%s/card%d", driPath, n), os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	conn := &deviceConn{file: file}
	if !conn.hasDumbBuffer() {
		file.Close()
		return nil, errors.Errorf("gbm: card%d does not support dumb buffers", n)
	}

	d := New(conn, logger)
	if v, err := conn.version(); err == nil {
		d.logger.Info("gbm: opened drm device", "card", n, "driver", v.name,
			"version", fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch))
	}
	return d, nil
}

// deviceConn is the Conn implementation over an open DRI device node.
type deviceConn struct {
	file *os.File
}

func (c *deviceConn) CreateDumb(width, height, bpp uint32) (DumbInfo, error) {
	req := sysCreateDumb{height: height, width: width, bpp: bpp}
	err := ioctl.Do(c.file.Fd(), uintptr(ioctlModeCreateDumb),
		uintptr(unsafe.Pointer(&req)))
	if err != nil {
		return DumbInfo{}, err
	}
	return DumbInfo{Handle: req.handle, Pitch: req.pitch, Size: req.size}, nil
}

func (c *deviceConn) DestroyDumb(handle uint32) error {
	req := sysDestroyDumb{handle: handle}
	return ioctl.Do(c.file.Fd(), uintptr(ioctlModeDestroyDumb),
		uintptr(unsafe.Pointer(&req)))
}

func (c *deviceConn) MapDumb(handle uint32) (uint64, error) {
	req := sysMapDumb{handle: handle}
	err := ioctl.Do(c.file.Fd(), uintptr(ioctlModeMapDumb),
		uintptr(unsafe.Pointer(&req)))
	if err != nil {
		return 0, err
	}
	return req.offset, nil
}

func (c *deviceConn) CloseHandle(handle uint32) error {
	req := sysGEMClose{handle: handle}
	return ioctl.Do(c.file.Fd(), uintptr(ioctlGEMClose),
		uintptr(unsafe.Pointer(&req)))
}

func (c *deviceConn) Mmap(offset, length uint64) ([]byte, error) {
	m, err := gommap.MapAt(0, c.file.Fd(), int64(offset), int64(length),
		gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return []byte(m), nil
}

func (c *deviceConn) Munmap(data []byte) error {
	return gommap.MMap(data).UnsafeUnmap()
}

func (c *deviceConn) Close() error {
	return c.file.Close()
}

func (c *deviceConn) hasDumbBuffer() bool {
	req := sysCapability{cap: capDumbBuffer}
	err := ioctl.Do(c.file.Fd(), uintptr(ioctlGetCap),
		uintptr(unsafe.Pointer(&req)))
	if err != nil {
		return false
	}
	return req.val != 0
}

type driverVersion struct {
	major, minor, patch int32
	name                string
}

// version fetches the kernel driver identification for the open log
// line. The first ioctl sizes the name buffer, the second fills it.
func (c *deviceConn) version() (driverVersion, error) {
	v := sysVersion{}
	err := ioctl.Do(c.file.Fd(), uintptr(ioctlVersion),
		uintptr(unsafe.Pointer(&v)))
	if err != nil {
		return driverVersion{}, err
	}

	var name []byte
	if v.namelen > 0 {
		name = make([]byte, v.namelen+1)
		v.name = uintptr(unsafe.Pointer(&name[0]))
	}
	v.datelen, v.desclen = 0, 0
	v.date, v.desc = 0, 0

	err = ioctl.Do(c.file.Fd(), uintptr(ioctlVersion),
		uintptr(unsafe.Pointer(&v)))
	if err != nil {
		return driverVersion{}, err
	}

	return driverVersion{
		major: v.major,
		minor: v.minor,
		patch: v.patch,
		name:  string(bytes.TrimRight(name[:v.namelen], "\x00")),
	}, nil
}
