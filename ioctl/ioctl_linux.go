// Package ioctl builds ioctl request codes and issues the requests.
package ioctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Request codes pack a direction, the argument size, a character
// supposedly unique to the driver and a function number:
//
//	bits 31-30  direction (00 none, 01 write, 10 read, 11 read/write)
//	bits 29-16  size of the argument struct
//	bits 15-8   driver character
//	bits 7-0    function number
//
// Most architectures use this generic layout; see
// Documentation/ioctl/ioctl-decoding.txt in the kernel tree for the
// exceptions (powerpc encodes the direction in 3 bits).

const (
	None  = uint8(0x0)
	Write = uint8(0x1)
	Read  = uint8(0x2)
)

// NewCode builds a request code from its fields. A direction or size
// that does not fit the encoding is a programming error and panics.
func NewCode(typ uint8, sz uint16, uniq, fn uint8) uint32 {
	if typ > Write|Read {
		panic(fmt.Errorf("invalid ioctl direction value: %d", typ))
	}
	if sz > 2<<14 {
		panic(fmt.Errorf("invalid ioctl size value: %d", sz))
	}

	var code uint32
	code |= uint32(typ) << 30
	code |= uint32(sz) << 16
	code |= uint32(uniq) << 8
	code |= uint32(fn)
	return code
}

// Do issues one blocking ioctl request and returns the errno, if any.
func Do(fd, cmd, ptr uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, ptr)
	if errno != 0 {
		return errno
	}
	return nil
}
