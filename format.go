package gbm

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies a pixel format. The set of formats is closed: every
// function in this package treats values outside it as unknown.
type Format uint32

const (
	FormatC8 Format = iota + 1
	FormatR8
	FormatRG88
	FormatGR88
	FormatRGB332
	FormatBGR233
	FormatXRGB4444
	FormatXBGR4444
	FormatRGBX4444
	FormatBGRX4444
	FormatARGB4444
	FormatABGR4444
	FormatRGBA4444
	FormatBGRA4444
	FormatXRGB1555
	FormatXBGR1555
	FormatRGBX5551
	FormatBGRX5551
	FormatARGB1555
	FormatABGR1555
	FormatRGBA5551
	FormatBGRA5551
	FormatRGB565
	FormatBGR565
	FormatRGB888
	FormatBGR888
	FormatXRGB8888
	FormatXBGR8888
	FormatRGBX8888
	FormatBGRX8888
	FormatARGB8888
	FormatABGR8888
	FormatRGBA8888
	FormatBGRA8888
	FormatXRGB2101010
	FormatXBGR2101010
	FormatRGBX1010102
	FormatBGRX1010102
	FormatARGB2101010
	FormatABGR2101010
	FormatRGBA1010102
	FormatBGRA1010102
	FormatYUYV
	FormatYVYU
	FormatUYVY
	FormatVYUY
	FormatAYUV
	FormatNV12
	FormatYVU420
)

var formatNames = map[Format]string{
	FormatC8:          "C8",
	FormatR8:          "R8",
	FormatRG88:        "RG88",
	FormatGR88:        "GR88",
	FormatRGB332:      "RGB332",
	FormatBGR233:      "BGR233",
	FormatXRGB4444:    "XRGB4444",
	FormatXBGR4444:    "XBGR4444",
	FormatRGBX4444:    "RGBX4444",
	FormatBGRX4444:    "BGRX4444",
	FormatARGB4444:    "ARGB4444",
	FormatABGR4444:    "ABGR4444",
	FormatRGBA4444:    "RGBA4444",
	FormatBGRA4444:    "BGRA4444",
	FormatXRGB1555:    "XRGB1555",
	FormatXBGR1555:    "XBGR1555",
	FormatRGBX5551:    "RGBX5551",
	FormatBGRX5551:    "BGRX5551",
	FormatARGB1555:    "ARGB1555",
	FormatABGR1555:    "ABGR1555",
	FormatRGBA5551:    "RGBA5551",
	FormatBGRA5551:    "BGRA5551",
	FormatRGB565:      "RGB565",
	FormatBGR565:      "BGR565",
	FormatRGB888:      "RGB888",
	FormatBGR888:      "BGR888",
	FormatXRGB8888:    "XRGB8888",
	FormatXBGR8888:    "XBGR8888",
	FormatRGBX8888:    "RGBX8888",
	FormatBGRX8888:    "BGRX8888",
	FormatARGB8888:    "ARGB8888",
	FormatABGR8888:    "ABGR8888",
	FormatRGBA8888:    "RGBA8888",
	FormatBGRA8888:    "BGRA8888",
	FormatXRGB2101010: "XRGB2101010",
	FormatXBGR2101010: "XBGR2101010",
	FormatRGBX1010102: "RGBX1010102",
	FormatBGRX1010102: "BGRX1010102",
	FormatARGB2101010: "ARGB2101010",
	FormatABGR2101010: "ABGR2101010",
	FormatRGBA1010102: "RGBA1010102",
	FormatBGRA1010102: "BGRA1010102",
	FormatYUYV:        "YUYV",
	FormatYVYU:        "YVYU",
	FormatUYVY:        "UYVY",
	FormatVYUY:        "VYUY",
	FormatAYUV:        "AYUV",
	FormatNV12:        "NV12",
	FormatYVU420:      "YVU420",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%#x)", uint32(f))
}

var formatsByName = func() map[string]Format {
	byName := make(map[string]Format, len(formatNames))
	for f, name := range formatNames {
		byName[name] = f
	}
	return byName
}()

// ParseFormat resolves a format name like "XRGB8888" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	if f, ok := formatsByName[strings.ToUpper(s)]; ok {
		return f, nil
	}
	return 0, errors.Wrapf(ErrUnknownFormat, "format name %q", s)
}

// NumPlanes returns the number of planes format is laid out in, or 0 if
// the format is outside the supported set.
func NumPlanes(format Format) int {
	switch format {
	case FormatYVU420:
		return 3
	case FormatNV12:
		return 2
	}
	if _, ok := formatNames[format]; ok {
		return 1
	}
	return 0
}

// BppForPlane returns the bits per sample of one plane of format.
//
// NV12 is laid out with a full-resolution Y plane followed by one plane
// of interleaved Cb/Cr pairs, each pair shared by a 2x2 block of luma
// samples: one chroma sample is 2 bytes wide, so plane 1 reports 16.
// This is a per-plane-index exception, not something derivable from the
// channel layout.
//
// Unknown formats are reported to the log and returned as
// ErrUnknownFormat. A plane index out of range for a known format is a
// contract violation and panics.
func BppForPlane(format Format, plane int) (int, error) {
	num := NumPlanes(format)
	if num == 0 {
		slog.Error("gbm: unknown pixel format", "format", uint32(format))
		return 0, errors.Wrapf(ErrUnknownFormat, "format code %#x", uint32(format))
	}
	if plane < 0 || plane >= num {
		panic(fmt.Sprintf("gbm: plane %d out of range for %v (%d planes)", plane, format, num))
	}

	switch format {
	case FormatC8, FormatR8, FormatRGB332, FormatBGR233, FormatYVU420:
		return 8, nil

	case FormatNV12:
		if plane == 0 {
			return 8, nil
		}
		return 16, nil

	case FormatRG88, FormatGR88,
		FormatXRGB4444, FormatXBGR4444, FormatRGBX4444, FormatBGRX4444,
		FormatARGB4444, FormatABGR4444, FormatRGBA4444, FormatBGRA4444,
		FormatXRGB1555, FormatXBGR1555, FormatRGBX5551, FormatBGRX5551,
		FormatARGB1555, FormatABGR1555, FormatRGBA5551, FormatBGRA5551,
		FormatRGB565, FormatBGR565,
		FormatYUYV, FormatYVYU, FormatUYVY, FormatVYUY:
		return 16, nil

	case FormatRGB888, FormatBGR888:
		return 24, nil
	}

	// Remaining known formats are all 32 bits per pixel.
	return 32, nil
}

// subsample returns the horizontal and vertical chroma subsampling
// factors for one plane; 1,1 for every plane of unsubsampled formats.
func subsample(format Format, plane int) (h, v uint32) {
	switch format {
	case FormatNV12, FormatYVU420:
		if plane > 0 {
			return 2, 2
		}
	}
	return 1, 1
}

// StrideForPlane returns the tightly packed row stride in bytes of one
// plane of a buffer with the given width, or 0 for an unknown format.
// No alignment padding is applied; callers that need aligned rows must
// bake the padding in before sizing.
func StrideForPlane(format Format, width uint32, plane int) uint32 {
	if NumPlanes(format) == 0 {
		return 0
	}
	bpp, err := BppForPlane(format, plane)
	if err != nil {
		return 0
	}
	hsub, _ := subsample(format, plane)
	cols := (width + hsub - 1) / hsub
	return cols * uint32(bpp) / 8
}

// SizeForPlane returns the byte size of one plane given its stride and
// the buffer height, or 0 for an unknown format.
func SizeForPlane(format Format, stride, height uint32, plane int) uint64 {
	if NumPlanes(format) == 0 {
		return 0
	}
	_, vsub := subsample(format, plane)
	rows := (height + vsub - 1) / vsub
	return uint64(stride) * uint64(rows)
}
