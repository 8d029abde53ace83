// Command gbm-layout prints the computed plane layout of a pixel
// buffer and can optionally exercise the allocation path on a real DRM
// device.
package main

import (
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/NeowayLabs/gbm"
)

func main() {
	var (
		format = flag.String("format", "XRGB8888", "pixel format name")
		width  = flag.Uint32("width", 1920, "buffer width in pixels")
		height = flag.Uint32("height", 1080, "buffer height in pixels")
		card   = flag.Int("card", -1, "DRI card to allocate on (-1 computes the layout only)")
	)
	flag.Parse()

	f, err := gbm.ParseFormat(*format)
	if err != nil {
		slog.Error("unknown format", "format", *format)
		os.Exit(1)
	}

	bo, err := gbm.NewLayout(f, *width, *height)
	if err != nil {
		slog.Error("cannot compute layout", "error", err)
		os.Exit(1)
	}
	printLayout(bo)

	if *card >= 0 {
		if err := roundTrip(*card, f, *width, *height); err != nil {
			slog.Error("device round trip failed", "card", *card, "error", err)
			os.Exit(1)
		}
	}
}

func printLayout(bo *gbm.BufferObject) {
	fmt.Printf("%v %dx%d: %d plane(s), %d bytes\n",
		bo.Format, bo.Width, bo.Height, len(bo.Planes), bo.TotalSize)
	for p, plane := range bo.Planes {
		fmt.Printf("  plane %d: stride=%d size=%d offset=%d\n",
			p, plane.Stride, plane.Size, plane.Offset)
	}
}

// roundTrip allocates, maps and destroys one dumb buffer, printing the
// pitch and size the kernel actually chose.
func roundTrip(card int, format gbm.Format, width, height uint32) error {
	drv, err := gbm.Open(card, nil)
	if err != nil {
		return err
	}
	defer drv.Close()

	bo, err := drv.CreateDumb(width, height, format)
	if err != nil {
		return err
	}

	m, err := drv.MapPlane(bo, 0)
	if err != nil {
		drv.DestroyDumb(bo)
		return err
	}
	fmt.Printf("kernel: handle=%#x pitch=%d size=%d mapped=%d bytes\n",
		bo.Planes[0].Handle, bo.Planes[0].Stride, bo.TotalSize, m.Length)

	if err := m.Unmap(); err != nil {
		return err
	}
	return drv.DestroyDumb(bo)
}
