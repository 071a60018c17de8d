//go:build !linux

package platform

import (
	"context"
	"errors"
)

// X11Device is only available on Linux.
type X11Device struct{}

// NewX11Device reports that the X11 backend is unavailable on this platform.
func NewX11Device(display, title string, width, height int) (*X11Device, error) {
	return nil, errors.New("x11 backend is only supported on linux")
}

func (d *X11Device) Width() int                     { return 0 }
func (d *X11Device) Height() int                    { return 0 }
func (d *X11Device) Pitch() int                     { return 0 }
func (d *X11Device) Format() PixelFormat            { return FormatXRGB8888 }
func (d *X11Device) WriteSpan(x, y int, px []uint32) {}
func (d *X11Device) Flush() error                   { return nil }
func (d *X11Device) Attach(sink InputSink)          {}
func (d *X11Device) Run(ctx context.Context) error  { return ErrDeviceClosed }
func (d *X11Device) SetFullscreen(on bool) error    { return ErrDeviceClosed }
func (d *X11Device) Activate() error                { return ErrDeviceClosed }
func (d *X11Device) Close()                         {}
