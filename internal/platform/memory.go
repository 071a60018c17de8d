package platform

import "sync"

// MemoryDevice is a headless Device backed by a plain pixel slice. It is used
// by the headless backend and by tests that inspect what reached the device.
type MemoryDevice struct {
	mu      sync.Mutex
	width   int
	height  int
	pix     []uint32
	flushes int
	sink    InputSink
}

var (
	_ Device      = (*MemoryDevice)(nil)
	_ InputSource = (*MemoryDevice)(nil)
)

// NewMemoryDevice allocates a width x height device cleared to black.
func NewMemoryDevice(width, height int) *MemoryDevice {
	return &MemoryDevice{
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}
}

func (d *MemoryDevice) Width() int          { return d.width }
func (d *MemoryDevice) Height() int         { return d.height }
func (d *MemoryDevice) Pitch() int          { return d.width }
func (d *MemoryDevice) Format() PixelFormat { return FormatXRGB8888 }

// WriteSpan copies px into row y starting at column x, clipping to the device.
func (d *MemoryDevice) WriteSpan(x, y int, px []uint32) {
	if y < 0 || y >= d.height {
		return
	}
	if x < 0 {
		if -x >= len(px) {
			return
		}
		px = px[-x:]
		x = 0
	}
	if x >= d.width {
		return
	}
	if n := d.width - x; len(px) > n {
		px = px[:n]
	}
	d.mu.Lock()
	copy(d.pix[y*d.width+x:], px)
	d.mu.Unlock()
}

// Flush counts presentation requests.
func (d *MemoryDevice) Flush() error {
	d.mu.Lock()
	d.flushes++
	d.mu.Unlock()
	return nil
}

// Pixel returns the device pixel at (x, y), or 0 outside the device.
func (d *MemoryDevice) Pixel(x, y int) uint32 {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pix[y*d.width+x]
}

// Flushes returns how many times Flush was called.
func (d *MemoryDevice) Flushes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flushes
}

// Attach records the sink so tests and scripted input can inject events.
func (d *MemoryDevice) Attach(sink InputSink) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

// Sink returns the attached input sink, if any.
func (d *MemoryDevice) Sink() InputSink {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sink
}
