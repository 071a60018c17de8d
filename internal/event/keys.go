package event

import "sync"

// DefaultKeyRingSize is the capacity of a window's raw keyboard ring.
const DefaultKeyRingSize = 512

// ReleaseBit marks a key-up scan code.
const ReleaseBit = 0x80

// KeyRing buffers raw scan codes for one window.
type KeyRing struct {
	mu    sync.Mutex
	codes []byte
	head  int
	count int
}

// NewKeyRing creates a ring holding up to size scan codes.
func NewKeyRing(size int) *KeyRing {
	if size <= 0 {
		size = DefaultKeyRingSize
	}
	return &KeyRing{codes: make([]byte, size)}
}

// Push appends a scan code and reports false when the ring is full.
func (k *KeyRing) Push(code byte) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.count == len(k.codes) {
		return false
	}
	k.codes[(k.head+k.count)%len(k.codes)] = code
	k.count++
	return true
}

// Take removes and returns every buffered scan code.
func (k *KeyRing) Take() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.count == 0 {
		return nil
	}
	out := make([]byte, k.count)
	for i := range out {
		out[i] = k.codes[(k.head+i)%len(k.codes)]
	}
	k.head, k.count = 0, 0
	return out
}

// Len returns the number of buffered scan codes.
func (k *KeyRing) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.count
}
