package capture

import "sync"

// Pixel buffers are recycled between ticks. At 100 samples per second even a small
// region would otherwise allocate a fresh slice per tick for the whole session.
// Backends fill a buffer from acquireBuffer; the sampler hands it back with Release
// once classification is done. A frame that is never released is simply collected.

var bufferPool sync.Pool // stores *[]byte

// acquireBuffer returns a slice of exactly n bytes, reusing pooled capacity when
// possible. Contents are unspecified.
func acquireBuffer(n int) []byte {
	if n <= 0 {
		return nil
	}
	if v, ok := bufferPool.Get().(*[]byte); ok && cap(*v) >= n {
		return (*v)[:n]
	}
	return make([]byte, n)
}

// Release returns the frame's pixel buffer to the pool. The frame must not be read
// after Release.
func Release(f Frame) {
	if f.Pix == nil {
		return
	}
	buf := f.Pix[:0]
	bufferPool.Put(&buf)
}
