package device

import "unsafe"

// AlignedBlock allocates a 2^order byte buffer whose first byte sits on a
// 2^order boundary, as uncached (O_DIRECT) transfers require.
func AlignedBlock(order int) []byte {
	size := 1 << order
	raw := make([]byte, size+size-1)
	off := alignHead(unsafe.Pointer(&raw[0]), size)
	return raw[off : off+size : off+size]
}

func alignHead(p unsafe.Pointer, size int) int {
	rem := int(uintptr(p) & uintptr(size-1))
	if rem == 0 {
		return 0
	}
	return size - rem
}

// IsAligned reports whether buf starts on a 2^order boundary.
func IsAligned(buf []byte, order int) bool {
	if len(buf) == 0 {
		return false
	}
	return uintptr(unsafe.Pointer(&buf[0]))&uintptr(1<<order-1) == 0
}
