package simd

// IsASCII checks if all bytes in the slice are ASCII (< 0x80).
// Returns true if all bytes have the high bit clear (values 0x00-0x7F).
//
// On every platform this function uses a pure Go implementation with the SWAR
// (SIMD Within A Register) technique, which processes 8 bytes at a time using
// uint64 bitwise operations; there is no assembly path.
//
// Performance characteristics (pure Go SWAR):
//   - Small inputs (< 8 bytes): byte-by-byte comparison
//   - Medium/large inputs: ~10 GB/s throughput (memory bandwidth limited)
//
// See isASCIIGeneric for implementation details.
func IsASCII(data []byte) bool {
	return isASCIIGeneric(data)
}
