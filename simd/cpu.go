package simd

import "golang.org/x/sys/cpu"

// HasSSSE3 reports whether the running CPU has the instruction set Slim
// Teddy's 8-bucket nibble search was designed around. The search itself
// runs in pure Go on every platform (see memchr_fallback.go and friends);
// this flag exists so callers outside this package can make the same
// bucket-width tradeoff the original SIMD dispatch made, without needing
// their own cpu.X86 checks.
var HasSSSE3 = cpu.X86.HasSSSE3

// HasAVX2 reports whether the running CPU has the instruction set Fat
// Teddy's 16-bucket search was designed around. See HasSSSE3.
var HasAVX2 = cpu.X86.HasAVX2
