// Package common holds the small set of types shared by every layer of the
// regex engine: compilation flags and the uniform error record. Both are
// part of the wire format (flag bit positions are serialized with compiled
// bytecode) so they live in one leaf package with no dependencies on the
// tokenizer, parser, compiler, or VM, letting every one of those packages
// depend on common without risking an import cycle back to the facade.
package common

// Flags controls pattern compilation and execution behavior.
//
// Flags is a bitset; bit positions are part of the serialized bytecode
// format (see compiler.Program, "RBC1") and must never be reordered or
// reused once shipped.
type Flags uint32

const (
	// CaseInsensitive makes literal and class matching ignore ASCII case.
	CaseInsensitive Flags = 1 << iota

	// Multiline makes ^ and $ match at line boundaries (after/before '\n'),
	// not just at the start/end of the whole input.
	Multiline

	// DotAll makes '.' match '\n' as well as every other byte.
	DotAll

	// Extended ignores unescaped whitespace and '#'-to-end-of-line comments
	// in the pattern source, for readable patterns.
	Extended

	// Ungreedy inverts the default greediness of quantifiers: '*', '+', '?'
	// and '{m,n}' become lazy by default, and a trailing '?' on any of them
	// makes that one greedy instead.
	Ungreedy

	// RiftSyntax enables the R'...'/R"..." literal pattern prefix (§6).
	// Without this flag, the prefix is a syntax error (UnsupportedFeature).
	RiftSyntax

	// ErrorRecovery is carried in the flag set and the serialized header;
	// the parser does not read it and aborts on the first error either way.
	ErrorRecovery

	// OptimizeSpeed is carried in the flag set and the serialized header;
	// the compiler does not read it, so emission is the same with or
	// without it.
	OptimizeSpeed

	// OptimizeSize is carried in the flag set and the serialized header;
	// the compiler does not read it, so emission is the same with or
	// without it.
	OptimizeSize
)

// Has reports whether all bits set in want are also set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// String renders the set flags as a short, stable, '|'-joined list of
// names, e.g. "CaseInsensitive|Multiline". Returns "" for the zero value.
func (f Flags) String() string {
	if f == 0 {
		return ""
	}
	names := []struct {
		bit  Flags
		name string
	}{
		{CaseInsensitive, "CaseInsensitive"},
		{Multiline, "Multiline"},
		{DotAll, "DotAll"},
		{Extended, "Extended"},
		{Ungreedy, "Ungreedy"},
		{RiftSyntax, "RiftSyntax"},
		{ErrorRecovery, "ErrorRecovery"},
		{OptimizeSpeed, "OptimizeSpeed"},
		{OptimizeSize, "OptimizeSize"},
	}
	out := ""
	for _, n := range names {
		if f.Has(n.bit) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}
