// Package riftregex provides a regular-expression engine with pattern
// compilation, match/search, capture-group extraction, and bounded
// backtracking.
//
// The pipeline compiling a pattern runs tokenizer → parser/AST →
// bytecode compiler → backtracking VM (packages token, ast, compiler,
// vm respectively); package bailout caps pathological matches by
// backtrack depth, wall-clock duration, or opcode-dispatch count so a
// runaway pattern returns ErrorKind.LimitExceeded instead of hanging.
//
// Basic usage:
//
//	re, err := riftregex.Compile(`(\w+)@(\w+)\.(\w+)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if m := re.FindStringSubmatch("user@example.com"); m != nil {
//	    fmt.Println(m[1], m[2], m[3]) // user example com
//	}
//
// A compiled *Pattern is safe to use concurrently from multiple
// goroutines: matching allocates a private vm.VM per call, and the
// underlying compiler.Program is immutable once Compile returns.
package riftregex

import (
	"bytes"
	"strconv"
	"sync/atomic"

	"github.com/coregx/riftregex/ast"
	"github.com/coregx/riftregex/bailout"
	"github.com/coregx/riftregex/common"
	"github.com/coregx/riftregex/compiler"
	"github.com/coregx/riftregex/literal"
	"github.com/coregx/riftregex/prefilter"
	"github.com/coregx/riftregex/vm"
)

// Flags controls pattern compilation and execution behavior; see
// common.Flags for the bit layout (part of the serialized bytecode
// format and therefore stable).
type Flags = common.Flags

const (
	CaseInsensitive = common.CaseInsensitive
	Multiline       = common.Multiline
	DotAll          = common.DotAll
	Extended        = common.Extended
	Ungreedy        = common.Ungreedy
	RiftSyntax      = common.RiftSyntax
	ErrorRecovery   = common.ErrorRecovery
	OptimizeSpeed   = common.OptimizeSpeed
	OptimizeSize    = common.OptimizeSize
)

// Error and ErrorKind are the uniform error record every public entry
// point returns on failure; see common.Error for the taxonomy.
type Error = common.Error
type ErrorKind = common.ErrorKind

const (
	ErrSyntax             = common.Syntax
	ErrInvalidEscape      = common.InvalidEscape
	ErrUnexpectedToken    = common.UnexpectedToken
	ErrUnsupportedFeature = common.UnsupportedFeature
	ErrInvalidBytecode    = common.InvalidBytecode
	ErrLimitExceeded      = common.LimitExceeded
)

// globalRegistry is the process-wide bailout.Registry every Pattern
// consults unless the caller installs its own via CompileWithRegistry.
// Mirrors the teacher's single shared Engine-level limiter, but layered
// per spec.md §4.6 instead of flat.
var globalRegistry = bailout.New()

// nextPatternID hands out bailout-registry pattern identities.
var nextPatternID int64

// Pattern is a compiled regular expression: an immutable bytecode
// Program plus the bookkeeping (group names, registry identity, stats)
// the façade needs to run it.
type Pattern struct {
	prog       *compiler.Program
	tree       *ast.AST // nil after Deserialize: no AST to re-derive a Fingerprint from
	source     string
	groupNames []string // index 0 unused, index i is group i's name or ""
	registry   *bailout.Registry
	pid        int64
	stats      vm.Stats

	// prefilter skip-ahead-accelerates findFrom when the pattern has a
	// usable required-prefix literal set; nil if none was extracted (or
	// the Pattern came from Deserialize, which has no AST to extract
	// from). The VM is always the verifier of record: prefilter is never
	// trusted on its own, even when it reports IsComplete, because a
	// capturing group's span still has to come from the VM.
	prefilter prefilter.Prefilter

	// btPool lets every VM this Pattern creates reuse one backtracker
	// (keyed by pid) across calls instead of allocating a fresh frame
	// slice each time; see vm.BacktrackerPool.
	btPool *vm.BacktrackerPool
}

// Compile compiles pattern with no flags set. Syntax follows spec.md's
// grammar (§4.2), a Perl-like dialect with PCRE-style lookaround,
// backreferences, atomic groups, and the opt-in R'...' literal form.
func Compile(pattern string) (*Pattern, error) {
	return CompileFlags(pattern, 0)
}

// CompileFlags compiles pattern under the given Flags.
func CompileFlags(pattern string, flags Flags) (*Pattern, error) {
	tree, err := ast.Parse(pattern, flags)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	prog, err := compiler.Compile(tree, tree.Flags)
	if err != nil {
		return nil, err
	}
	prog.PatternSource = pattern

	return &Pattern{
		prog:       prog,
		tree:       tree,
		source:     pattern,
		groupNames: collectGroupNames(tree),
		registry:   globalRegistry,
		pid:        atomic.AddInt64(&nextPatternID, 1),
		prefilter:  buildPrefilter(tree),
		btPool:     vm.NewBacktrackerPool(),
	}, nil
}

// buildPrefilter extracts the tree's required prefix literals and, if
// they form a usable set, builds a skip-ahead Prefilter from them
// (Memchr/Memmem/Teddy/Aho-Corasick, chosen by prefilter.selectPrefilter
// based on literal count and length). Only prefixes are wired: a
// suffix-literal's found position does not by itself seed a valid VM
// search start the way a prefix-literal's does, so suffixes are left for
// a future ExtractSuffixes-based accelerator instead of folded in here.
func buildPrefilter(tree *ast.AST) prefilter.Prefilter {
	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(tree, tree.Root)
	return prefilter.NewBuilder(prefixes, nil).Build()
}

// MustCompile is Compile, panicking on error; for patterns known valid
// at init time.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic("riftregex: Compile(" + pattern + "): " + err.Error())
	}
	return p
}

// MustCompileFlags is CompileFlags, panicking on error.
func MustCompileFlags(pattern string, flags Flags) *Pattern {
	p, err := CompileFlags(pattern, flags)
	if err != nil {
		panic("riftregex: CompileFlags(" + pattern + "): " + err.Error())
	}
	return p
}

func collectGroupNames(tree *ast.AST) []string {
	names := make([]string, tree.GroupCount+1)
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Kind == ast.NamedGroup && n.GroupIndex < len(names) {
			names[n.GroupIndex] = n.GroupName
		}
	}
	return names
}

// String returns the source text the Pattern was compiled from.
func (p *Pattern) String() string { return p.source }

// NumSubexp returns the number of capturing groups (not counting group 0,
// the overall match).
func (p *Pattern) NumSubexp() int { return p.prog.GroupCount }

// SubexpNames returns each group's name indexed by group number; group 0
// and unnamed groups report "".
func (p *Pattern) SubexpNames() []string {
	return append([]string(nil), p.groupNames...)
}

// Fingerprint returns the compiled pattern's complexity/structure summary
// (ast.Fingerprint). Returns the zero Fingerprint if the Pattern came
// from Deserialize, which carries no AST.
func (p *Pattern) Fingerprint() ast.Fingerprint {
	if p.tree == nil {
		return ast.Fingerprint{}
	}
	return p.tree.Fingerprint()
}

// Stats returns a snapshot of this Pattern's accumulated VM counters
// (steps dispatched, backtracks, bailouts, max depth seen).
func (p *Pattern) Stats() vm.Stats { return p.stats.Snapshot() }

// ResetStats zeros this Pattern's accumulated VM counters.
func (p *Pattern) ResetStats() { p.stats.Reset() }

// SetLimits registers pattern-scoped bailout overrides for this Pattern,
// layered between the registry's global config and any future
// match-scoped config (spec.md §4.6).
func (p *Pattern) SetLimits(cfg bailout.Config) error {
	return p.registry.RegisterPattern(p.pid, cfg)
}

// Serialize renders the compiled bytecode in the RBC1 wire format
// (spec.md §6); round-trips through Deserialize.
func (p *Pattern) Serialize() []byte { return compiler.Serialize(p.prog) }

// Deserialize parses the RBC1 wire format produced by Pattern.Serialize
// back into an executable Pattern. The result has no SubexpNames (the
// wire format does not carry group names) and Fingerprint returns the
// zero value (no AST survives serialization).
func Deserialize(data []byte) (*Pattern, error) {
	prog, err := compiler.Deserialize(data)
	if err != nil {
		return nil, err
	}
	return &Pattern{
		prog:       prog,
		source:     prog.PatternSource,
		groupNames: make([]string, prog.GroupCount+1),
		registry:   globalRegistry,
		pid:        atomic.AddInt64(&nextPatternID, 1),
		btPool:     vm.NewBacktrackerPool(),
	}, nil
}

func (p *Pattern) newVM(input []byte, start int, anchored bool) *vm.VM {
	limits := p.registry.GetEffective(p.pid, 0)
	return vm.New(p.prog, input, vm.Options{
		Start:    start,
		Anchored: anchored,
		Limits:   limits,
		Stats:    &p.stats,
		Pool:     p.btPool,
		Owner:    p.pid,
	})
}

// findFrom returns the leftmost match starting at or after start, or nil
// if none exists (including when the search bailed out).
func (p *Pattern) findFrom(b []byte, start int) *vm.Match {
	if start > len(b) {
		return nil
	}
	if p.prefilter == nil {
		m := p.newVM(b, start, false)
		match, outcome := m.Execute()
		if outcome != vm.Matched {
			return nil
		}
		return match
	}
	return p.findFromPrefiltered(b, start)
}

// findFromPrefiltered skips ahead to each candidate position the
// prefilter reports, verifying with an anchored VM run at that exact
// position before trusting it. A candidate that fails to verify (the
// prefilter's literal participates in no actual match there, or the
// surrounding context the VM checks rules it out) advances the search by
// one byte and retries; it never widens into an unanchored rescan, since
// the prefilter has already told us nothing matches before the next
// candidate.
func (p *Pattern) findFromPrefiltered(b []byte, start int) *vm.Match {
	pos := start
	for {
		cand := p.prefilter.Find(b, pos)
		if cand < 0 {
			return nil
		}
		m := p.newVM(b, cand, true)
		match, outcome := m.Execute()
		if outcome == vm.Matched {
			return match
		}
		if outcome != vm.NoMatch {
			return nil // bailed out: don't keep retrying a pattern that's already over limit
		}
		pos = cand + 1
		if pos > len(b) {
			return nil
		}
	}
}

// Match reports whether b contains any match.
func (p *Pattern) Match(b []byte) bool { return p.findFrom(b, 0) != nil }

// MatchString reports whether s contains any match.
func (p *Pattern) MatchString(s string) bool { return p.Match([]byte(s)) }

// Find returns the leftmost match in b, or nil if none.
func (p *Pattern) Find(b []byte) []byte {
	m := p.findFrom(b, 0)
	if m == nil {
		return nil
	}
	return b[m.Start:m.End]
}

// FindString returns the leftmost match in s, or "" if none.
func (p *Pattern) FindString(s string) string {
	if m := p.Find([]byte(s)); m != nil {
		return string(m)
	}
	return ""
}

// FindIndex returns the [start, end) byte offsets of the leftmost match,
// or nil if none.
func (p *Pattern) FindIndex(b []byte) []int {
	m := p.findFrom(b, 0)
	if m == nil {
		return nil
	}
	return []int{m.Start, m.End}
}

// FindStringIndex is FindIndex for a string input.
func (p *Pattern) FindStringIndex(s string) []int { return p.FindIndex([]byte(s)) }

// FindSubmatch returns the leftmost match and its capture groups;
// result[0] is the whole match, result[i] the i-th group (nil if that
// group did not participate). Returns nil if there is no match.
func (p *Pattern) FindSubmatch(b []byte) [][]byte {
	m := p.findFrom(b, 0)
	if m == nil {
		return nil
	}
	out := make([][]byte, p.prog.GroupCount+1)
	out[0] = b[m.Start:m.End]
	for i := 1; i <= p.prog.GroupCount; i++ {
		if s, e, ok := m.Captures.Get(i); ok {
			out[i] = b[s:e]
		}
	}
	return out
}

// FindStringSubmatch is FindSubmatch for a string input.
func (p *Pattern) FindStringSubmatch(s string) []string {
	groups := p.FindSubmatch([]byte(s))
	if groups == nil {
		return nil
	}
	out := make([]string, len(groups))
	for i, g := range groups {
		if g != nil {
			out[i] = string(g)
		}
	}
	return out
}

// FindSubmatchIndex returns index pairs for the whole match and every
// capture group: result[2i:2i+2] is group i's [start, end), or [-1, -1]
// if it did not participate. Returns nil if there is no match.
func (p *Pattern) FindSubmatchIndex(b []byte) []int {
	m := p.findFrom(b, 0)
	if m == nil {
		return nil
	}
	out := make([]int, 2*(p.prog.GroupCount+1))
	out[0], out[1] = m.Start, m.End
	for i := 1; i <= p.prog.GroupCount; i++ {
		s, e, ok := m.Captures.Get(i)
		if !ok {
			s, e = -1, -1
		}
		out[2*i], out[2*i+1] = s, e
	}
	return out
}

// FindStringSubmatchIndex is FindSubmatchIndex for a string input.
func (p *Pattern) FindStringSubmatchIndex(s string) []int {
	return p.FindSubmatchIndex([]byte(s))
}

// FindAll returns every successive non-overlapping match in b, at most n
// of them (n < 0 means unlimited). Returns nil if there are none.
func (p *Pattern) FindAll(b []byte, n int) [][]byte {
	idx := p.FindAllIndex(b, n)
	if idx == nil {
		return nil
	}
	out := make([][]byte, len(idx))
	for i, loc := range idx {
		out[i] = b[loc[0]:loc[1]]
	}
	return out
}

// FindAllString is FindAll for a string input.
func (p *Pattern) FindAllString(s string, n int) []string {
	all := p.FindAll([]byte(s), n)
	if all == nil {
		return nil
	}
	out := make([]string, len(all))
	for i, m := range all {
		out[i] = string(m)
	}
	return out
}

// FindAllIndex returns the [start, end) offsets of every successive
// non-overlapping match in b, at most n of them (n < 0 means unlimited).
func (p *Pattern) FindAllIndex(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}
	var out [][]int
	pos := 0
	for pos <= len(b) {
		m := p.findFrom(b, pos)
		if m == nil {
			break
		}
		out = append(out, []int{m.Start, m.End})
		if m.End > pos {
			pos = m.End
		} else {
			pos++ // empty match: advance one byte to avoid looping forever
		}
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// FindAllStringIndex is FindAllIndex for a string input.
func (p *Pattern) FindAllStringIndex(s string, n int) [][]int {
	return p.FindAllIndex([]byte(s), n)
}

// Replace returns a copy of src with every non-overlapping match replaced
// by repl, after expanding "$1", "${1}", and "${name}" references to
// that match's capture groups ("$$" is a literal "$").
func (p *Pattern) Replace(src, repl []byte) []byte {
	idx := p.FindAllIndex(src, -1)
	if idx == nil {
		return append([]byte(nil), src...)
	}
	var out bytes.Buffer
	last := 0
	for _, loc := range idx {
		out.Write(src[last:loc[0]])
		p.expandTemplate(&out, repl, src, loc)
		last = loc[1]
	}
	out.Write(src[last:])
	return out.Bytes()
}

// ReplaceString is Replace for string inputs.
func (p *Pattern) ReplaceString(src, repl string) string {
	return string(p.Replace([]byte(src), []byte(repl)))
}

// expandTemplate writes repl to out, substituting group references as
// described by Replace, resolved against the match at src[loc[0]:loc[1]]
// (loc also carries nothing about sub-group spans, so groups are
// re-resolved via a fresh submatch-index lookup anchored at loc[0]).
func (p *Pattern) expandTemplate(out *bytes.Buffer, repl, src []byte, loc []int) {
	groups := p.FindSubmatchIndex(src[loc[0]:loc[1]])
	group := func(i int) []byte {
		if groups == nil || 2*i+1 >= len(groups) || groups[2*i] < 0 {
			return nil
		}
		return src[loc[0]+groups[2*i] : loc[0]+groups[2*i+1]]
	}
	for i := 0; i < len(repl); i++ {
		if repl[i] != '$' || i+1 >= len(repl) {
			out.WriteByte(repl[i])
			continue
		}
		if repl[i+1] == '$' {
			out.WriteByte('$')
			i++
			continue
		}
		if repl[i+1] == '{' {
			end := bytes.IndexByte(repl[i+2:], '}')
			if end < 0 {
				out.WriteByte(repl[i])
				continue
			}
			name := string(repl[i+2 : i+2+end])
			out.Write(group(p.resolveGroupRef(name)))
			i += 2 + end
			continue
		}
		j := i + 1
		for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
			j++
		}
		if j == i+1 {
			out.WriteByte(repl[i])
			continue
		}
		n, _ := strconv.Atoi(string(repl[i+1 : j]))
		out.Write(group(n))
		i = j - 1
	}
}

func (p *Pattern) resolveGroupRef(name string) int {
	if n, err := strconv.Atoi(name); err == nil {
		return n
	}
	for i, gn := range p.groupNames {
		if gn == name {
			return i
		}
	}
	return -1
}

// Split slices s around each match of the pattern, returning the
// substrings between matches (and before the first / after the last).
// At most n results are returned when n > 0; n == 0 returns nil; n < 0
// returns every substring.
func (p *Pattern) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	idx := p.FindAllStringIndex(s, -1)
	if idx == nil {
		return []string{s}
	}
	var out []string
	last := 0
	for _, loc := range idx {
		if n > 0 && len(out) >= n-1 {
			break
		}
		out = append(out, s[last:loc[0]])
		last = loc[1]
	}
	out = append(out, s[last:])
	return out
}
