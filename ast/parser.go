package ast

import (
	"strings"

	"github.com/coregx/riftregex/common"
	"github.com/coregx/riftregex/token"
)

// Parse scans source and builds an AST under the given flags. It never
// panics on malformed input: failures are returned as *common.Error.
func Parse(source string, flags common.Flags) (*AST, error) {
	p := &parser{
		tz:       token.Create(source, flags),
		flags:    flags,
		maxDepth: maxNestingDepth,
	}
	p.advance()

	a := &AST{Flags: flags}
	root, err := p.parseTop(a)
	if err != nil {
		return nil, err
	}
	a.Root = root
	a.GroupCount = p.groupCount
	return a, nil
}

type parser struct {
	tz         *token.Tokenizer
	cur        token.Token
	flags      common.Flags
	groupCount int
	maxDepth   int
}

func (p *parser) advance() { p.cur = p.tz.Next() }

// parseTop handles the optional R'...' wrapper, then the body pattern.
func (p *parser) parseTop(a *AST) (int, error) {
	if p.cur.Kind == token.RiftPrefix {
		return p.parseRiftLiteral(a)
	}

	root, err := p.parseAlternation(a, 0, p.flags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.End {
		return 0, common.NewError(common.UnexpectedToken, p.cur.Pos, "trailing input after pattern")
	}
	return a.push(Node{Kind: Root, Children: []int{root}, Parent: noParent, Flags: p.flags}), nil
}

// parseRiftLiteral handles the R'...'/R"..." wrapper: strip the prefix and
// matching closing quote, fold trailing flag letters into the active
// flags, and parse the inner bytes as an ordinary pattern.
func (p *parser) parseRiftLiteral(a *AST) (int, error) {
	startPos := p.cur.Pos
	if !p.flags.Has(common.RiftSyntax) {
		return 0, common.NewError(common.UnsupportedFeature, startPos, "R'...' literal requires RiftSyntax")
	}
	p.advance() // consume RiftPrefix
	if p.cur.Kind != token.RiftQuoteStart {
		return 0, common.NewError(common.Syntax, p.cur.Pos, "expected opening quote after R")
	}
	p.advance() // consume RiftQuoteStart

	inner, err := p.parseAlternation(a, 0, p.flags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.RiftQuoteEnd {
		return 0, common.NewError(common.Syntax, startPos, "unterminated R'...' literal")
	}
	p.flags |= parseRiftFlagLetters(p.cur.Value)
	a.Flags = p.flags
	p.advance() // consume RiftQuoteEnd

	if p.cur.Kind != token.End {
		return 0, common.NewError(common.UnexpectedToken, p.cur.Pos, "trailing input after R'...' literal")
	}
	return a.push(Node{Kind: Root, Children: []int{inner}, Parent: noParent, Flags: p.flags}), nil
}

func parseRiftFlagLetters(letters string) common.Flags {
	var f common.Flags
	for _, c := range letters {
		switch c {
		case 'i':
			f |= common.CaseInsensitive
		case 'm':
			f |= common.Multiline
		case 's':
			f |= common.DotAll
		case 'x':
			f |= common.Extended
		case 'U':
			f |= common.Ungreedy
		case 'r':
			f |= common.RiftSyntax
		}
	}
	return f
}

// push appends a node to the arena and returns its index, wiring up
// Parent on every listed child.
func (a *AST) push(n Node) int {
	idx := len(a.Nodes)
	a.Nodes = append(a.Nodes, n)
	for _, c := range n.Children {
		a.Nodes[c].Parent = idx
	}
	return idx
}

// AddChild appends a child index to node i's children list and fixes up
// the child's Parent pointer.
func (a *AST) AddChild(i, child int) {
	a.Nodes[i].Children = append(a.Nodes[i].Children, child)
	a.Nodes[child].Parent = i
}

// RemoveChild removes the child at position pos in node i's children
// list. The orphaned subtree's nodes remain in the arena (unreachable,
// reclaimed only by discarding the whole AST) since arena indices must
// stay stable for every other node's references.
func (a *AST) RemoveChild(i, pos int) {
	ch := a.Nodes[i].Children
	a.Nodes[i].Children = append(ch[:pos], ch[pos+1:]...)
}

func (p *parser) fail(code common.ErrorKind, pos int, msg string) error {
	return common.NewError(code, pos, msg)
}

func (p *parser) checkDepth(depth int, pos int) error {
	if depth > p.maxDepth {
		return p.fail(common.Syntax, pos, "max nesting depth exceeded")
	}
	return nil
}

// parseAlternation := concatenation ('|' concatenation)*
func (p *parser) parseAlternation(a *AST, depth int, flags common.Flags) (int, error) {
	first, err := p.parseConcatenation(a, depth, flags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.Pipe {
		return first, nil
	}
	children := []int{first}
	for p.cur.Kind == token.Pipe {
		p.advance()
		next, err := p.parseConcatenation(a, depth, flags)
		if err != nil {
			return 0, err
		}
		children = append(children, next)
	}
	return a.push(Node{Kind: Alternation, Children: children, Flags: flags}), nil
}

// concatenationEnd reports whether the current token ends a concatenation
// (and thus the enclosing alternation branch).
func (p *parser) concatenationEnd() bool {
	switch p.cur.Kind {
	case token.End, token.Pipe, token.RParen, token.RiftQuoteEnd:
		return true
	}
	return false
}

// parseConcatenation := repetition* , with inline "(?flags)" modifiers
// folding their flags into everything parsed after them in this scope.
func (p *parser) parseConcatenation(a *AST, depth int, flags common.Flags) (int, error) {
	var children []int
	for !p.concatenationEnd() {
		if p.cur.Kind == token.Option && !strings.HasSuffix(p.cur.Value, ":") {
			bits := parseFlagLetters(p.cur.Value)
			p.advance()
			newFlags := flags | bits
			rest, err := p.parseConcatenation(a, depth, newFlags)
			if err != nil {
				return 0, err
			}
			children = append(children, a.push(Node{Kind: Option, Flags: bits, Children: []int{rest}}))
			return a.push(Node{Kind: Concatenation, Children: children, Flags: flags}), nil
		}
		atom, err := p.parseRepetition(a, depth, flags)
		if err != nil {
			return 0, err
		}
		children = append(children, atom)
	}
	return a.push(Node{Kind: Concatenation, Children: children, Flags: flags}), nil
}

func parseFlagLetters(letters string) common.Flags {
	letters = strings.TrimSuffix(letters, ":")
	var f common.Flags
	for _, c := range letters {
		switch c {
		case 'i':
			f |= common.CaseInsensitive
		case 'm':
			f |= common.Multiline
		case 's':
			f |= common.DotAll
		case 'x':
			f |= common.Extended
		case 'U':
			f |= common.Ungreedy
		case 'r':
			f |= common.RiftSyntax
		}
	}
	return f
}

func isQuantifierStart(k token.Kind) bool {
	switch k {
	case token.Star, token.Plus, token.Question, token.LBrace:
		return true
	}
	return false
}

// parseRepetition := atom quantifier?
func (p *parser) parseRepetition(a *AST, depth int, flags common.Flags) (int, error) {
	atomPos := p.cur.Pos
	atom, err := p.parseAtom(a, depth, flags)
	if err != nil {
		return 0, err
	}
	if !isQuantifierStart(p.cur.Kind) {
		return atom, nil
	}

	min, max, err := p.parseQuantifierBody()
	if err != nil {
		return 0, err
	}
	greedy := !flags.Has(common.Ungreedy)
	if p.cur.Kind == token.Question {
		greedy = !greedy
		p.advance()
	}
	q := a.push(Node{Kind: Quantifier, Children: []int{atom}, Min: min, Max: max, Greedy: greedy, Flags: flags})

	if isQuantifierStart(p.cur.Kind) {
		return 0, p.fail(common.Syntax, p.cur.Pos, "repeated quantifier")
	}
	_ = atomPos
	return q, nil
}

func (p *parser) parseQuantifierBody() (min, max int, err error) {
	switch p.cur.Kind {
	case token.Star:
		p.advance()
		return 0, -1, nil
	case token.Plus:
		p.advance()
		return 1, -1, nil
	case token.Question:
		p.advance()
		return 0, 1, nil
	case token.LBrace:
		body := p.cur.Value
		pos := p.cur.Pos
		p.advance()
		return parseBraceBody(body, pos)
	}
	return 0, 0, p.fail(common.Internal, p.cur.Pos, "not a quantifier start")
}

func parseBraceBody(body string, pos int) (min, max int, err error) {
	comma := strings.IndexByte(body, ',')
	if comma < 0 {
		n, ok := parseUint(body)
		if !ok {
			return 0, 0, common.NewError(common.Syntax, pos, "invalid quantifier bound")
		}
		return n, n, nil
	}
	lo := body[:comma]
	hi := body[comma+1:]
	min, ok := parseUint(lo)
	if !ok {
		return 0, 0, common.NewError(common.Syntax, pos, "invalid quantifier lower bound")
	}
	if hi == "" {
		return min, -1, nil
	}
	max, ok = parseUint(hi)
	if !ok {
		return 0, 0, common.NewError(common.Syntax, pos, "invalid quantifier upper bound")
	}
	if min > max {
		return 0, 0, common.NewError(common.Syntax, pos, "quantifier min exceeds max")
	}
	return min, max, nil
}

// parseAtom := literal | '.' | anchor | char_class | group | backref | escape
func (p *parser) parseAtom(a *AST, depth int, flags common.Flags) (int, error) {
	if err := p.checkDepth(depth, p.cur.Pos); err != nil {
		return 0, err
	}

	tok := p.cur
	switch tok.Kind {
	case token.Literal:
		p.advance()
		return a.push(Node{Kind: Literal, Value: tok.Value, Flags: flags}), nil
	case token.Comma:
		// Brace bodies are tokenized whole, so a standalone ',' is a literal.
		p.advance()
		return a.push(Node{Kind: Literal, Value: ",", Flags: flags}), nil
	case token.Dot:
		p.advance()
		return a.push(Node{Kind: Dot, Flags: flags}), nil
	case token.Caret:
		p.advance()
		return a.push(Node{Kind: Anchor, Value: "^", Flags: flags}), nil
	case token.Dollar:
		p.advance()
		return a.push(Node{Kind: Anchor, Value: "$", Flags: flags}), nil
	case token.WordBoundary:
		p.advance()
		return a.push(Node{Kind: Anchor, Value: `\b`, Flags: flags}), nil
	case token.NotWordBoundary:
		p.advance()
		return a.push(Node{Kind: Anchor, Value: `\B`, Flags: flags}), nil
	case token.StartOfInput:
		p.advance()
		return a.push(Node{Kind: Anchor, Value: `\A`, Flags: flags}), nil
	case token.EndOfInput:
		p.advance()
		return a.push(Node{Kind: Anchor, Value: `\Z`, Flags: flags}), nil
	case token.BackrefReset:
		p.advance()
		return a.push(Node{Kind: BackrefReset, Flags: flags}), nil
	case token.CharClass:
		p.advance()
		return a.push(Node{Kind: CharacterClass, Value: tok.Value, Flags: flags}), nil
	case token.Comment:
		p.advance()
		return a.push(Node{Kind: Comment, Value: tok.Value, Flags: flags}), nil
	case token.Backreference:
		p.advance()
		return a.push(Node{Kind: Backreference, Value: tok.Value, Flags: flags}), nil
	case token.EscapeSequence:
		p.advance()
		return p.pushEscape(a, tok, flags)
	case token.LParen:
		return p.parseCapturingGroup(a, depth, flags)
	case token.NonCapturing:
		return p.parseSimpleGroup(a, depth, flags, NonCapturingGroup, tok.Pos)
	case token.Lookahead:
		return p.parseSimpleGroup(a, depth, flags, Lookahead, tok.Pos)
	case token.NegLookahead:
		return p.parseSimpleGroup(a, depth, flags, NegativeLookahead, tok.Pos)
	case token.Lookbehind:
		return p.parseSimpleGroup(a, depth, flags, Lookbehind, tok.Pos)
	case token.NegLookbehind:
		return p.parseSimpleGroup(a, depth, flags, NegativeLookbehind, tok.Pos)
	case token.AtomicGroup:
		return p.parseSimpleGroup(a, depth, flags, AtomicGroup, tok.Pos)
	case token.NamedGroup:
		return p.parseNamedGroup(a, depth, flags, tok)
	case token.Option:
		return p.parseScopedOption(a, depth, flags, tok)
	case token.Error:
		return 0, p.fail(errorTokenKind(tok.Value), tok.Pos, tok.Value)
	}
	return 0, p.fail(common.UnexpectedToken, tok.Pos, "unexpected token "+tok.Kind.String())
}

// errorTokenKind classifies a token.Error token's message: unterminated
// brackets, groups, and comments are Syntax errors (an opener with no
// matching closer, same family as parseCapturingGroup's "unbalanced
// parenthesis" check below), everything else from the tokenizer's Error
// token is a malformed escape sequence.
func errorTokenKind(msg string) common.ErrorKind {
	switch {
	case strings.Contains(msg, "unterminated character class"),
		strings.Contains(msg, "unterminated comment group"),
		strings.Contains(msg, "unterminated named group"),
		strings.Contains(msg, "malformed group"):
		return common.Syntax
	default:
		return common.InvalidEscape
	}
}

func (p *parser) pushEscape(a *AST, tok token.Token, flags common.Flags) (int, error) {
	val := tok.Value
	switch val {
	case "d", "D", "w", "W", "s", "S":
		return a.push(Node{Kind: CharacterClass, Value: `\` + val, Flags: flags}), nil
	case "n":
		return a.push(Node{Kind: Literal, Value: "\n", Flags: flags}), nil
	case "t":
		return a.push(Node{Kind: Literal, Value: "\t", Flags: flags}), nil
	case "r":
		return a.push(Node{Kind: Literal, Value: "\r", Flags: flags}), nil
	case "f":
		return a.push(Node{Kind: Literal, Value: "\f", Flags: flags}), nil
	case "v":
		return a.push(Node{Kind: Literal, Value: "\v", Flags: flags}), nil
	case "0":
		return a.push(Node{Kind: Literal, Value: "\x00", Flags: flags}), nil
	}
	if strings.HasPrefix(val, "x") {
		b, ok := hexByte(val[1:])
		if !ok {
			return 0, p.fail(common.InvalidEscape, tok.Pos, "invalid \\x escape")
		}
		return a.push(Node{Kind: Literal, Value: string([]byte{b}), Flags: flags}), nil
	}
	return 0, p.fail(common.InvalidEscape, tok.Pos, "unrecognized escape")
}

func hexByte(s string) (byte, bool) {
	var v int
	for _, c := range s {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'f':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int(c-'A') + 10
		default:
			return 0, false
		}
		v = v*16 + d
	}
	return byte(v), true
}

func (p *parser) parseCapturingGroup(a *AST, depth int, flags common.Flags) (int, error) {
	openPos := p.cur.Pos
	p.groupCount++
	idx := p.groupCount
	p.advance()
	body, err := p.parseAlternation(a, depth+1, flags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.RParen {
		return 0, p.fail(common.Syntax, openPos, "unbalanced parenthesis")
	}
	p.advance()
	return a.push(Node{Kind: Group, Children: []int{body}, GroupIndex: idx, Flags: flags}), nil
}

func (p *parser) parseNamedGroup(a *AST, depth int, flags common.Flags, tok token.Token) (int, error) {
	p.groupCount++
	idx := p.groupCount
	p.advance()
	body, err := p.parseAlternation(a, depth+1, flags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.RParen {
		return 0, p.fail(common.Syntax, tok.Pos, "unbalanced parenthesis")
	}
	p.advance()
	return a.push(Node{Kind: NamedGroup, Children: []int{body}, GroupIndex: idx, GroupName: tok.Value, Flags: flags}), nil
}

func (p *parser) parseSimpleGroup(a *AST, depth int, flags common.Flags, kind Kind, openPos int) (int, error) {
	p.advance()
	body, err := p.parseAlternation(a, depth+1, flags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.RParen {
		return 0, p.fail(common.Syntax, openPos, "unbalanced parenthesis")
	}
	p.advance()
	return a.push(Node{Kind: kind, Children: []int{body}, Flags: flags}), nil
}

func (p *parser) parseScopedOption(a *AST, depth int, flags common.Flags, tok token.Token) (int, error) {
	bits := parseFlagLetters(tok.Value)
	p.advance()
	newFlags := flags | bits
	body, err := p.parseAlternation(a, depth+1, newFlags)
	if err != nil {
		return 0, err
	}
	if p.cur.Kind != token.RParen {
		return 0, p.fail(common.Syntax, tok.Pos, "unbalanced parenthesis")
	}
	p.advance()
	return a.push(Node{Kind: Option, Children: []int{body}, Flags: bits}), nil
}
