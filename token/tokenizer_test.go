package token

import (
	"testing"

	"github.com/coregx/riftregex/common"
)

func collect(tz *Tokenizer) []Token {
	var out []Token
	for {
		tok := tz.Next()
		out = append(out, tok)
		if tok.Kind == End {
			return out
		}
	}
}

func TestTokenizer_Literals(t *testing.T) {
	tz := Create("abc", 0)
	toks := collect(tz)
	want := []Kind{Literal, Literal, Literal, End}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestTokenizer_Metacharacters(t *testing.T) {
	tz := Create("a.b*c+d?|e", 0)
	toks := collect(tz)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{Literal, Dot, Literal, Star, Literal, Plus, Literal, Question, Pipe, Literal, End}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestTokenizer_CharClass(t *testing.T) {
	tz := Create("[^a-z]]", 0)
	tok := tz.Next()
	if tok.Kind != CharClass || tok.Value != "^a-z" {
		t.Fatalf("got %v", tok)
	}
	next := tz.Next()
	if next.Kind != Literal || next.Value != "]" {
		t.Fatalf("got %v", next)
	}
}

func TestTokenizer_CharClassLeadingBracket(t *testing.T) {
	tz := Create("[]a]", 0)
	tok := tz.Next()
	if tok.Kind != CharClass || tok.Value != "]a" {
		t.Fatalf("got %v", tok)
	}
}

func TestTokenizer_Groups(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
		val  string
	}{
		{"(?:a)", NonCapturing, ""},
		{"(?<name>a)", NamedGroup, "name"},
		{"(?=a)", Lookahead, ""},
		{"(?!a)", NegLookahead, ""},
		{"(?<=a)", Lookbehind, ""},
		{"(?<!a)", NegLookbehind, ""},
		{"(?>a)", AtomicGroup, ""},
		{"(?#comment)a", Comment, "comment"},
		{"(?i:a)", Option, "i:"},
	}
	for _, c := range cases {
		tz := Create(c.src, 0)
		tok := tz.Next()
		if tok.Kind != c.kind || tok.Value != c.val {
			t.Errorf("%q: got %v, want kind=%s val=%q", c.src, tok, c.kind, c.val)
		}
	}
}

func TestTokenizer_PlainGroup(t *testing.T) {
	tz := Create("(a)", 0)
	if tok := tz.Next(); tok.Kind != LParen {
		t.Fatalf("got %v", tok)
	}
}

func TestTokenizer_Escapes(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
		val  string
	}{
		{`\d`, EscapeSequence, "d"},
		{`\W`, EscapeSequence, "W"},
		{`\b`, WordBoundary, ""},
		{`\B`, NotWordBoundary, ""},
		{`\A`, StartOfInput, ""},
		{`\Z`, EndOfInput, ""},
		{`\K`, BackrefReset, ""},
		{`\1`, Backreference, "1"},
		{`\12`, Backreference, "12"},
		{`\k<foo>`, Backreference, "foo"},
		{`\.`, Literal, "."},
		{`\x41`, EscapeSequence, "x41"},
	}
	for _, c := range cases {
		tz := Create(c.src, 0)
		tok := tz.Next()
		if tok.Kind != c.kind || tok.Value != c.val {
			t.Errorf("%q: got %v, want kind=%s val=%q", c.src, tok, c.kind, c.val)
		}
	}
}

func TestTokenizer_TrailingBackslashIsError(t *testing.T) {
	tz := Create(`a\`, 0)
	tz.Next() // 'a'
	tok := tz.Next()
	if tok.Kind != Error {
		t.Fatalf("got %v, want Error", tok)
	}
}

func TestTokenizer_Brace(t *testing.T) {
	cases := []struct {
		src string
		val string
	}{
		{"{3}", "3"},
		{"{3,}", "3,"},
		{"{3,5}", "3,5"},
	}
	for _, c := range cases {
		tz := Create(c.src, 0)
		tok := tz.Next()
		if tok.Kind != LBrace || tok.Value != c.val {
			t.Errorf("%q: got %v", c.src, tok)
		}
	}
}

func TestTokenizer_BraceNotQuantifierIsLiteral(t *testing.T) {
	tz := Create("{abc}", 0)
	tok := tz.Next()
	if tok.Kind != Literal || tok.Value != "{" {
		t.Fatalf("got %v", tok)
	}
}

func TestTokenizer_RiftWrapper(t *testing.T) {
	tz := Create(`R'[a-z]'im`, common.RiftSyntax)
	toks := collect(tz)
	if toks[0].Kind != RiftPrefix {
		t.Fatalf("token 0: %v", toks[0])
	}
	if toks[1].Kind != RiftQuoteStart || toks[1].Value != "'" {
		t.Fatalf("token 1: %v", toks[1])
	}
	if toks[2].Kind != CharClass || toks[2].Value != "a-z" {
		t.Fatalf("token 2: %v", toks[2])
	}
	last := toks[len(toks)-2]
	if last.Kind != RiftQuoteEnd || last.Value != "im" {
		t.Fatalf("rift end: %v", last)
	}
	if toks[len(toks)-1].Kind != End {
		t.Fatalf("want trailing End, got %v", toks[len(toks)-1])
	}
}

func TestTokenizer_EndIsIdempotent(t *testing.T) {
	tz := Create("a", 0)
	tz.Next()
	first := tz.Next()
	second := tz.Next()
	if first.Kind != End || second.Kind != End {
		t.Fatalf("got %v, %v", first, second)
	}
}

func TestTokenizer_Peek(t *testing.T) {
	tz := Create("ab", 0)
	peeked := tz.Peek()
	next := tz.Next()
	if peeked != next {
		t.Fatalf("peek %v != next %v", peeked, next)
	}
	second := tz.Next()
	if second.Value != "b" {
		t.Fatalf("got %v", second)
	}
}

func TestTokenizer_Reset(t *testing.T) {
	tz := Create("abc", 0)
	tz.Next()
	tz.Next()
	tz.Reset()
	tok := tz.Next()
	if tok.Value != "a" || tok.Pos != 0 {
		t.Fatalf("got %v after reset", tok)
	}
}
