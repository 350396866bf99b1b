package types

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
)

// ParseType parses text using a fresh Builder with the default Config
func ParseType(text string) (Type, error) {
	return NewBuilder(DefaultConfig()).ParseType(text)
}

// MustParse is ParseType for type tables known at compile time. It panics on error.
func MustParse(text string) Type {
	t, err := ParseType(text)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseType parses text into a finished Type, reusing the builder's storage.
// On error, the builder is left as it was before the call.
func (b *Builder) ParseType(text string) (Type, error) {
	return b.ParseTypeAt(text, token.NoPos)
}

// ParseTypeAt is ParseType for text found at position at of some source file,
// so that syntax errors point back into that file.
func (b *Builder) ParseTypeAt(text string, at token.Pos) (Type, error) {
	units, depth := b.Len(), b.Depth()
	p := &parser{b: b, text: text, base: at}
	t, err := p.parseTop()
	if err != nil {
		b.restore(units, depth)
		logger.Debug("rejected type", "text", text, "error", err)
		return nil, err
	}
	return t, nil
}

// parser is a recursive descent parser over a Builder.
// Every parse method leaves the reversed encoding of what it parsed on top of the builder.
type parser struct {
	b    *Builder
	text string
	pos  int
	base token.Pos
}

func (p *parser) parseTop() (Type, error) {
	if err := p.b.Mark(); err != nil {
		return nil, err
	}
	if err := p.parseUnion(); err != nil {
		return nil, err
	}
	if p.skipSpace(); p.pos < len(p.text) {
		return nil, p.errorf("unexpected trailing input")
	}
	return p.b.Finish()
}

// parseForward runs parse and flips what it left on the builder into prefix order
func (p *parser) parseForward(parse func() error) error {
	if err := p.b.Mark(); err != nil {
		return err
	}
	if err := parse(); err != nil {
		return err
	}
	p.b.ReverseSinceMark()
	return nil
}

func (p *parser) parseUnion() error {
	if err := p.b.Mark(); err != nil {
		return err
	}
	branches := 0
	for {
		if err := p.parseForward(p.parseIntersection); err != nil {
			return err
		}
		branches++
		if !p.consume("|") {
			break
		}
	}
	p.b.ReverseSinceMark()
	for range branches - 1 {
		if err := p.b.Push(TagOr); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseIntersection() error {
	if err := p.b.Mark(); err != nil {
		return err
	}
	if err := p.parseForward(p.parseUnary); err != nil {
		return err
	}
	if !p.consume("&") {
		p.b.ReverseSinceMark()
		return nil
	}
	if err := p.parseForward(p.parseIntersection); err != nil {
		return err
	}
	p.b.ReverseSinceMark()
	return p.b.Push(TagAnd)
}

func (p *parser) parseUnary() error {
	switch {
	case p.consume("!"):
		// the mark bounds how deeply negations nest
		if err := p.b.Mark(); err != nil {
			return err
		}
		if err := p.parseUnary(); err != nil {
			return err
		}
		p.b.PopMarkDelta()
		return p.b.Push(TagNot)
	case p.consume("("):
		if err := p.parseUnion(); err != nil {
			return err
		}
		if err := p.expect(")"); err != nil {
			return err
		}
	default:
		if err := p.parsePrimary(); err != nil {
			return err
		}
	}
	for p.consume("*") {
		if err := p.b.Push(TagArray); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parsePrimary() error {
	start := p.pos
	word := p.word()
	if word == "" {
		return p.errorf("type expected")
	}
	if '0' <= word[0] && word[0] <= '9' {
		if len(word) != 1 {
			p.pos = start
			return p.errorf("marker must be a single digit")
		}
		return p.parseMarker(Marker(word[0] - '0'))
	}
	switch word {
	case "int":
		return p.b.Push(TagInt)
	case "float":
		return p.b.Push(TagFloat)
	case "string":
		return p.b.Push(TagString)
	case "program":
		return p.b.Push(TagProgram)
	case "void":
		return p.b.Push(TagVoid)
	case "mixed":
		return p.b.Push(TagMixed)
	case "unknown":
		return p.b.Push(TagUnknown)
	case "object":
		return p.parseObject()
	case "array":
		return p.parseContainer(TagArray)
	case "multiset":
		return p.parseContainer(TagMultiset)
	case "mapping":
		return p.parseMapping()
	case "function":
		return p.parseFunction()
	}
	p.pos = start
	return p.errorf("unknown type name '%s'", word)
}

func (p *parser) parseMarker(marker Marker) error {
	if p.consume("=") {
		if err := p.parseUnion(); err != nil {
			return err
		}
		return p.push(TagMarker0+byte(marker), TagAssign)
	}
	return p.b.Push(TagMarker0 + byte(marker))
}

func (p *parser) parseObject() error {
	variance, program := Implements, ProgramID(0)
	if p.consume("(") {
		p.skipSpace()
		start := p.pos
		switch word := p.word(); word {
		case "is":
			variance = Is
		case "implements":
		default:
			p.pos = start
			return p.errorf("expected 'is' or 'implements' but found '%s'", word)
		}
		p.skipSpace()
		start = p.pos
		id, err := strconv.ParseUint(p.word(), 10, 32)
		if err != nil {
			p.pos = start
			return p.errorf("program id expected")
		}
		program = ProgramID(id)
		if err := p.expect(")"); err != nil {
			return err
		}
	}
	if err := p.b.PushProgramID(program); err != nil {
		return err
	}
	return p.push(byte(variance), TagObject)
}

func (p *parser) parseContainer(tag byte) error {
	if !p.consume("(") {
		return p.push(TagMixed, tag)
	}
	if err := p.parseUnion(); err != nil {
		return err
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	return p.b.Push(tag)
}

func (p *parser) parseMapping() error {
	if !p.consume("(") {
		return p.push(TagMixed, TagMixed, TagMapping)
	}
	if err := p.b.Mark(); err != nil {
		return err
	}
	if err := p.parseForward(p.parseUnion); err != nil {
		return err
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	if err := p.parseForward(p.parseUnion); err != nil {
		return err
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	p.b.ReverseSinceMark()
	return p.b.Push(TagMapping)
}

// parseFunction lays out the arguments in prefix order, inserting TagMany
// before the variadic tail, and flips the whole signature once it is complete.
func (p *parser) parseFunction() error {
	if !p.consume("(") {
		return p.push(TagMixed, TagMixed, TagMany, TagFunction)
	}
	if err := p.b.Mark(); err != nil {
		return err
	}
	variadic := false
	for !p.peek(":") {
		if err := p.b.Mark(); err != nil {
			return err
		}
		if err := p.parseUnion(); err != nil {
			return err
		}
		if p.consume("...") {
			variadic = true
			if err := p.b.Push(TagMany); err != nil {
				return err
			}
			p.b.ReverseSinceMark()
			break
		}
		p.b.ReverseSinceMark()
		if !p.consume(",") {
			break
		}
		if p.peek(":") {
			return p.errorf("argument type expected")
		}
	}
	if !variadic {
		if err := p.push(TagMany, TagVoid); err != nil {
			return err
		}
	}
	if err := p.expect(":"); err != nil {
		return err
	}
	if err := p.parseForward(p.parseUnion); err != nil {
		return err
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	p.b.ReverseSinceMark()
	return p.b.Push(TagFunction)
}

func (p *parser) push(units ...byte) error {
	for _, unit := range units {
		if err := p.b.Push(unit); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) && unicode.IsSpace(rune(p.text[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek(s string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.text[p.pos:], s)
}

func (p *parser) consume(s string) bool {
	if p.peek(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if !p.consume(s) {
		return p.errorf("expected '%s'", s)
	}
	return nil
}

// word consumes an identifier or number, returning "" if there is none
func (p *parser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		if c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9') {
			break
		}
		p.pos++
	}
	return p.text[start:p.pos]
}

const fragmentLen = 16

func (p *parser) errorf(format string, args ...any) error {
	p.skipSpace()
	fragment := p.text[p.pos:min(len(p.text), p.pos+fragmentLen)]
	return ilerr.New(ilerr.NewSyntax{
		Positioner: ast.Offset(p.base, p.pos, len(fragment)),
		Offset:     p.pos,
		Fragment:   fragment,
		Message:    fmt.Sprintf(format, args...),
	})
}
