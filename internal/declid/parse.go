package declid

import (
	"fmt"
	"strconv"
)

// Parse decodes a canonical encoding produced by Id.Encode. Only canonical
// input is accepted, so Parse(s).Encode() == s whenever Parse succeeds.
func Parse(s string) (Id, error) {
	p := &parser{src: s}
	id, err := p.id()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return id, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Id {
	return must(Parse(s))
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) id() (Id, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] == '-' || ('a' <= p.src[p.pos] && p.src[p.pos] <= 'z')) {
		p.pos++
	}
	tag := p.src[start:p.pos]
	kind, ok := ParseKind(tag)
	if !ok {
		p.pos = start
		return nil, p.errorf("unknown id tag %q", tag)
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var (
		id  Id
		err error
	)
	switch kind {
	case KindNamedClass, KindFunction, KindConstant:
		var name string
		if name, err = p.str(); err != nil {
			return nil, err
		}
		switch kind {
		case KindNamedClass:
			id, err = NewNamedClass(name)
		case KindFunction:
			id, err = NewFunction(name)
		default:
			id, err = NewConstant(name)
		}
	case KindAnonymousClass:
		id, err = p.anonymousClass()
	case KindMethod, KindClassConstant, KindProperty:
		id, err = p.classMember(kind)
	case KindParameter:
		id, err = p.parameter()
	}
	if err != nil {
		if _, ok := err.(*SyntaxError); ok {
			return nil, err
		}
		p.pos = start
		return nil, p.errorf("%v", err)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return id, nil
}

func (p *parser) anonymousClass() (Id, error) {
	file, err := p.str()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	line, err := p.int()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	column, err := p.int()
	if err != nil {
		return nil, err
	}
	return NewAnonymousClass(file, line, column)
}

func (p *parser) classMember(kind Kind) (Id, error) {
	ownerAt := p.pos
	owner, err := p.id()
	if err != nil {
		return nil, err
	}
	class, ok := owner.(ClassId)
	if !ok {
		p.pos = ownerAt
		return nil, p.errorf("%s owner must be a class, got %s", kind, owner.Kind())
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	name, err := p.str()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindMethod:
		return NewMethod(class, name)
	case KindClassConstant:
		return NewClassConstant(class, name)
	default:
		return NewProperty(class, name)
	}
}

func (p *parser) parameter() (Id, error) {
	ownerAt := p.pos
	owner, err := p.id()
	if err != nil {
		return nil, err
	}
	function, ok := owner.(FunctionLikeId)
	if !ok {
		p.pos = ownerAt
		return nil, p.errorf("parameter owner must be a function or a method, got %s", owner.Kind())
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	name, err := p.str()
	if err != nil {
		return nil, err
	}
	return NewParameter(function, name)
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) str() (string, error) {
	quoted, err := strconv.QuotedPrefix(p.src[p.pos:])
	if err != nil || quoted[0] != '"' {
		return "", p.errorf("expected quoted string")
	}
	s, err := strconv.Unquote(quoted)
	if err != nil {
		return "", p.errorf("bad quoted string: %v", err)
	}
	if strconv.Quote(s) != quoted {
		return "", p.errorf("non-canonical quoted string %s", quoted)
	}
	p.pos += len(quoted)
	return s, nil
}

func (p *parser) int() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && '0' <= p.src[p.pos] && p.src[p.pos] <= '9' {
		p.pos++
	}
	digits := p.src[start:p.pos]
	n, err := strconv.Atoi(digits)
	if err != nil || strconv.Itoa(n) != digits {
		p.pos = start
		return 0, p.errorf("expected canonical integer")
	}
	return n, nil
}
