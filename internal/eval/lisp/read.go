package lisp

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/KarimAziev/elisp-eval/internal/eval"
)

// parser turns the text of a single form into a value tree. Segmentation
// has already happened by the time Exec runs, so the parser only needs to
// handle one complete datum.
type parser struct {
	src string
	pos int
}

// Parse reads the first datum from src.
func Parse(src string) (eval.Value, error) {
	p := &parser{src: src}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("empty form")
	}
	return p.parseDatum()
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			p.pos++
		case c == ';':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) parseDatum() (eval.Value, error) {
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of form")
	}
	switch c := p.src[p.pos]; c {
	case '(', '[':
		return p.parseList(c)
	case ')', ']':
		return nil, fmt.Errorf("unexpected %q", c)
	case '"':
		return p.parseString()
	case '?':
		return p.parseChar()
	case '\'':
		p.pos++
		return p.parseWrapped("quote")
	case '`':
		p.pos++
		return p.parseWrapped("backquote")
	case ',':
		p.pos++
		if p.pos < len(p.src) && p.src[p.pos] == '@' {
			p.pos++
			return p.parseWrapped("unquote-splicing")
		}
		return p.parseWrapped("unquote")
	case '#':
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
			p.pos += 2
			return p.parseWrapped("function")
		}
		return p.parseAtom(), nil
	default:
		return p.parseAtom(), nil
	}
}

func (p *parser) parseWrapped(head string) (eval.Value, error) {
	p.skipSpace()
	inner, err := p.parseDatum()
	if err != nil {
		return nil, err
	}
	return List{Symbol(head), inner}, nil
}

func (p *parser) parseList(open byte) (eval.Value, error) {
	close := byte(')')
	if open == '[' {
		close = ']'
	}
	p.pos++
	var items List
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated list")
		}
		if p.src[p.pos] == close {
			p.pos++
			return items, nil
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseString() (eval.Value, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("unterminated string")
			}
			switch esc := p.src[p.pos]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(esc)
			}
			p.pos++
		case '"':
			p.pos++
			return Str(b.String()), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return nil, fmt.Errorf("unterminated string")
}

// parseChar reads a ?c character literal as its integer code, matching
// elisp character semantics.
func (p *parser) parseChar() (eval.Value, error) {
	p.pos++
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unterminated character literal")
	}
	if p.src[p.pos] == '\\' {
		p.pos++
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("unterminated character literal")
		}
		c := p.src[p.pos]
		p.pos++
		switch c {
		case 'n':
			return Integer('\n'), nil
		case 't':
			return Integer('\t'), nil
		case 'r':
			return Integer('\r'), nil
		default:
			return Integer(c), nil
		}
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return Integer(r), nil
}

func (p *parser) parseAtom() eval.Value {
	start := p.pos
loop:
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '(', ')', '[', ']', '"', ';':
			break loop
		default:
			p.pos++
		}
	}
	tok := p.src[start:p.pos]
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Integer(i)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return Float(f)
	}
	return Symbol(tok)
}
