package sexp

import "fmt"

// Parse a given string into an S-expression, or return an error if the string
// is malformed.
func Parse(s string) (SExp, error) {
	p := &parser{[]rune(s), 0}
	// Parse the input
	sExp, err := p.parse()
	//
	if err != nil {
		return nil, err
	} else if sExp == nil {
		return nil, fmt.Errorf("unexpected end-of-file")
	}
	// Sanity check everything was parsed
	p.skipWhitespace()
	//
	if p.index != len(p.text) {
		return nil, fmt.Errorf("unexpected remainder at offset %d", p.index)
	}

	return sExp, nil
}

// parser represents a parser in the process of parsing a given string into one
// or more S-expressions.
type parser struct {
	// Text being parsed
	text []rune
	// Determine current position within text
	index int
}

func (p *parser) parse() (SExp, error) {
	p.skipWhitespace()
	//
	if p.index == len(p.text) {
		return nil, nil
	}
	//
	switch p.text[p.index] {
	case ')':
		return nil, fmt.Errorf("unexpected end-of-list at offset %d", p.index)
	case '(':
		p.index++
		return p.parseList()
	}
	// Symbol
	return p.parseSymbol(), nil
}

func (p *parser) parseList() (SExp, error) {
	var elements []SExp
	//
	for {
		p.skipWhitespace()
		// Check for end-of-list
		if p.index == len(p.text) {
			return nil, fmt.Errorf("unexpected end-of-file (missing ')')")
		} else if p.text[p.index] == ')' {
			p.index++
			return &List{elements}, nil
		}
		// Parse next element
		element, err := p.parse()
		if err != nil {
			return nil, err
		}
		// Continue around!
		elements = append(elements, element)
	}
}

func (p *parser) parseSymbol() SExp {
	start := p.index
	//
	for p.index < len(p.text) && !isDelimiter(p.text[p.index]) {
		p.index++
	}

	return &Symbol{string(p.text[start:p.index])}
}

func (p *parser) skipWhitespace() {
	for p.index < len(p.text) {
		switch p.text[p.index] {
		case ' ', '\t', '\n', '\r':
			p.index++
		case ';':
			// Comment runs to end-of-line
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		default:
			return
		}
	}
}

func isDelimiter(c rune) bool {
	switch c {
	case '(', ')', ' ', '\t', '\n', '\r', ';':
		return true
	}

	return false
}
