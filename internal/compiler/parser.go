package compiler

import (
	"strings"
	"unicode/utf8"

	"github.com/aretw0/turing/pkg/domain"
)

// minFields is the number of tokens a rule line needs:
// state, read symbol, write symbol, direction, next state.
const minFields = 5

// Parser is responsible for converting program text into a RuleSet.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a line-oriented program and returns its rules.
// It stops at the first invalid line with a *domain.ParseError carrying the 1-based line.
func (p *Parser) Parse(text string) (*domain.RuleSet, error) {
	rs := &domain.RuleSet{}

	for i, line := range strings.Split(text, "\n") {
		lineNumber := i + 1

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' })
		if len(fields) < minFields {
			return nil, &domain.ParseError{Message: domain.MsgNotEnoughFields, Line: lineNumber}
		}

		rule, err := parseRule(fields)
		if err != nil {
			err.Line = lineNumber
			return nil, err
		}
		rule.Line = lineNumber

		if err := rs.Add(rule); err != nil {
			return nil, err
		}
	}

	return rs, nil
}

// parseRule builds a rule from the first five fields; extra fields are ignored so that
// trailing comments are allowed.
func parseRule(fields []string) (domain.Rule, *domain.ParseError) {
	current, err := parseSymbol(fields[1])
	if err != nil {
		return domain.Rule{}, err
	}
	next, err := parseSymbol(fields[2])
	if err != nil {
		return domain.Rule{}, err
	}
	dir, dirErr := domain.ParseDirection(fields[3])
	if dirErr != nil {
		return domain.Rule{}, &domain.ParseError{Message: domain.MsgInvalidDir}
	}

	return domain.Rule{
		CurrentState:  fields[0],
		CurrentSymbol: current,
		NewSymbol:     next,
		Direction:     dir,
		NewState:      fields[4],
	}, nil
}

func parseSymbol(token string) (rune, *domain.ParseError) {
	if utf8.RuneCountInString(token) != 1 {
		return 0, &domain.ParseError{Message: domain.MsgInvalidSymbol}
	}
	r, _ := utf8.DecodeRuneInString(token)
	return r, nil
}
