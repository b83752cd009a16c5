package pgen

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Outcome is the result of matching one input against a grammar.  It
// is one of Fail, OkNoCaptures or OkValues.
type Outcome interface {
	outcome()
}

// Fail reports that the input didn't match.  Message and Position
// describe the failure that happened furthest into the input;
// Position is one-based.
type Fail struct {
	Message  string
	Position int
}

// OkNoCaptures reports a successful parse during which no values were
// captured.  NextPosition is the one-based index just past the
// consumed input.
type OkNoCaptures struct {
	NextPosition int
}

// OkValues reports a successful parse alongside the values captured
// during it, in push order.
type OkValues struct {
	Values []Value
}

func (Fail) outcome()         {}
func (OkNoCaptures) outcome() {}
func (OkValues) outcome()     {}

// Parser matches inputs against a checked grammar.  It holds no
// per-parse state, so a single Parser can serve concurrent parses.
type Parser struct {
	grammar *GrammarNode
	cfg     *Config
	trace   zerolog.Logger
}

// NewParser checks the grammar IR and returns a Parser ready to match
// inputs against its entry rule.  A nil cfg means defaults.
func NewParser(grammar *GrammarNode, cfg *Config) (*Parser, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := CheckGrammar(grammar); err != nil {
		return nil, err
	}
	return &Parser{
		grammar: grammar,
		cfg:     cfg,
		trace:   zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}, nil
}

// SetTraceLogger replaces the logger used when `eval.trace` is on
func (p *Parser) SetTraceLogger(l zerolog.Logger) { p.trace = l }

// Parse matches input against the grammar's entry rule.  Parse
// failures come back inside the Fail outcome; the error return is
// reserved for conditions that bypass backtracking, like the call
// depth limit.
//
// A successful parse that captured nothing maps to OkNoCaptures with
// the one-based position just past the consumed input; one that
// captured values maps to OkValues with those values in push order.
func (p *Parser) Parse(input []byte) (Outcome, error) {
	in := NewInput(input)
	stack := NewValueStack()
	outcome, err := p.run(in, stack)
	if err != nil || outcome != nil {
		return outcome, err
	}
	if stack.Depth() == 0 {
		return OkNoCaptures{NextPosition: in.Pos() + 1}, nil
	}
	return OkValues{Values: stack.Values()}, nil
}

// ParseString is a shortcut for matching string inputs
func (p *Parser) ParseString(input string) (Outcome, error) {
	return p.Parse([]byte(input))
}

// ParseInto runs the parse pushing captures into the host provided
// sink instead of the engine's own stack.  On success it returns the
// net number of values pushed; reading them back is the host's
// business.  A parse failure comes back as a *ParsingError.
func (p *Parser) ParseInto(input []byte, sink ValueSink) (int, error) {
	in := NewInput(input)
	depth := sink.Depth()
	outcome, err := p.run(in, sink)
	if err != nil {
		return 0, err
	}
	if fail, ok := outcome.(Fail); ok {
		// the host stack must come out of a failed parse untouched;
		// the safety net can reject after the entry rule pushed
		sink.Truncate(depth)
		return 0, &ParsingError{Message: fail.Message, Position: fail.Position}
	}
	return sink.Depth() - depth, nil
}

// run evaluates the entry rule and applies the end-of-input safety
// net.  It returns a nil outcome on success; the caller decides how
// to surface the stack.
func (p *Parser) run(in *Input, sink ValueSink) (Outcome, error) {
	m := newMachine(p.grammar, in, sink, p.cfg, p.trace)
	if err := m.eval(NewIdentifierNode(p.grammar.Entry)); err != nil {
		if !isBacktrack(err) {
			return nil, err
		}
		perr := m.reporter.err()
		return Fail{Message: perr.Message, Position: perr.Position}, nil
	}
	// grammars usually guard their own tail with !.; this is the
	// safety net for the ones that don't
	if p.cfg.GetBool("eval.require_eof") && !in.AtEnd() {
		pos := in.Pos()
		m.reporter.record(pos, fmt.Sprintf("Expected end of input at position %d", pos+1))
		perr := m.reporter.err()
		return Fail{Message: perr.Message, Position: perr.Position}, nil
	}
	return nil, nil
}

// Parse matches input against grammar with the default configuration
func Parse(grammar *GrammarNode, input []byte) (Outcome, error) {
	p, err := NewParser(grammar, nil)
	if err != nil {
		return nil, err
	}
	return p.Parse(input)
}
