package pgen

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// marker snapshots the two pieces of state a speculative match can
// disturb: the input cursor and the value stack depth.  Restoring a
// marker is the sole backtracking mechanism; no other code path moves
// the cursor back or truncates the stack (a table capture folding its
// values into one list is the only other way the depth goes down).
type marker struct {
	pos   int
	depth int
}

// machine evaluates a grammar over a single input.  It implements
// AstNodeVisitor: each Visit method matches its node against the
// input, returning nil on success and a backtrack error on failure.
// The contract with callers is the one transactional combinators
// rely on: a failed node either leaves no trace of partial advance
// and partial captures, or delegates the restore to the nearest
// enclosing transactional node.
//
// A machine lives for exactly one parse.  All per-parse state is in
// here, so concurrent parses just use separate machines.
type machine struct {
	grammar  *GrammarNode
	input    *Input
	values   ValueSink
	reporter errorReporter
	depth    int
	maxDepth int
	tracing  bool
	trace    zerolog.Logger
}

func newMachine(g *GrammarNode, in *Input, sink ValueSink, cfg *Config, trace zerolog.Logger) *machine {
	return &machine{
		grammar:  g,
		input:    in,
		values:   sink,
		maxDepth: cfg.GetInt("eval.max_call_depth"),
		tracing:  cfg.GetBool("eval.trace"),
		trace:    trace,
	}
}

func (m *machine) eval(n AstNode) error {
	return n.Accept(m)
}

func (m *machine) save() marker {
	return marker{pos: m.input.Snapshot(), depth: m.values.Depth()}
}

func (m *machine) restore(mk marker) {
	m.input.Restore(mk.pos)
	m.values.Truncate(mk.depth)
}

// fail records a leaf failure with the reporter and returns the
// backtrack error that carries it up to the nearest transactional
// node.
func (m *machine) fail(pos int, message string) error {
	m.reporter.record(pos, message)
	return &backtrackError{pos: pos, message: message}
}

// expected builds the standard leaf failure message.  Positions are
// one-based in messages; a failure at the end of the buffer says so.
func (m *machine) expected(what string) error {
	pos := m.input.Pos()
	msg := fmt.Sprintf("Expected %s at position %d", what, pos+1)
	if m.input.AtEnd() {
		msg += " but reached end of input"
	}
	return m.fail(pos, msg)
}

// ---- Terminals ----

func (m *machine) VisitLiteralNode(n *LiteralNode) error {
	if m.input.MatchLiteral(n.Value) {
		return nil
	}
	return m.expected(fmt.Sprintf("`%s`", n.Value))
}

func (m *machine) VisitClassNode(n *ClassNode) error {
	if m.input.MatchClass(n.Ranges, n.Chars) {
		return nil
	}
	return m.expected(fmt.Sprintf("character in ranges [%s]", classRanges(n)))
}

func classRanges(n *ClassNode) string {
	items := make([]string, 0, len(n.Ranges)+len(n.Chars))
	for _, rg := range n.Ranges {
		items = append(items, fmt.Sprintf("%c-%c", rg.Lo, rg.Hi))
	}
	for i := 0; i < len(n.Chars); i++ {
		items = append(items, string(n.Chars[i]))
	}
	return strings.Join(items, ", ")
}

func (m *machine) VisitAnyNode(n *AnyNode) error {
	if m.input.MatchAny(n.N) {
		return nil
	}
	pos := m.input.Pos()
	msg := fmt.Sprintf("Expected at least %d more characters at position %d", n.N, pos+1)
	return m.fail(pos, msg)
}

// ---- Transactional combinators ----

func (m *machine) VisitSequenceNode(n *SequenceNode) error {
	mk := m.save()
	for _, item := range n.Items {
		if err := m.eval(item); err != nil {
			if isBacktrack(err) {
				m.restore(mk)
			}
			return err
		}
	}
	return nil
}

func (m *machine) VisitChoiceNode(n *ChoiceNode) error {
	var err error
	for _, item := range n.Items {
		mk := m.save()
		if err = m.eval(item); err == nil {
			return nil
		}
		if !isBacktrack(err) {
			return err
		}
		m.restore(mk)
	}
	return err
}

func (m *machine) VisitOptionalNode(n *OptionalNode) error {
	mk := m.save()
	if err := m.eval(n.Expr); err != nil {
		if !isBacktrack(err) {
			return err
		}
		m.restore(mk)
	}
	return nil
}

func (m *machine) VisitZeroOrMoreNode(n *ZeroOrMoreNode) error {
	return m.repeat(n.Expr, 0, RepeatUnbounded)
}

func (m *machine) VisitOneOrMoreNode(n *OneOrMoreNode) error {
	return m.repeat(n.Expr, 1, RepeatUnbounded)
}

func (m *machine) VisitRepeatNode(n *RepeatNode) error {
	return m.repeat(n.Expr, n.Min, n.Max)
}

// repeat is the greedy iteration shared by ZeroOrMore, OneOrMore and
// Repeat.  Each iteration runs under its own marker; the first failed
// iteration is rolled back and ends the loop.  An iteration that
// succeeds without consuming input also ends the loop, but still
// counts toward min, so a nullable expression can't spin forever and
// a OneOrMore over it is satisfied by its single empty match.
func (m *machine) repeat(expr AstNode, min, max int) error {
	outer := m.save()
	count := 0
	for max == RepeatUnbounded || count < max {
		mk := m.save()
		err := m.eval(expr)
		if err != nil {
			if !isBacktrack(err) {
				return err
			}
			m.restore(mk)
			break
		}
		count++
		if m.input.Pos() == mk.pos {
			break
		}
	}
	if count < min {
		pos := m.input.Pos()
		err := m.fail(pos, fmt.Sprintf("Expected %d repetitions at position %d", min, pos+1))
		m.restore(outer)
		return err
	}
	return nil
}

// ---- Predicates ----

func (m *machine) VisitAndNode(n *AndNode) error {
	mk := m.save()
	err := m.eval(n.Expr)
	// the predicate never consumes input nor keeps captures
	m.restore(mk)
	return err
}

func (m *machine) VisitNotNode(n *NotNode) error {
	mk := m.save()
	err := m.eval(n.Expr)
	// like And, restore unconditionally before anything else
	m.restore(mk)
	if err != nil {
		if !isBacktrack(err) {
			return err
		}
		return nil
	}
	pos := m.input.Pos()
	return m.fail(pos, fmt.Sprintf("Negated pattern unexpectedly matched at position %d", pos+1))
}

// ---- Rule invocation ----

func (m *machine) VisitIdentifierNode(n *IdentifierNode) error {
	def, ok := m.grammar.DefsByName[n.Value]
	if !ok {
		return fmt.Errorf("rule `%s` is not defined", n.Value)
	}
	if m.depth >= m.maxDepth {
		return fmt.Errorf("call depth limit of %d exceeded at rule `%s`", m.maxDepth, n.Value)
	}
	m.depth++
	if m.tracing {
		m.trace.Debug().Str("rule", n.Value).Int("pos", m.input.Pos()).Msg("enter")
	}
	start := m.input.Pos()
	err := m.eval(def.Expr)
	if m.tracing {
		if err != nil {
			m.trace.Debug().Str("rule", n.Value).Int("pos", m.input.Pos()).Msg("fail")
		} else {
			m.trace.Debug().
				Str("rule", n.Value).
				Int("start", start).
				Int("end", m.input.Pos()).
				Msg("match")
		}
	}
	m.depth--
	return err
}

func (m *machine) VisitDefinitionNode(n *DefinitionNode) error {
	return m.eval(n.Expr)
}

func (m *machine) VisitGrammarNode(n *GrammarNode) error {
	return m.eval(NewIdentifierNode(n.Entry))
}

// ---- Captures ----

// Capture nodes push exactly once on success and never restore on
// their own; the enclosing transactional node erases whatever they
// and their children pushed when it rolls back.

func (m *machine) VisitCaptureNode(n *CaptureNode) error {
	start := m.input.Pos()
	if err := m.eval(n.Expr); err != nil {
		return err
	}
	m.values.PushBytes(m.input.Slice(start, m.input.Pos()))
	return nil
}

func (m *machine) VisitPositionNode(*PositionNode) error {
	// positions are pushed one-based, matching what the host
	// expects to index with
	m.values.PushInteger(int64(m.input.Pos()) + 1)
	return nil
}

func (m *machine) VisitConstantNode(n *ConstantNode) error {
	return pushConstant(m.values, n.Value)
}

func (m *machine) VisitTableNode(n *TableNode) error {
	depth := m.values.Depth()
	if err := m.eval(n.Expr); err != nil {
		return err
	}
	m.values.BuildList(m.values.Depth() - depth)
	return nil
}

// pushConstant routes a constant value through the typed sink
// operations.  Lists are rejected by CheckGrammar before any parse
// runs, so hitting one here is a usage error.
func pushConstant(sink ValueSink, v Value) error {
	switch c := v.(type) {
	case *IntegerValue:
		sink.PushInteger(c.Value)
	case *FloatValue:
		sink.PushFloat(c.Value)
	case *BooleanValue:
		sink.PushBoolean(c.Value)
	case *NilValue:
		sink.PushNil()
	case *BytesValue:
		sink.PushBytes(c.Value)
	default:
		return fmt.Errorf("constant captures can't produce `%s` values", v.Kind())
	}
	return nil
}
