package pgen

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digit() AstNode { return NewClassNode([]ByteRange{{Lo: '0', Hi: '9'}}, "") }
func alnum() AstNode {
	return NewClassNode([]ByteRange{
		{Lo: '0', Hi: '9'}, {Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'},
	}, "")
}

func grammar(entry string, defs ...*DefinitionNode) *GrammarNode {
	return NewGrammarNode(defs, entry)
}

func def(name string, items ...AstNode) *DefinitionNode {
	if len(items) == 1 {
		return NewDefinitionNode(name, items[0])
	}
	return NewDefinitionNode(name, NewSequenceNode(items))
}

func TestParse_OutcomeMapping(t *testing.T) {
	t.Run("no captures means the next position", func(t *testing.T) {
		g := grammar("Main", def("Main", NewLiteralNode("abc")))
		outcome, err := Parse(g, []byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, OkNoCaptures{NextPosition: 4}, outcome)
	})

	t.Run("captures come back in push order", func(t *testing.T) {
		g := grammar("Main", def("Main",
			NewCaptureNode(NewLiteralNode("ab")),
			NewPositionNode(),
		))
		outcome, err := Parse(g, []byte("ab"))
		require.NoError(t, err)

		want := OkValues{Values: []Value{NewBytesString("ab"), NewInteger(3)}}
		if diff := cmp.Diff(want, outcome); diff != "" {
			t.Errorf("outcome mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("failures carry the furthest position", func(t *testing.T) {
		g := grammar("Main", def("Main", NewLiteralNode("ab"), NewLiteralNode("cd")))
		outcome, err := Parse(g, []byte("abXX"))
		require.NoError(t, err)
		assert.Equal(t, Fail{Message: "Expected `cd` at position 3", Position: 3}, outcome)
	})

	t.Run("leftover input trips the safety net", func(t *testing.T) {
		g := grammar("Main", def("Main", NewLiteralNode("ab")))
		outcome, err := Parse(g, []byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, Fail{Message: "Expected end of input at position 3", Position: 3}, outcome)
	})

	t.Run("leftover input is fine when the safety net is off", func(t *testing.T) {
		cfg := NewConfig()
		cfg.SetBool("eval.require_eof", false)

		g := grammar("Main", def("Main", NewLiteralNode("ab")))
		p, err := NewParser(g, cfg)
		require.NoError(t, err)

		outcome, err := p.ParseString("abc")
		require.NoError(t, err)
		assert.Equal(t, OkNoCaptures{NextPosition: 3}, outcome)
	})
}

func TestNewParser_UsageErrors(t *testing.T) {
	_, err := NewParser(grammar("Main", def("Main", NewIdentifierNode("Nope"))), nil)
	require.Error(t, err)
	assert.Equal(t, "rule `Main` references undefined rule `Nope`", err.Error())

	_, err = NewParser(nil, nil)
	require.Error(t, err)
}

func TestParse_RunawayRecursion(t *testing.T) {
	g := grammar("Loop", def("Loop", NewIdentifierNode("Loop"), NewLiteralNode("a")))
	_, err := Parse(g, []byte("aaa"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call depth limit")
}

// JSON number: optional minus, integer part, optional fraction,
// optional exponent, all wrapped in a tagged table.
func TestParse_JSONNumber(t *testing.T) {
	g := grammar("Number",
		def("Number",
			NewTableNode(NewSequenceNode([]AstNode{
				NewConstantNode(NewBytesString("number")),
				NewCaptureNode(NewSequenceNode([]AstNode{
					NewOptionalNode(NewLiteralNode("-")),
					NewIdentifierNode("Int"),
					NewOptionalNode(NewSequenceNode([]AstNode{
						NewLiteralNode("."), NewOneOrMoreNode(digit()),
					})),
					NewOptionalNode(NewSequenceNode([]AstNode{
						NewClassNode(nil, "eE"),
						NewOptionalNode(NewClassNode(nil, "+-")),
						NewOneOrMoreNode(digit()),
					})),
				})),
			})),
			NewNotNode(NewAnyNode(1)),
		),
		def("Int", NewChoiceNode([]AstNode{
			NewSequenceNode([]AstNode{
				NewClassNode([]ByteRange{{Lo: '1', Hi: '9'}}, ""),
				NewZeroOrMoreNode(digit()),
			}),
			NewLiteralNode("0"),
		})),
	)

	outcome, err := Parse(g, []byte("-3.14e+2"))
	require.NoError(t, err)

	want := OkValues{Values: []Value{
		NewList([]Value{NewBytesString("number"), NewBytesString("-3.14e+2")}),
	}}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Lookahead(t *testing.T) {
	t.Run("positive predicate does not consume", func(t *testing.T) {
		// "abc" &"def" "def" !.
		g := grammar("Main", def("Main",
			NewLiteralNode("abc"),
			NewAndNode(NewLiteralNode("def")),
			NewLiteralNode("def"),
			NewNotNode(NewAnyNode(1)),
		))
		outcome, err := Parse(g, []byte("abcdef"))
		require.NoError(t, err)
		assert.Equal(t, OkNoCaptures{NextPosition: 7}, outcome)
	})

	t.Run("negative predicate does not consume", func(t *testing.T) {
		// "xyz" &!"def"
		cfg := NewConfig()
		cfg.SetBool("eval.require_eof", false)

		g := grammar("Main", def("Main",
			NewLiteralNode("xyz"),
			NewAndNode(NewNotNode(NewLiteralNode("def"))),
		))
		p, err := NewParser(g, cfg)
		require.NoError(t, err)

		outcome, err := p.ParseString("xyzabc")
		require.NoError(t, err)
		assert.Equal(t, OkNoCaptures{NextPosition: 4}, outcome)
	})
}

// Identifiers paired with their one-based offsets:
// "  foo, bar ,baz" yields {3, "foo"}, {8, "bar"}, {13, "baz"}.
func TestParse_PositionCaptures(t *testing.T) {
	lower := func() AstNode { return NewClassNode([]ByteRange{{Lo: 'a', Hi: 'z'}}, "") }
	sp := func() AstNode { return NewIdentifierNode("Spacing") }

	g := grammar("Main",
		def("Main",
			sp(),
			NewZeroOrMoreNode(NewIdentifierNode("Item")),
			NewNotNode(NewAnyNode(1)),
		),
		def("Item",
			NewTableNode(NewSequenceNode([]AstNode{
				NewPositionNode(),
				NewCaptureNode(NewOneOrMoreNode(lower())),
			})),
			sp(),
			NewOptionalNode(NewSequenceNode([]AstNode{NewLiteralNode(","), sp()})),
		),
		def("Spacing", NewZeroOrMoreNode(NewClassNode(nil, " \t"))),
	)

	outcome, err := Parse(g, []byte("  foo, bar ,baz"))
	require.NoError(t, err)

	want := OkValues{Values: []Value{
		NewList([]Value{NewInteger(3), NewBytesString("foo")}),
		NewList([]Value{NewInteger(8), NewBytesString("bar")}),
		NewList([]Value{NewInteger(13), NewBytesString("baz")}),
	}}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MultipleConstants(t *testing.T) {
	g := grammar("Main", def("Main",
		NewLiteralNode("test"),
		NewConstantNode(NewInteger(42)),
		NewConstantNode(NewBytesString("test_field")),
		NewConstantNode(NewNil()),
		NewConstantNode(NewBoolean(true)),
	))

	outcome, err := Parse(g, []byte("test"))
	require.NoError(t, err)

	want := OkValues{Values: []Value{
		NewInteger(42),
		NewBytesString("test_field"),
		NewNil(),
		NewBoolean(true),
	}}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

// Words separated by spaces, grouped into one table:
// "foo bar 123" yields {"foo", "bar", "123"}.
func TestParse_Range(t *testing.T) {
	g := grammar("Main", def("Main",
		NewTableNode(NewOneOrMoreNode(NewSequenceNode([]AstNode{
			NewCaptureNode(NewOneOrMoreNode(alnum())),
			NewOptionalNode(NewLiteralNode(" ")),
		}))),
		NewNotNode(NewAnyNode(1)),
	))

	outcome, err := Parse(g, []byte("foo bar 123"))
	require.NoError(t, err)

	want := OkValues{Values: []Value{
		NewList([]Value{
			NewBytesString("foo"), NewBytesString("bar"), NewBytesString("123"),
		}),
	}}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

// hostSink is a stand-in for a host runtime's value stack
type hostSink struct {
	items []Value
}

func (s *hostSink) PushInteger(v int64) { s.items = append(s.items, NewInteger(v)) }
func (s *hostSink) PushFloat(v float64) { s.items = append(s.items, NewFloat(v)) }
func (s *hostSink) PushBoolean(v bool)  { s.items = append(s.items, NewBoolean(v)) }
func (s *hostSink) PushNil()            { s.items = append(s.items, NewNil()) }
func (s *hostSink) PushBytes(v []byte)  { s.items = append(s.items, NewBytes(v)) }
func (s *hostSink) Depth() int          { return len(s.items) }
func (s *hostSink) Truncate(depth int)  { s.items = s.items[:depth] }

func (s *hostSink) BuildList(k int) {
	at := len(s.items) - k
	items := make([]Value, k)
	copy(items, s.items[at:])
	s.items = append(s.items[:at], NewList(items))
}

func TestParseInto(t *testing.T) {
	g := grammar("Main", def("Main",
		NewLiteralNode("test"),
		NewConstantNode(NewInteger(42)),
		NewConstantNode(NewBoolean(true)),
	))
	p, err := NewParser(g, nil)
	require.NoError(t, err)

	t.Run("captures land on the host stack", func(t *testing.T) {
		sink := &hostSink{}
		sink.PushNil() // pre-existing host values stay untouched

		n, err := p.ParseInto([]byte("test"), sink)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Equal(t, 3, sink.Depth())
		assert.True(t, sink.items[1].Equal(NewInteger(42)))
		assert.True(t, sink.items[2].Equal(NewBoolean(true)))
	})

	t.Run("the safety net leaves the host stack untouched", func(t *testing.T) {
		sink := &hostSink{}
		_, err := p.ParseInto([]byte("tests"), sink)
		require.Error(t, err)
		assert.Equal(t, 0, sink.Depth())
	})

	t.Run("failures surface as parsing errors", func(t *testing.T) {
		sink := &hostSink{}
		_, err := p.ParseInto([]byte("toast"), sink)
		require.Error(t, err)

		var perr *ParsingError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "Expected `test` at position 1", perr.Message)
		assert.Equal(t, 1, perr.Position)
		assert.Equal(t, 0, sink.Depth())
	})
}

func TestParser_Trace(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("eval.trace", true)

	g := grammar("Main", def("Main", NewIdentifierNode("A")), def("A", NewLiteralNode("a")))
	p, err := NewParser(g, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	p.SetTraceLogger(zerolog.New(&buf))

	_, err = p.ParseString("a")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"rule":"A"`)
	assert.Contains(t, out, `"message":"enter"`)
	assert.Contains(t, out, `"message":"match"`)
}
