package pgen

import (
	"errors"
	"fmt"
)

// CheckGrammar verifies that a grammar IR is well formed before any
// input is matched against it: the entry rule and every rule
// reference must resolve, and each node's parameters must make sense.
// Violations are usage errors on the caller's side, so they surface
// as plain errors rather than parse failures.
func CheckGrammar(g *GrammarNode) error {
	if g == nil || len(g.Definitions) == 0 {
		return errors.New("grammar has no definitions")
	}
	if _, ok := g.DefsByName[g.Entry]; !ok {
		return fmt.Errorf("entry rule `%s` is not defined", g.Entry)
	}

	var err error
	for _, def := range g.Definitions {
		if def.Expr == nil {
			return fmt.Errorf("rule `%s` has no body", def.Name)
		}
		Inspect(def.Expr, func(n AstNode) bool {
			if err != nil {
				return false
			}
			err = checkNode(g, def.Name, n)
			return err == nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func checkNode(g *GrammarNode, rule string, n AstNode) error {
	switch node := n.(type) {
	case *IdentifierNode:
		if _, ok := g.DefsByName[node.Value]; !ok {
			return fmt.Errorf("rule `%s` references undefined rule `%s`", rule, node.Value)
		}

	case *AnyNode:
		if node.N < 1 {
			return fmt.Errorf("rule `%s` matches any %d characters", rule, node.N)
		}

	case *ClassNode:
		if len(node.Ranges) == 0 && node.Chars == "" {
			return fmt.Errorf("rule `%s` contains an empty character class", rule)
		}
		for _, rg := range node.Ranges {
			if rg.Lo > rg.Hi {
				return fmt.Errorf("rule `%s` contains inverted range %c-%c", rule, rg.Lo, rg.Hi)
			}
		}

	case *SequenceNode:
		if len(node.Items) == 0 {
			return fmt.Errorf("rule `%s` contains an empty sequence", rule)
		}
		for _, item := range node.Items {
			if item == nil {
				return fmt.Errorf("rule `%s` contains a nil node", rule)
			}
		}

	case *ChoiceNode:
		if len(node.Items) == 0 {
			return fmt.Errorf("rule `%s` contains a choice with no alternatives", rule)
		}
		for _, item := range node.Items {
			if item == nil {
				return fmt.Errorf("rule `%s` contains a nil node", rule)
			}
		}

	case *OptionalNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *ZeroOrMoreNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *OneOrMoreNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *AndNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *NotNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *CaptureNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *TableNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}

	case *RepeatNode:
		if node.Expr == nil {
			return fmt.Errorf("rule `%s` contains a nil node", rule)
		}
		if node.Min < 0 {
			return fmt.Errorf("rule `%s` repeats at least %d times", rule, node.Min)
		}
		if node.Max != RepeatUnbounded && node.Max < node.Min {
			return fmt.Errorf("rule `%s` repeats between %d and %d times", rule, node.Min, node.Max)
		}

	case *ConstantNode:
		if node.Value == nil {
			return fmt.Errorf("rule `%s` captures a missing constant", rule)
		}
		if node.Value.Kind() == ValueKind_List {
			return fmt.Errorf("rule `%s` captures a list constant; lists are only built by table captures", rule)
		}
	}
	return nil
}
