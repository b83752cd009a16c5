package pgen

type AstNodeVisitor interface {
	VisitGrammarNode(*GrammarNode) error
	VisitDefinitionNode(*DefinitionNode) error
	VisitSequenceNode(*SequenceNode) error
	VisitChoiceNode(*ChoiceNode) error
	VisitOptionalNode(*OptionalNode) error
	VisitZeroOrMoreNode(*ZeroOrMoreNode) error
	VisitOneOrMoreNode(*OneOrMoreNode) error
	VisitRepeatNode(*RepeatNode) error
	VisitAndNode(*AndNode) error
	VisitNotNode(*NotNode) error
	VisitLiteralNode(*LiteralNode) error
	VisitClassNode(*ClassNode) error
	VisitAnyNode(*AnyNode) error
	VisitIdentifierNode(*IdentifierNode) error
	VisitCaptureNode(*CaptureNode) error
	VisitPositionNode(*PositionNode) error
	VisitConstantNode(*ConstantNode) error
	VisitTableNode(*TableNode) error
}

// Inspect traverses an IR tree in depth-first order.  It calls the
// function f for each node in the tree.  If f returns true, Inspect
// continues to traverse the node's children; if it returns false,
// Inspect skips the children of the current node.
//
// This is similar to Go's ast.Inspect and allows for simple traversal
// with a single type switch instead of implementing a full visitor
// pattern.
//
// Example usage:
//
//	Inspect(node, func(n AstNode) bool {
//	    if id, ok := n.(*IdentifierNode); ok {
//	        fmt.Println("Found rule reference:", id.Value)
//	    }
//	    return true // continue traversing
//	})
//
// Traversal stays within a single rule body: IdentifierNode is a
// leaf here, the referenced definition is not followed.
func Inspect(node AstNode, f func(AstNode) bool) {
	if node == nil {
		return
	}

	if !f(node) {
		return
	}

	switch n := node.(type) {
	case *GrammarNode:
		for _, def := range n.Definitions {
			Inspect(def, f)
		}

	case *DefinitionNode:
		Inspect(n.Expr, f)

	case *SequenceNode:
		for _, item := range n.Items {
			Inspect(item, f)
		}

	case *ChoiceNode:
		for _, item := range n.Items {
			Inspect(item, f)
		}

	case *OptionalNode:
		Inspect(n.Expr, f)

	case *ZeroOrMoreNode:
		Inspect(n.Expr, f)

	case *OneOrMoreNode:
		Inspect(n.Expr, f)

	case *RepeatNode:
		Inspect(n.Expr, f)

	case *AndNode:
		Inspect(n.Expr, f)

	case *NotNode:
		Inspect(n.Expr, f)

	case *CaptureNode:
		Inspect(n.Expr, f)

	case *TableNode:
		Inspect(n.Expr, f)
	}
}
