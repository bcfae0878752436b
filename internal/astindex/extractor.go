package astindex

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkNode recursively walks the parse tree once, emitting event vectors in
// source order. Traversal idiom (recursive switch on node.Type(), child
// lookup helpers) is grounded on the teacher's walkNode in
// internal/analysis/ast/extractor.go; the switch cases differ because this
// layer extracts calls/member-accesses/assignments/destructures/string
// literals instead of declarations.
func walkNode(node *sitter.Node, content []byte, ast *ParsedAst) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "call_expression", "new_expression":
		extractCall(node, content, ast)
	case "member_expression", "subscript_expression":
		if !isPartOfCall(node) {
			extractMemberAccess(node, content, ast)
		}
	case "assignment_expression":
		extractAssignmentExpr(node, content, ast)
	case "variable_declarator":
		extractDeclarator(node, content, ast)
	case "string", "template_string":
		extractStringLiteral(node, content, ast)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkNode(node.Child(i), content, ast)
	}
}

// isPartOfCall reports whether a member_expression is the callee of its
// parent call_expression, to avoid double-emitting it as a bare member
// access in addition to the call event.
func isPartOfCall(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	return parent.Type() == "call_expression" && findChildByType(parent, node.Type()) == node
}

func extractCall(node *sitter.Node, content []byte, ast *ParsedAst) {
	calleeNode := node.ChildByFieldName("function")
	if calleeNode == nil {
		calleeNode = node.ChildByFieldName("constructor")
	}
	if calleeNode == nil {
		calleeNode = findChildByType(node, "identifier")
	}
	if calleeNode == nil {
		calleeNode = findChildByType(node, "member_expression")
	}
	if calleeNode == nil {
		return
	}

	call := CallInfo{Line: int(node.StartPoint().Row) + 1}

	switch calleeNode.Type() {
	case "identifier":
		call.CalleeName = getNodeText(calleeNode, content)
	case "member_expression":
		root, chain := flattenMemberChain(calleeNode, content)
		call.ObjectName = root
		call.PropertyChain = chain
		if len(chain) > 0 {
			call.CalleeName = chain[len(chain)-1]
		}
	default:
		call.CalleeName = getNodeText(calleeNode, content)
	}

	if argsNode := node.ChildByFieldName("arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.ChildCount()); i++ {
			child := argsNode.Child(i)
			if child.Type() == "(" || child.Type() == ")" || child.Type() == "," {
				continue
			}
			call.Arguments = append(call.Arguments, classifyArg(child, content))
		}
	}

	ast.Calls = append(ast.Calls, call)
}

func classifyArg(node *sitter.Node, content []byte) ArgInfo {
	switch node.Type() {
	case "string":
		return ArgInfo{Kind: ArgStringLiteral, Value: stripQuotes(getNodeText(node, content))}
	case "template_string":
		return ArgInfo{Kind: ArgTemplateLiteral, Value: stripTemplateQuotes(getNodeText(node, content))}
	case "identifier":
		return ArgInfo{Kind: ArgIdentifier, Value: getNodeText(node, content)}
	case "member_expression":
		root, chain := flattenMemberChain(node, content)
		prop := ""
		if len(chain) > 0 {
			prop = chain[len(chain)-1]
		}
		return ArgInfo{Kind: ArgMemberExpr, Object: root, Property: prop}
	case "binary_expression":
		return ArgInfo{Kind: ArgBinaryExpr, Value: getNodeText(node, content)}
	default:
		return ArgInfo{Kind: ArgOther, Value: getNodeText(node, content)}
	}
}

func extractMemberAccess(node *sitter.Node, content []byte, ast *ParsedAst) {
	root, chain := flattenMemberChain(node, content)
	if root == "" {
		return
	}
	ast.MemberAccesses = append(ast.MemberAccesses, MemberAccessInfo{
		RootIdentifier: root,
		PropertyChain:  chain,
		Line:           int(node.StartPoint().Row) + 1,
	})
}

// flattenMemberChain walks a (possibly nested) member_expression /
// subscript_expression chain and returns the root identifier plus the
// flattened property chain, rightmost property last. Subscript keys that
// are string literals are treated as property names.
func flattenMemberChain(node *sitter.Node, content []byte) (string, []string) {
	var chain []string
	cur := node
	for cur != nil {
		switch cur.Type() {
		case "member_expression":
			objectNode := cur.ChildByFieldName("object")
			propertyNode := cur.ChildByFieldName("property")
			if propertyNode != nil {
				chain = append([]string{getNodeText(propertyNode, content)}, chain...)
			}
			cur = objectNode
		case "subscript_expression":
			objectNode := cur.ChildByFieldName("object")
			indexNode := cur.ChildByFieldName("index")
			if indexNode != nil && indexNode.Type() == "string" {
				chain = append([]string{stripQuotes(getNodeText(indexNode, content))}, chain...)
			}
			cur = objectNode
		case "identifier", "this":
			return getNodeText(cur, content), chain
		default:
			return getNodeText(cur, content), chain
		}
	}
	return "", chain
}

func extractAssignmentExpr(node *sitter.Node, content []byte, ast *ParsedAst) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil {
		return
	}
	info := AssignInfo{Line: int(node.StartPoint().Row) + 1}

	switch left.Type() {
	case "identifier":
		info.TargetKind = AssignTargetVariable
		info.Name = getNodeText(left, content)
		if right != nil {
			info.Value = classifyAssignValue(right, content)
		}
	case "member_expression":
		objectNode := left.ChildByFieldName("object")
		propertyNode := left.ChildByFieldName("property")
		if objectNode == nil || propertyNode == nil {
			return
		}
		info.TargetKind = AssignTargetProperty
		info.Object = getNodeText(objectNode, content)
		info.Property = getNodeText(propertyNode, content)
	case "subscript_expression":
		objectNode := left.ChildByFieldName("object")
		indexNode := left.ChildByFieldName("index")
		if objectNode == nil {
			return
		}
		info.TargetKind = AssignTargetComputedProperty
		info.Object = getNodeText(objectNode, content)
		if indexNode != nil {
			info.Property = stripQuotes(getNodeText(indexNode, content))
		}
	default:
		info.TargetKind = AssignTargetOther
	}

	ast.Assignments = append(ast.Assignments, info)
}

// extractDeclarator handles `variable_declarator` nodes, covering both
// simple variable declarations (yielding an AssignInfo with an initial
// value) and destructuring patterns (yielding a DestructureInfo).
func extractDeclarator(node *sitter.Node, content []byte, ast *ParsedAst) {
	nameNode := node.ChildByFieldName("name")
	valueNode := node.ChildByFieldName("value")
	if nameNode == nil {
		return
	}
	line := int(node.StartPoint().Row) + 1

	switch nameNode.Type() {
	case "identifier":
		if valueNode == nil {
			return
		}
		ast.Assignments = append(ast.Assignments, AssignInfo{
			TargetKind: AssignTargetVariable,
			Name:       getNodeText(nameNode, content),
			Value:      classifyAssignValue(valueNode, content),
			Line:       line,
		})
	case "object_pattern", "array_pattern":
		if valueNode == nil {
			return
		}
		// Only from declarations whose right side is a member access or
		// identifier, per SPEC_FULL.md §4.2.
		var source, property string
		switch valueNode.Type() {
		case "identifier":
			source = getNodeText(valueNode, content)
		case "member_expression":
			root, chain := flattenMemberChain(valueNode, content)
			source = root
			if len(chain) > 0 {
				property = chain[len(chain)-1]
			}
		default:
			return
		}
		names := extractPatternNames(nameNode, content)
		if len(names) == 0 {
			return
		}
		ast.Destructures = append(ast.Destructures, DestructureInfo{
			BoundNames: names,
			SourceName: source,
			Property:   property,
			Line:       line,
		})
	}
}

func extractPatternNames(pattern *sitter.Node, content []byte) []string {
	var names []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			names = append(names, getNodeText(n, content))
			return
		case "pair_pattern":
			if valueNode := n.ChildByFieldName("value"); valueNode != nil {
				walk(valueNode)
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(pattern)
	return names
}

func classifyAssignValue(node *sitter.Node, content []byte) *AssignValue {
	switch node.Type() {
	case "string":
		return &AssignValue{Kind: AssignValueStringLiteral, Literal: stripQuotes(getNodeText(node, content))}
	case "template_string":
		return &AssignValue{Kind: AssignValueTemplateLiteral, Literal: stripTemplateQuotes(getNodeText(node, content))}
	case "number":
		return &AssignValue{Kind: AssignValueNumber, Literal: getNodeText(node, content)}
	case "true", "false":
		return &AssignValue{Kind: AssignValueBoolean, Literal: getNodeText(node, content)}
	case "identifier":
		return &AssignValue{Kind: AssignValueIdentifier, Literal: getNodeText(node, content)}
	case "binary_expression":
		opNode := node.Child(1)
		op := "+"
		if opNode != nil {
			op = getNodeText(opNode, content)
		}
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left == nil || right == nil {
			return nil
		}
		return &AssignValue{
			Kind:     AssignValueBinaryExpr,
			Operator: op,
			Left:     classifyAssignValue(left, content),
			Right:    classifyAssignValue(right, content),
		}
	case "object":
		val := &AssignValue{Kind: AssignValueObjectLiteral}
		for i := 0; i < int(node.ChildCount()); i++ {
			pair := node.Child(i)
			if pair.Type() != "pair" {
				continue
			}
			keyNode := pair.ChildByFieldName("key")
			valueNode := pair.ChildByFieldName("value")
			if keyNode == nil || valueNode == nil {
				continue
			}
			key := stripQuotes(getNodeText(keyNode, content))
			val.ObjectKeys = append(val.ObjectKeys, key)
			val.ObjectVals = append(val.ObjectVals, getNodeText(valueNode, content))
		}
		return val
	default:
		return nil
	}
}

func extractStringLiteral(node *sitter.Node, content []byte, ast *ParsedAst) {
	var value string
	if node.Type() == "string" {
		value = stripQuotes(getNodeText(node, content))
	} else {
		value = stripTemplateQuotes(getNodeText(node, content))
	}
	ast.StringLiterals = append(ast.StringLiterals, StringLiteralInfo{
		Value: value,
		Line:  int(node.StartPoint().Row) + 1,
	})
}

// Helper methods for AST traversal, grounded on the teacher's
// findChildByType/findChildrenByType/getNodeText in extractor.go.

func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func getNodeText(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func stripTemplateQuotes(s string) string {
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		return s[1 : len(s)-1]
	}
	return s
}

var templateVarPattern = func() func(string) []string {
	return func(s string) []string {
		var names []string
		for {
			start := strings.Index(s, "${")
			if start < 0 {
				break
			}
			end := strings.Index(s[start:], "}")
			if end < 0 {
				break
			}
			names = append(names, strings.TrimSpace(s[start+2:start+end]))
			s = s[start+end+1:]
		}
		return names
	}
}()

// resolveVariableMap performs the single-pass, last-write-wins resolution
// described in SPEC_FULL.md §4.2.
func resolveVariableMap(ast *ParsedAst) {
	vm := ast.Variables
	for _, a := range ast.Assignments {
		if a.TargetKind != AssignTargetVariable || a.Value == nil {
			continue
		}
		if a.Value.Kind == AssignValueObjectLiteral {
			props := make([]ObjectProperty, 0, len(a.Value.ObjectKeys))
			for i, k := range a.Value.ObjectKeys {
				props = append(props, ObjectProperty{Key: k, Value: a.Value.ObjectVals[i]})
			}
			vm.Objects[a.Name] = props
			continue
		}
		if resolved, ok := resolveValue(a.Value, vm, 0); ok {
			vm.Scalars[a.Name] = resolved
		}
	}
}

const maxResolveDepth = 32

func resolveValue(v *AssignValue, vm *VariableMap, depth int) (string, bool) {
	if v == nil || depth > maxResolveDepth {
		return "", false
	}
	switch v.Kind {
	case AssignValueStringLiteral, AssignValueNumber, AssignValueBoolean:
		return v.Literal, true
	case AssignValueTemplateLiteral:
		out := v.Literal
		for _, name := range templateVarPattern(v.Literal) {
			if resolved, ok := vm.Scalars[name]; ok {
				out = strings.Replace(out, "${"+name+"}", resolved, 1)
			}
		}
		return out, true
	case AssignValueIdentifier:
		resolved, ok := vm.Scalars[v.Literal]
		return resolved, ok
	case AssignValueBinaryExpr:
		if v.Operator != "+" {
			return "", false
		}
		left, lok := resolveValue(v.Left, vm, depth+1)
		right, rok := resolveValue(v.Right, vm, depth+1)
		if !lok || !rok {
			return "", false
		}
		return left + right, true
	default:
		return "", false
	}
}

// LineFromOffset recovers a 1-based line number for a byte offset within
// source text; used by raw-text analyzers that don't have AST positions.
func LineFromOffset(source string, idx int) int {
	if idx < 0 || idx > len(source) {
		return 0
	}
	return strings.Count(source[:idx], "\n") + 1
}
