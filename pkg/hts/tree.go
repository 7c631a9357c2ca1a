package hts

// BuildTree rebuilds the indentation hierarchy of a flat schedule.
//
// Each item becomes a child of the most recent item seen at the depth just
// above it. An item deeper than any open ancestor becomes a root rather than
// being attached to a synthesized parent. Negative depths count as 0.
func BuildTree(items []LineItem) []*TreeNode {
	var roots []*TreeNode
	stack := make(map[int]*TreeNode)

	for _, item := range items {
		depth := item.IndentDepth
		if depth < 0 {
			depth = 0
		}
		node := &TreeNode{LineItem: item}

		if depth == 0 {
			roots = append(roots, node)
		} else if parent := stack[depth-1]; parent != nil {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}

		// Deeper entries are left in place; they are overwritten when an
		// item at their depth appears again. The stack is keyed by depth so
		// its size follows the depths seen, not their magnitude.
		stack[depth] = node
	}

	return roots
}

// FlattenTree lists the tree's items in pre-order, each node before its
// children and siblings in their original order.
func FlattenTree(nodes []*TreeNode) []LineItem {
	var items []LineItem
	Walk(nodes, func(node *TreeNode, _ int) {
		items = append(items, node.LineItem)
	})
	return items
}

// Walk visits nodes in pre-order, passing each node's nesting level in the
// tree (which can differ from its IndentDepth for malformed input).
func Walk(nodes []*TreeNode, visit func(node *TreeNode, level int)) {
	walk(nodes, 0, visit)
}

func walk(nodes []*TreeNode, level int, visit func(node *TreeNode, level int)) {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		visit(node, level)
		walk(node.Children, level+1, visit)
	}
}

// CountNodes returns the number of nodes in the tree.
func CountNodes(nodes []*TreeNode) int {
	count := 0
	Walk(nodes, func(*TreeNode, int) { count++ })
	return count
}
