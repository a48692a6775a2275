/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package operators

import (
	"fmt"

	"github.com/warmchang/citus/go/vt/multiplan/tableset"
	"github.com/warmchang/citus/go/vt/vterrors"
)

// IsUnary reports whether the node has exactly one child.
func IsUnary(n Node) bool {
	return nodeArity[n.Type()] == 1
}

// IsBinary reports whether the node has a left and a right child.
func IsBinary(n Node) bool {
	return nodeArity[n.Type()] == 2
}

func mustHaveArity(n Node, arity int, op string) {
	if nodeArity[n.Type()] != arity {
		panic(vterrors.VT13001(fmt.Sprintf("%s on %s node", op, n.Type())))
	}
}

func attach(parent Node, slot int, child Node) {
	parent.nodeLinks().children[slot] = child
	if child != nil {
		child.nodeLinks().parent = parent
	}
}

// SetChild attaches child below a unary parent.
func SetChild(parent, child Node) {
	mustHaveArity(parent, 1, "SetChild")
	attach(parent, 0, child)
}

// SetLeftChild attaches the left child of a binary parent.
func SetLeftChild(parent, child Node) {
	mustHaveArity(parent, 2, "SetLeftChild")
	attach(parent, 0, child)
}

// SetRightChild attaches the right child of a binary parent.
func SetRightChild(parent, child Node) {
	mustHaveArity(parent, 2, "SetRightChild")
	attach(parent, 1, child)
}

// ParentNode returns the node n is attached to, nil for a detached node.
func ParentNode(n Node) Node {
	return n.nodeLinks().parent
}

// ChildNode returns the child of a unary node.
func ChildNode(n Node) Node {
	mustHaveArity(n, 1, "ChildNode")
	return n.nodeLinks().children[0]
}

// GrandChildNode returns the child of the child of a unary node.
func GrandChildNode(n Node) Node {
	return ChildNode(ChildNode(n))
}

// LeftChild returns the left child of a binary node.
func LeftChild(n Node) Node {
	mustHaveArity(n, 2, "LeftChild")
	return n.nodeLinks().children[0]
}

// RightChild returns the right child of a binary node.
func RightChild(n Node) Node {
	mustHaveArity(n, 2, "RightChild")
	return n.nodeLinks().children[1]
}

// Children returns the attached children of n, left before right.
func Children(n Node) []Node {
	var out []Node
	for _, c := range n.nodeLinks().children[:nodeArity[n.Type()]] {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Visit walks the tree in pre-order. Returning false from visit skips the
// children of the node.
func Visit(root Node, visit func(Node) bool) {
	if root == nil || !visit(root) {
		return
	}
	for _, c := range Children(root) {
		Visit(c, visit)
	}
}

// FindNodesOfType returns the nodes of the given type, in pre-order.
func FindNodesOfType(root Node, t NodeType) []Node {
	var out []Node
	Visit(root, func(n Node) bool {
		if n.Type() == t {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindNodes is FindNodesOfType with typed results.
func FindNodes[T Node](root Node) []T {
	var out []T
	Visit(root, func(n Node) bool {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// OutputTableIDs returns the range table ids of the tables below n in
// pre-order, without duplicates and without subquery placeholders.
func OutputTableIDs(n Node) []int {
	var ids []int
	seen := tableset.Empty()
	for _, t := range FindNodes[*Table](n) {
		if t.RangeTableID == SubqueryRangeTableID || seen.Contains(t.RangeTableID) {
			continue
		}
		seen = seen.With(t.RangeTableID)
		ids = append(ids, t.RangeTableID)
	}
	return ids
}

// OutputTableSet is OutputTableIDs as a set.
func OutputTableSet(n Node) tableset.TableSet {
	return tableset.Of(OutputTableIDs(n)...)
}
