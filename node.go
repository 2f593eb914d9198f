// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import (
	"github.com/routemesh/bgptable/prefix"
)

// Node is a single vertex of the prefix trie. Nodes are created only as
// a byproduct of [Table.Get] and handed out retained; each hold must be
// paired with a [Node.Release]. A node with no payload is a glue node
// kept solely to represent a shared prefix between longer prefixes, and
// is invisible to [Table.Lookup] and [Table.Match].
type Node struct {
	p        prefix.Prefix
	children [2]*Node
	parent   *Node
	table    *Table
	prn      *Node // context node in the outer table; layered tables only
	refcount uint32

	// Info, AdjIn and AdjOut are owned by caller logic, not the trie.
	// All three must be nil again before the last hold on the node is
	// released.
	Info   any
	AdjIn  any
	AdjOut any

	// onWorkQueue is asserted by the deferred work-queue collaborator.
	// While set the node stays linked even with no holds left.
	onWorkQueue bool

	// freeNext links pooled nodes in the arena free list. Only
	// meaningful while the node is not allocated.
	freeNext *Node
}

// Prefix returns the node's copy of its prefix.
func (n *Node) Prefix() prefix.Prefix { return n.p }

// Table returns the owning table.
func (n *Node) Table() *Table { return n.table }

// Parent returns the parent node, or nil at the root. The back-link is
// valid only while the node is linked into its table.
func (n *Node) Parent() *Node { return n.parent }

// Child returns the child selected by bit (0 or 1), or nil.
func (n *Node) Child(bit int) *Node { return n.children[bit] }

// Context returns the node in the outer table that provides the route
// distinguisher context, or nil for plain tables.
func (n *Node) Context() *Node { return n.prn }

// Retain adds a hold on the node and returns it.
func (n *Node) Retain() *Node {
	n.refcount++
	return n
}

// Release drops one hold on the node. When the last hold goes away the
// node is pruned from the table unless it is still needed as a branch
// point or is associated with deferred work. The caller must have
// cleared Info, AdjIn and AdjOut before dropping its last hold.
func (n *Node) Release() {
	if n.refcount == 0 {
		panic("BUG: releasing route node with no holds")
	}
	n.refcount--
	if n.refcount == 0 {
		n.prune()
	}
}

// OnWorkQueue reports whether the work-queue collaborator has an
// outstanding association with the node.
func (n *Node) OnWorkQueue() bool { return n.onWorkQueue }

// SetOnWorkQueue marks the node as referenced by the deferred work
// queue, preventing reclamation independently of the refcount.
func (n *Node) SetOnWorkQueue() {
	n.onWorkQueue = true
}

// ClearOnWorkQueue drops the work-queue association. If no holds remain
// the node becomes eligible for pruning right away.
func (n *Node) ClearOnWorkQueue() {
	n.onWorkQueue = false
	if n.refcount == 0 {
		n.prune()
	}
}
