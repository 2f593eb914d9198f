// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import (
	"net/netip"

	"github.com/routemesh/bgptable/prefix"
)

// newNode allocates a node from the arena with the prefix copied in.
func newNode(t *Table, p prefix.Prefix) *Node {
	n := allocNode()
	n.p = p
	n.table = t
	return n
}

// link attaches child under parent at the slot selected by the child's
// bit at the parent's prefix length.
func link(parent, child *Node) {
	bit := child.p.Bit(parent.p.Bits())
	parent.children[bit] = child
	child.parent = parent
}

// Get finds the node for p, creating it (and any glue node needed to
// hold a branch point) if absent. The returned node carries a hold for
// the caller.
func (t *Table) Get(p prefix.Prefix) *Node {
	return t.get(p, nil)
}

// GetWithContext is Get for layered tables: ctx is the node in the
// outer table whose prefix is the route distinguisher context for this
// one. It is attached to the exact-target node on creation and must
// equal any prior value for the same prefix.
func (t *Table) GetWithContext(p prefix.Prefix, ctx *Node) *Node {
	if ctx != nil && t.safi != SAFIMPLSVPN {
		panic("BUG: context node supplied for a non-VPN table")
	}
	return t.get(p, ctx)
}

func (t *Table) get(p prefix.Prefix, ctx *Node) *Node {
	// Descend while the visited node's prefix contains the target.
	// [last] is the deepest such node.
	var last *Node
	node := t.root
	for node != nil && node.p.Bits() <= p.Bits() && node.p.Match(p) {
		if node.p.Bits() == p.Bits() {
			// A glue node carries no context yet; attach it now.
			// Anything else must agree with what was supplied before.
			if node.prn == nil {
				node.prn = ctx
			} else if node.prn != ctx {
				panic("BUG: route distinguisher context mismatch on existing node")
			}
			return node.Retain()
		}
		last = node
		node = node.children[p.Bit(node.p.Bits())]
	}

	var target *Node
	if node == nil {
		// Empty child slot: the target hangs directly off the last
		// containing node.
		target = newNode(t, p)
		if last != nil {
			link(last, target)
		} else {
			t.root = target
		}
		t.count++
	} else {
		// The descent hit a node whose prefix diverges from the
		// target. Interpose a node holding the common prefix; the
		// diverging node becomes its child.
		branch := newNode(t, node.p.Common(p))
		link(branch, node)
		if last != nil {
			link(last, branch)
		} else {
			t.root = branch
		}
		t.count++

		if branch.p.Bits() == p.Bits() {
			target = branch
		} else {
			target = newNode(t, p)
			link(branch, target)
			t.count++
		}
	}

	target.prn = ctx
	return target.Retain()
}

// Lookup returns the node holding exactly p, retained, or nil. Glue
// nodes are treated as absent.
func (t *Table) Lookup(p prefix.Prefix) *Node {
	node := t.root
	for node != nil && node.p.Bits() <= p.Bits() && node.p.Match(p) {
		if node.p.Bits() == p.Bits() {
			if node.Info == nil {
				return nil
			}
			return node.Retain()
		}
		node = node.children[p.Bit(node.p.Bits())]
	}
	return nil
}

// Match returns the most specific payload-carrying node whose prefix
// contains p, retained, or nil if none does.
func (t *Table) Match(p prefix.Prefix) *Node {
	var matched *Node
	node := t.root
	for node != nil && node.p.Bits() <= p.Bits() && node.p.Match(p) {
		if node.Info != nil {
			matched = node
		}
		if node.p.Bits() == p.Bits() {
			break
		}
		node = node.children[p.Bit(node.p.Bits())]
	}
	if matched == nil {
		return nil
	}
	return matched.Retain()
}

// MatchAddr is Match for a concrete address, interpreted as a
// maximal-length prefix.
func (t *Table) MatchAddr(addr netip.Addr) *Node {
	return t.Match(prefix.FromAddr(addr))
}

// Top returns the root node, retained, or nil for an empty table. With
// [Debug] set the whole table is checked first.
func (t *Table) Top() *Node {
	if t.root == nil {
		return nil
	}
	if Debug {
		t.Check()
	}
	return t.root.Retain()
}

// Next consumes the caller's hold on n and returns the next node in
// pre-order (left child before right, then up to the first unvisited
// right sibling), retained, or nil when traversal is exhausted.
func (n *Node) Next() *Node {
	return n.next(nil)
}

// NextUntil is Next with the ascent bounded at limit, restricting the
// traversal to limit's subtree.
func (n *Node) NextUntil(limit *Node) *Node {
	return n.next(limit)
}

func (n *Node) next(limit *Node) *Node {
	// Retain the successor before dropping the hold on the current
	// node: the release may prune the branch we are standing on.
	if c := n.children[0]; c != nil {
		c.Retain()
		n.Release()
		return c
	}
	if c := n.children[1]; c != nil {
		c.Retain()
		n.Release()
		return c
	}

	start := n
	for n.parent != nil && n != limit {
		if n.parent.children[0] == n && n.parent.children[1] != nil {
			next := n.parent.children[1]
			next.Retain()
			start.Release()
			return next
		}
		n = n.parent
	}
	start.Release()
	return nil
}
