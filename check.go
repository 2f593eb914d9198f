// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

// Debug makes [Table.Top] run [Table.Check] before returning, turning
// every full-table walk into a structural audit. Off by default; meant
// for tests and debugging, not production control flow.
var Debug bool

// Check walks the whole table and validates its structural invariants:
// well-formed prefixes, correct parent back-links, strict prefix
// extension from parent to child, selector bits matching child slots,
// and the reachable node count matching Len. Any violation panics.
func (t *Table) Check() {
	remaining := t.count
	if t.root != nil {
		if t.root.parent != nil {
			panic("BUG: root route node has a parent")
		}
		remaining = checkNode(t.root, remaining)
	}
	if remaining != 0 {
		panic("BUG: route table count exceeds reachable nodes")
	}
}

func checkNode(n *Node, remaining int) int {
	if remaining == 0 {
		panic("BUG: more reachable route nodes than the table count")
	}
	remaining--

	if !n.p.Valid() {
		panic("BUG: malformed prefix on route node")
	}

	for bit := 0; bit <= 1; bit++ {
		c := n.children[bit]
		if c == nil {
			continue
		}
		if c.parent != n {
			panic("BUG: child route node does not point back at its parent")
		}
		if c.p.Bits() <= n.p.Bits() {
			panic("BUG: child prefix not longer than its parent's")
		}
		if !n.p.Match(c.p) {
			panic("BUG: child prefix does not extend its parent's")
		}
		if c.p.Bit(n.p.Bits()) != bit {
			panic("BUG: child route node linked under the wrong selector bit")
		}
		remaining = checkNode(c, remaining)
	}
	return remaining
}
