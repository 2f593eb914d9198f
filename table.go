// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import "fmt"

// AFI is the address family identifier of a table.
type AFI uint16

const (
	AFIIPv4 AFI = 1
	AFIIPv6 AFI = 2
)

func (a AFI) String() string {
	switch a {
	case AFIIPv4:
		return "ipv4"
	case AFIIPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("afi(%d)", uint16(a))
	}
}

// SAFI is the subsequent address family identifier of a table.
type SAFI uint8

const (
	SAFIUnicast   SAFI = 1
	SAFIMulticast SAFI = 2
	// SAFIMPLSVPN tags layered tables whose nodes carry a context link
	// into an outer, route-distinguisher-keyed table.
	SAFIMPLSVPN SAFI = 128
)

func (s SAFI) String() string {
	switch s {
	case SAFIUnicast:
		return "unicast"
	case SAFIMulticast:
		return "multicast"
	case SAFIMPLSVPN:
		return "mpls-vpn"
	default:
		return fmt.Sprintf("safi(%d)", uint8(s))
	}
}

// Releaser is the hold-dropping side of an external reference-counted
// object, such as the peer owning a table.
type Releaser interface {
	Release()
}

// Table is a prefix trie of route nodes. Tables are reference-counted:
// [New] returns a table with one hold and [Table.Release] drops one,
// tearing the whole tree down when the last hold goes away.
type Table struct {
	root     *Node
	count    int
	afi      AFI
	safi     SAFI
	refcount uint32
	name     string

	// owner is an external session/peer object referenced by the
	// table, released exactly once when the table is freed.
	owner Releaser

	// onFree is notified after teardown; used by Registry.
	onFree func(*Table)
}

// New creates an empty table tagged with the given address family,
// holding one reference for the caller.
func New(afi AFI, safi SAFI) *Table {
	return &Table{
		afi:      afi,
		safi:     safi,
		refcount: 1,
	}
}

// AFI returns the table's address family tag.
func (t *Table) AFI() AFI { return t.afi }

// SAFI returns the table's subsequent address family tag.
func (t *Table) SAFI() SAFI { return t.safi }

// Name returns the name given to the table by its registry, or the
// afi/safi tags for anonymous tables.
func (t *Table) Name() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("%s/%s", t.afi, t.safi)
}

// Len returns the number of nodes linked into the table, glue nodes
// included.
func (t *Table) Len() int { return t.count }

// Owner returns the external object referenced by the table, if any.
func (t *Table) Owner() Releaser { return t.owner }

// SetOwner attaches the external session/peer object the table belongs
// to. The reference is dropped exactly once, when the table is freed.
func (t *Table) SetOwner(owner Releaser) {
	t.owner = owner
}

// Retain adds a hold on the table and returns it.
func (t *Table) Retain() *Table {
	t.refcount++
	return t
}

// Release drops one hold on the table. At zero the remaining tree is
// reclaimed wholesale: callers must have released every node hold and
// cleared all payload state beforehand.
func (t *Table) Release() {
	if t.refcount == 0 {
		panic("BUG: releasing route table with no holds")
	}
	t.refcount--
	if t.refcount == 0 {
		t.free()
	}
}

// free tears the tree down bottom-up in post-order, without going
// through per-node refcounting.
func (t *Table) free() {
	node := t.root
	for node != nil {
		if node.children[0] != nil {
			node = node.children[0]
			continue
		}
		if node.children[1] != nil {
			node = node.children[1]
			continue
		}

		if node.Info != nil || node.AdjIn != nil || node.AdjOut != nil || node.onWorkQueue {
			panic("BUG: tearing down route table with live payload state")
		}

		parent := node.parent
		t.count--
		freeNode(node)

		if parent == nil {
			break
		}
		if parent.children[0] == node {
			parent.children[0] = nil
		} else {
			parent.children[1] = nil
		}
		node = parent
	}
	t.root = nil

	if t.count != 0 {
		panic("BUG: route table node count nonzero after teardown")
	}

	if t.owner != nil {
		t.owner.Release()
		t.owner = nil
	}
	if t.onFree != nil {
		t.onFree(t)
	}
}
