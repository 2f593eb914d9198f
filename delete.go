// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import "sync/atomic"

// pruned counts nodes reclaimed by pruning, process-wide. Forced table
// teardown does not count; it bypasses the pruning path.
var pruned atomic.Uint64

// PruneCount returns the total number of nodes reclaimed by pruning
// since process start.
func PruneCount() uint64 { return pruned.Load() }

// prune detaches n from its table if nothing keeps it alive, splicing
// its sole child (if any) into its place, and walks up the parent
// chain: removing a node may leave an unheld glue parent with a single
// child, which is then removed the same way. The walk is iterative so
// that long runs of single-child glue nodes cannot exhaust the stack.
//
// Called when a node's refcount drops to zero, and again when the
// work-queue association of an unheld node clears.
func (n *Node) prune() {
	for n != nil {
		if n.refcount != 0 {
			return
		}
		if n.Info != nil || n.AdjIn != nil || n.AdjOut != nil {
			panic("BUG: route node with no holds still has payload or adjacency state")
		}
		if n.onWorkQueue {
			// Deferred work still references the node; it stays
			// linked until the flag clears.
			return
		}
		if n.children[0] != nil && n.children[1] != nil {
			// Branch point: structurally required.
			return
		}

		child := n.children[0]
		if child == nil {
			child = n.children[1]
		}
		parent := n.parent

		if child != nil {
			child.parent = parent
		}
		if parent != nil {
			if parent.children[0] == n {
				parent.children[0] = child
			} else {
				parent.children[1] = child
			}
		} else {
			n.table.root = child
		}

		n.table.count--
		freeNode(n)
		pruned.Add(1)

		n = parent
	}
}
