// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import "sync"

// Node storage is pooled process-wide: nodes are allocated in blocks of
// [blockSize] and recycled through an intrusive free list threaded via
// Node.freeNext. Blocks are retained for the lifetime of the process
// and discarded only by [ReleaseAll].

const blockSize = 1024

type nodeBlock struct {
	next  *nodeBlock
	nodes [blockSize]Node
}

var (
	arenaMu     sync.Mutex
	arenaBlocks *nodeBlock
	arenaFree   *Node
	blockCount  int
)

// allocNode returns a zeroed node, growing the arena by one block when
// the free list is exhausted.
func allocNode() *Node {
	arenaMu.Lock()
	defer arenaMu.Unlock()

	if arenaFree == nil {
		b := &nodeBlock{next: arenaBlocks}
		arenaBlocks = b
		blockCount++
		for i := range b.nodes {
			n := &b.nodes[i]
			n.freeNext = arenaFree
			arenaFree = n
		}
	}

	n := arenaFree
	arenaFree = n.freeNext
	*n = Node{}
	return n
}

// freeNode returns a node to the pool. The node must not be touched by
// the caller afterward.
func freeNode(n *Node) {
	arenaMu.Lock()
	defer arenaMu.Unlock()
	*n = Node{}
	n.freeNext = arenaFree
	arenaFree = n
}

// ArenaBlocks returns the number of node blocks currently allocated.
func ArenaBlocks() int {
	arenaMu.Lock()
	defer arenaMu.Unlock()
	return blockCount
}

// ReleaseAll discards every node block unconditionally. This is a
// process-wide shutdown operation: it is only safe once all tables are
// known to be released.
func ReleaseAll() {
	arenaMu.Lock()
	defer arenaMu.Unlock()
	arenaFree = nil
	arenaBlocks = nil
	blockCount = 0
}
