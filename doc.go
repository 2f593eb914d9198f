// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

// Package bgptable implements the prefix-keyed lookup structure used to
// store and retrieve BGP routes by network prefix: a binary radix trie
// with exact lookup, longest-prefix match, ordered traversal and
// reference-counted node lifetime.
//
// Nodes are handed out with a hold on them; every Get, Lookup, Match,
// Top and Next returns a retained node that the caller must eventually
// Release. A node is physically reclaimed only once nobody holds it,
// it is not needed as a branch point, its payload slots are empty and
// it is not associated with deferred work. This lets protocol state
// machines and output-queue builders keep pointers into the table
// across suspension points of the surrounding logic without those
// pointers being invalidated underneath them.
//
// The trie is not safe for concurrent mutation: a single logical owner
// performs lookups, insertions, deletions and traversal. Node storage
// comes from a process-wide arena that recycles freed nodes; the arena
// is torn down once, via [ReleaseAll], after every table has been
// released.
package bgptable
