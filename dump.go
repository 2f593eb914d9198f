// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import (
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"
)

// Dump writes a human-readable rendering of the table in pre-order.
// Glue nodes are marked with '*'. Purely diagnostic; takes no holds and
// performs no mutation.
func (t *Table) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 5, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "Prefix\tRefs\tInfo\n")

	var dumpNode func(n *Node, depth int)
	dumpNode = func(n *Node, depth int) {
		glue := ""
		if n.Info == nil {
			glue = "*"
		}
		fmt.Fprintf(tw, "%s%s%s\t%d\t%v\n",
			strings.Repeat(" ", depth), n.p, glue, n.refcount, n.Info)
		if n.children[0] != nil {
			dumpNode(n.children[0], depth+1)
		}
		if n.children[1] != nil {
			dumpNode(n.children[1], depth+1)
		}
	}

	if t.root == nil {
		fmt.Fprintf(tw, "<empty>\n")
	} else {
		dumpNode(t.root, 0)
	}
	return tw.Flush()
}
