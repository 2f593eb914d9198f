// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package bgptable

import (
	"encoding/binary"
	"net/netip"
	"testing"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/routemesh/bgptable/prefix"
)

func benchPrefixes(n int) []prefix.Prefix {
	ps := make([]prefix.Prefix, 0, n)
	for i := 0; i < n; i++ {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(i)<<8)
		ps = append(ps, prefix.FromNetIP(netip.PrefixFrom(netip.AddrFrom4(buf), 24)))
	}
	return ps
}

func BenchmarkTableGet(b *testing.B) {
	ps := benchPrefixes(b.N)
	tbl := New(AFIIPv4, SAFIUnicast)
	held := make([]*Node, 0, b.N)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		held = append(held, tbl.Get(ps[i]))
	}

	b.StopTimer()
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "objects/sec")
	for _, n := range held {
		n.Release()
	}
	tbl.Release()
}

func BenchmarkTableLookup(b *testing.B) {
	ps := benchPrefixes(1000)
	tbl := New(AFIIPv4, SAFIUnicast)
	held := make([]*Node, 0, len(ps))
	for _, p := range ps {
		n := tbl.Get(p)
		n.Info = p
		held = append(held, n)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		n := tbl.Lookup(ps[i%len(ps)])
		n.Release()
	}

	b.StopTimer()
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "objects/sec")
	for _, n := range held {
		n.Info = nil
		n.Release()
	}
	tbl.Release()
}

func BenchmarkTableMatchAddr(b *testing.B) {
	ps := benchPrefixes(1000)
	tbl := New(AFIIPv4, SAFIUnicast)
	held := make([]*Node, 0, len(ps))
	for _, p := range ps {
		n := tbl.Get(p)
		n.Info = p
		held = append(held, n)
	}
	addr := netip.MustParseAddr("0.0.1.1")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		n := tbl.MatchAddr(addr)
		n.Release()
	}

	b.StopTimer()
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "objects/sec")
	for _, n := range held {
		n.Info = nil
		n.Release()
	}
	tbl.Release()
}

// Baseline: the immutable radix tree used elsewhere for exact-match
// indexing, keyed by the packed prefix bytes.
func BenchmarkIradixInsert(b *testing.B) {
	ps := benchPrefixes(b.N)
	keys := make([][]byte, 0, b.N)
	for _, p := range ps {
		keys = append(keys, append(p.Bytes(), byte(p.Bits())))
	}
	b.ResetTimer()

	r := iradix.New[int]()
	for i := 0; i < b.N; i++ {
		r, _, _ = r.Insert(keys[i], i)
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "objects/sec")
}
