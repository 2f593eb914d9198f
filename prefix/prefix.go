// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

// Package prefix provides the address prefix value type the route table
// is keyed by, together with the bit-level primitives the radix trie
// descent needs: containment, common prefix computation and single-bit
// selection.
package prefix

import (
	"fmt"
	"math/bits"
	"net/netip"
)

// Family is the address family of a prefix.
type Family uint8

const (
	IPv4 Family = 1
	IPv6 Family = 2
)

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// MaxBits returns the address width of the family in bits.
func (f Family) MaxBits() uint16 {
	if f == IPv6 {
		return 128
	}
	return 32
}

// Prefix is an address plus a bit length denoting how many leading bits
// are significant. All bits beyond the length are zero; constructors
// mask the address to maintain this.
type Prefix struct {
	addr   [16]byte
	bitlen uint16
	family Family
}

// New builds a Prefix from raw address bytes, masking away any bits
// beyond bitlen.
func New(family Family, bitlen uint16, addr []byte) Prefix {
	p := Prefix{family: family, bitlen: min(bitlen, family.MaxBits())}
	copy(p.addr[:], addr)
	p.mask()
	return p
}

// FromNetIP converts a netip.Prefix. The address is masked to the
// prefix length.
func FromNetIP(np netip.Prefix) Prefix {
	addr := np.Addr()
	if addr.Is4() {
		a4 := addr.As4()
		return New(IPv4, uint16(np.Bits()), a4[:])
	}
	a16 := addr.As16()
	return New(IPv6, uint16(np.Bits()), a16[:])
}

// FromAddr converts a concrete address into a maximal-length prefix,
// i.e. /32 or /128.
func FromAddr(addr netip.Addr) Prefix {
	return FromNetIP(netip.PrefixFrom(addr, addr.BitLen()))
}

// MustParse parses a CIDR string and panics on malformed input. For
// tests and fixtures.
func MustParse(s string) Prefix {
	return FromNetIP(netip.MustParsePrefix(s))
}

// Parse parses a CIDR string.
func Parse(s string) (Prefix, error) {
	np, err := netip.ParsePrefix(s)
	if err != nil {
		return Prefix{}, err
	}
	return FromNetIP(np), nil
}

func (p Prefix) Family() Family { return p.family }

// Bits is the prefix length in bits.
func (p Prefix) Bits() uint16 { return p.bitlen }

// Bytes returns the address bytes covering the prefix length. The
// returned slice aliases no mutable state; Prefix is a value type.
func (p Prefix) Bytes() []byte {
	return p.addr[:(p.bitlen+7)/8]
}

// Addr returns the full-width address bytes.
func (p Prefix) Addr() []byte {
	return p.addr[:p.family.MaxBits()/8]
}

func (p Prefix) Equal(q Prefix) bool {
	return p == q
}

// Bit returns the bit at position i, counting from the most significant
// bit of the first address byte. Positions beyond the address width
// read as zero.
func (p Prefix) Bit(i uint16) int {
	if i >= uint16(len(p.addr))*8 {
		return 0
	}
	return int(p.addr[i/8]>>(7-i%8)) & 1
}

// Match reports whether p contains q: q's length is at least p's and
// the two agree bit-for-bit over p's length. Families must match.
func (p Prefix) Match(q Prefix) bool {
	if p.family != q.family || p.bitlen > q.bitlen {
		return false
	}
	return p.commonLen(q) >= p.bitlen
}

// CommonLen returns the number of leading bits p and q share, capped at
// the shorter of the two lengths.
func (p Prefix) CommonLen(q Prefix) uint16 {
	return p.commonLen(q)
}

func (p Prefix) commonLen(q Prefix) uint16 {
	limit := min(p.bitlen, q.bitlen)
	var n uint16
	for i := 0; n < limit; i++ {
		m := uint16(bits.LeadingZeros8(p.addr[i] ^ q.addr[i]))
		n += m
		if m < 8 {
			break
		}
	}
	return min(n, limit)
}

// Common returns the longest common prefix of p and q, taking the
// family from p.
func (p Prefix) Common(q Prefix) Prefix {
	c := p
	c.bitlen = p.commonLen(q)
	c.mask()
	return c
}

// Valid reports whether the prefix is well-formed: a known family, a
// length within the family's address width and all bits beyond the
// length zero.
func (p Prefix) Valid() bool {
	if p.family != IPv4 && p.family != IPv6 {
		return false
	}
	if p.bitlen > p.family.MaxBits() {
		return false
	}
	masked := p
	masked.mask()
	return p == masked
}

func (p Prefix) String() string {
	var addr netip.Addr
	if p.family == IPv4 {
		addr = netip.AddrFrom4([4]byte(p.addr[:4]))
	} else {
		addr = netip.AddrFrom16(p.addr)
	}
	return netip.PrefixFrom(addr, int(p.bitlen)).String()
}

// mask zeroes every bit beyond the prefix length.
func (p *Prefix) mask() {
	full := p.bitlen / 8
	if rem := p.bitlen % 8; rem != 0 {
		p.addr[full] &= 0xff << (8 - rem)
		full++
	}
	clear(p.addr[full:])
}
