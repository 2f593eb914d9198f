// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

package prefix

import (
	"encoding/binary"
	"net/netip"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndMask(t *testing.T) {
	p := MustParse("10.1.2.3/8")
	assert.Equal(t, IPv4, p.Family())
	assert.Equal(t, uint16(8), p.Bits())
	// Bits beyond the length are masked away.
	assert.Equal(t, "10.0.0.0/8", p.String())
	assert.True(t, p.Valid())

	p6 := MustParse("2001:db8::1/32")
	assert.Equal(t, IPv6, p6.Family())
	assert.Equal(t, "2001:db8::/32", p6.String())
	assert.True(t, p6.Valid())

	_, err := Parse("not-a-prefix")
	require.Error(t, err)
}

func TestBit(t *testing.T) {
	p := MustParse("192.0.0.0/8") // 1100_0000
	assert.Equal(t, 1, p.Bit(0))
	assert.Equal(t, 1, p.Bit(1))
	assert.Equal(t, 0, p.Bit(2))
	assert.Equal(t, 0, p.Bit(7))
	// Beyond the address width reads as zero.
	assert.Equal(t, 0, p.Bit(200))
}

func TestMatch(t *testing.T) {
	p8 := MustParse("10.0.0.0/8")
	p16 := MustParse("10.1.0.0/16")
	other := MustParse("11.0.0.0/8")

	assert.True(t, p8.Match(p16))
	assert.False(t, p16.Match(p8), "longer prefix cannot contain shorter")
	assert.True(t, p8.Match(p8))
	assert.False(t, p8.Match(other))

	// Families never match each other.
	assert.False(t, p8.Match(MustParse("::/0")))
	assert.False(t, MustParse("::/0").Match(p8))
}

func TestCommon(t *testing.T) {
	a := MustParse("10.0.0.0/16")
	b := MustParse("10.1.0.0/16")
	// 10.0 and 10.1 agree for 15 bits.
	assert.Equal(t, uint16(15), a.CommonLen(b))
	assert.Equal(t, "10.0.0.0/15", a.Common(b).String())

	// Identical prefixes share their full length.
	assert.Equal(t, uint16(16), a.CommonLen(a))

	// Disjoint at the first bit.
	c := MustParse("128.0.0.0/8")
	d := MustParse("0.0.0.0/8")
	assert.Equal(t, uint16(0), c.CommonLen(d))
	assert.Equal(t, "0.0.0.0/0", c.Common(d).String())
}

func TestQuickMatchAgainstNetIP(t *testing.T) {
	check := func(addrInt uint32, plen uint8, probe uint32) bool {
		plen = plen % 33
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], addrInt)
		np := netip.PrefixFrom(netip.AddrFrom4(buf), int(plen)).Masked()
		p := FromNetIP(np)

		assert.True(t, p.Valid())
		assert.Equal(t, np.String(), p.String())

		binary.BigEndian.PutUint32(buf[:], probe)
		addr := netip.AddrFrom4(buf)
		q := FromAddr(addr)
		assert.Equal(t, np.Contains(addr), p.Match(q),
			"containment disagrees with netip for %s and %s", np, addr)
		return !t.Failed()
	}
	err := quick.Check(check, &quick.Config{MaxCount: 5000})
	require.NoError(t, err)
}

func TestQuickCommonLen(t *testing.T) {
	check := func(aInt, bInt uint32, aLen, bLen uint8) bool {
		aLen, bLen = aLen%33, bLen%33
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], aInt)
		a := FromNetIP(netip.PrefixFrom(netip.AddrFrom4(buf), int(aLen)).Masked())
		binary.BigEndian.PutUint32(buf[:], bInt)
		b := FromNetIP(netip.PrefixFrom(netip.AddrFrom4(buf), int(bLen)).Masked())

		n := a.CommonLen(b)
		assert.Equal(t, n, b.CommonLen(a), "CommonLen not symmetric")
		assert.LessOrEqual(t, n, min(a.Bits(), b.Bits()))

		// Reference: count agreeing leading bits.
		var ref uint16
		for ref < min(a.Bits(), b.Bits()) && a.Bit(ref) == b.Bit(ref) {
			ref++
		}
		assert.Equal(t, ref, n)

		common := a.Common(b)
		assert.True(t, common.Valid())
		assert.True(t, common.Match(a))
		assert.True(t, common.Match(b))
		return !t.Failed()
	}
	err := quick.Check(check, &quick.Config{MaxCount: 5000})
	require.NoError(t, err)
}
