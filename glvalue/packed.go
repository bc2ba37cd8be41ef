package glvalue

// Packed 2-10-10-10 words store x in bits 0-9, y in 10-19, z in 20-29 and
// w in 30-31.

// PackInt2101010 packs four signed components. x, y and z are truncated to
// 10 bits and w to 2 bits.
func PackInt2101010(x, y, z, w int32) uint32 {
	return uint32(x)&0x3ff |
		(uint32(y)&0x3ff)<<10 |
		(uint32(z)&0x3ff)<<20 |
		(uint32(w)&0x3)<<30
}

// PackUint2101010 packs four unsigned components.
func PackUint2101010(x, y, z, w uint32) uint32 {
	return x&0x3ff | (y&0x3ff)<<10 | (z&0x3ff)<<20 | (w&0x3)<<30
}

// UnpackInt2101010 returns the sign-extended components of a packed word.
func UnpackInt2101010(word uint32) [4]int32 {
	return [4]int32{
		int32(signExtend(word&0x3ff, 10)),
		int32(signExtend(word>>10&0x3ff, 10)),
		int32(signExtend(word>>20&0x3ff, 10)),
		int32(signExtend(word>>30, 2)),
	}
}

// UnpackUint2101010 returns the components of a packed word.
func UnpackUint2101010(word uint32) [4]uint32 {
	return [4]uint32{word & 0x3ff, word >> 10 & 0x3ff, word >> 20 & 0x3ff, word >> 30}
}

// PackValues packs four values of the same packed format into one word.
// The w component keeps only its low 2 bits.
func PackValues(x, y, z, w Value) uint32 {
	mustSame(x, y)
	mustSame(x, z)
	mustSame(x, w)
	if !x.format.IsPacked() {
		panic("glvalue: PackValues requires a packed format")
	}
	return x.bits | y.bits<<10 | z.bits<<20 | (w.bits&0x3)<<30
}
