package glvalue

import "testing"

func TestPackInt2101010(t *testing.T) {
	word := PackInt2101010(-1, 511, -512, -2)
	got := UnpackInt2101010(word)
	want := [4]int32{-1, 511, -512, -2}
	if got != want {
		t.Errorf("UnpackInt2101010(%#08x) = %v, want %v", word, got, want)
	}
}

func TestPackUint2101010(t *testing.T) {
	word := PackUint2101010(1023, 0, 512, 3)
	if word != 0xe00003ff {
		t.Errorf("PackUint2101010 = %#08x, want 0xe00003ff", word)
	}
	if got := UnpackUint2101010(word); got != [4]uint32{1023, 0, 512, 3} {
		t.Errorf("UnpackUint2101010 = %v", got)
	}
}

func TestPackValues(t *testing.T) {
	f := FormatInt2101010
	word := PackValues(Create(-3, f), Create(5, f), Create(0, f), Create(1, f))
	if got := UnpackInt2101010(word); got != [4]int32{-3, 5, 0, 1} {
		t.Errorf("PackValues unpacked = %v", got)
	}
	mustPanic(t, "non-packed", func() {
		v := Create(1, FormatInt)
		PackValues(v, v, v, v)
	})
}
