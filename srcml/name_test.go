package srcml

import "testing"

func TestNameByteMask(t *testing.T) {
	accept := func(b byte) bool {
		switch {
		case b >= 'a' && b <= 'z':
			return true
		case b >= 'A' && b <= 'Z':
			return true
		case b >= '0' && b <= '9':
			return true
		case b == '-' || b == '_' || b == '.':
			return true
		}
		return false
	}
	for i := 0; i < 256; i++ {
		b := byte(i)
		if got, want := isNameByte(b), accept(b); got != want {
			t.Errorf("isNameByte(%q) = %t, want %t", b, got, want)
		}
	}
}

func TestSplitName(t *testing.T) {
	data := []struct {
		Input string
		End   int
		Colon int
	}{
		{Input: "unit ", End: 4, Colon: -1},
		{Input: "src:unit ", End: 8, Colon: 3},
		{Input: "a:b:c ", End: 3, Colon: 1},
		{Input: ":name ", End: 5, Colon: 0},
		{Input: " lead", End: 0, Colon: -1},
	}
	for _, d := range data {
		end, colon := splitName([]byte(d.Input), 0)
		if end != d.End || colon != d.Colon {
			t.Errorf("splitName(%q) = (%d, %d), want (%d, %d)", d.Input, end, colon, d.End, d.Colon)
		}
	}
}
