package srcml

// nameMask flags the ASCII bytes accepted in an element or attribute
// name: letters, digits, '-', '_' and '.'. Bytes past 0x7f are
// rejected, a deliberate restriction of this scanner.
var nameMask = [2]uint64{
	0x03ff600000000000, // '-' '.' and digits
	0x07fffffe87fffffe, // letters and '_'
}

func isNameByte(b byte) bool {
	if b >= 0x80 {
		return false
	}
	return nameMask[b>>6]&(1<<(b&0x3f)) != 0
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// skipSpace returns the index of the first non blank byte of b at or
// after i.
func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

// scanNameBytes returns the index just past the run of name bytes
// starting at i.
func scanNameBytes(b []byte, i int) int {
	for i < len(b) && isNameByte(b[i]) {
		i++
	}
	return i
}

// splitName scans a qualified name at b[i:]. It returns the index just
// past the name and the index of the colon separating the prefix from
// the local name, or -1 when the name carries no prefix. A second
// colon ends the name.
func splitName(b []byte, i int) (end, colon int) {
	end = scanNameBytes(b, i)
	colon = -1
	if end < len(b) && b[end] == ':' {
		colon = end
		end = scanNameBytes(b, end+1)
	}
	return end, colon
}
