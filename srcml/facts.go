package srcml

import "bytes"

// Facts accumulates the source measures of one srcML document while the
// scanner walks it. Counters are bumped in place; no event payload is
// retained beyond the copied document URL.
type Facts struct {
	URL       string
	TextSize  int
	LOC       int
	Exprs     int
	Functions int
	Classes   int
	Units     int
	Decls     int
	Comments  int
	Archive   bool
}

// Files returns the number of source files described by the document.
// In an archive the outermost unit only wraps the others and is not
// itself a file.
func (f Facts) Files() int {
	if f.Archive {
		return f.Units - 1
	}
	return f.Units
}

// startTag bumps the counter matching the local name of an element
// start tag. depth is the nesting depth before the element opens; a
// unit starting at depth 1 marks the document as an archive.
func (f *Facts) startTag(local []byte, depth int) {
	switch string(local) {
	case "expr":
		f.Exprs++
	case "decl":
		f.Decls++
	case "comment":
		f.Comments++
	case "function":
		f.Functions++
	case "unit":
		f.Units++
		if depth == 1 {
			f.Archive = true
		}
	case "class":
		f.Classes++
	}
}

// attribute captures the document URL. The value is copied; attribute
// slices do not survive a refill.
func (f *Facts) attribute(local, value []byte) {
	if string(local) == "url" {
		f.URL = string(value)
	}
}

// characters counts text content and CDATA: every byte toward the
// character total, every newline toward LOC.
func (f *Facts) characters(data []byte) {
	f.TextSize += len(data)
	f.LOC += bytes.Count(data, newline)
}

// reference counts one expanded character entity. The expansions carry
// no newline so LOC is untouched.
func (f *Facts) reference() {
	f.TextSize++
}

var newline = []byte{'\n'}
