package srcml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// lookahead is the number of bytes the classifier needs at the cursor
// to pick a construct handler; fewer than that forces a refill.
const lookahead = 5

// Tag headers are required to fit in the window. The scanner performs
// one extra refill when a header terminator has not been seen and the
// window holds fewer unconsumed bytes than these thresholds.
const (
	startTagRoom = 200
	endTagRoom   = 100
)

var errNeedMore = errors.New("need more input")

var (
	xmlnsWord    = []byte("xmlns")
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	cdataOpen    = []byte("<![CDATA[")
	cdataClose   = []byte("]]>")
	declOpen     = []byte("<?xml ")
	piOpen       = []byte("<?")
	piClose      = []byte("?>")
	endTagOpen   = []byte("</")
	rangleByte   = []byte(">")
)

// Scanner walks one srcML document in a single pass over a sliding
// byte window, classifying each construct and accumulating Facts as it
// goes. It keeps no tree; the only state surviving a refill is the
// identity of the tag header currently being scanned.
type Scanner struct {
	win *Window

	inTag     bool
	inComment bool
	inCDATA   bool
	depth     int

	tagQName  string
	tagPrefix string
	tagLocal  string

	Facts Facts
	Trace TraceFunc
}

func NewScanner(r io.Reader) *Scanner {
	return NewScannerSize(r, 0)
}

// NewScannerSize creates a scanner with an explicit window capacity.
// Constructs larger than the window can not be scanned; the knob
// exists for tests and for tuning memory use.
func NewScannerSize(r io.Reader, size int) *Scanner {
	return &Scanner{
		win: NewWindow(r, size),
	}
}

// TotalBytes returns the number of bytes read from the input so far.
func (s *Scanner) TotalBytes() int64 {
	return s.win.Total()
}

// Depth returns the current element nesting depth.
func (s *Scanner) Depth() int {
	return s.depth
}

// Run scans the document to end of input. The first error stops the
// scan; the counters then hold everything seen up to that point.
func (s *Scanner) Run() error {
	if s.Trace != nil {
		s.Trace("start document")
	}
	for {
		if s.win.Len() < lookahead {
			if err := s.refill(); err != nil {
				return err
			}
			if s.win.Len() == 0 {
				if !s.inComment && !s.inCDATA {
					break
				}
				// fall through so the comment or CDATA handler
				// reports the unterminated construct
			} else if s.win.Len() < lookahead {
				continue
			}
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	if s.Trace != nil {
		s.Trace("end document")
	}
	return nil
}

// step classifies the bytes at the cursor and runs one handler. The
// first matching case wins.
func (s *Scanner) step() error {
	b := s.win.Bytes()

	// A handful of constructs need more than the 5 byte lookahead to
	// pin down: <![CDATA[ takes 9 bytes, the xml declaration and an
	// xmlns declaration are told apart from a processing instruction
	// and an attribute by their 6th byte. When the window ends inside
	// one of those markers, force a refill before deciding.
	var (
		need      int
		construct string
		short     string
	)
	switch {
	case s.inTag && len(b) == len(xmlnsWord) && bytes.Equal(b, xmlnsWord):
		need, construct, short = len(xmlnsWord)+1, "attribute", "incomplete attribute"
	case !s.inComment && !s.inCDATA && len(b) < len(cdataOpen) && len(b) >= 3 && bytes.HasPrefix(cdataOpen, b):
		need, construct, short = len(cdataOpen), "cdata", "unterminated CDATA"
	case len(b) == len(declOpen)-1 && bytes.HasPrefix(declOpen, b):
		need, construct, short = len(declOpen), "declaration", "incomplete XML declaration"
	}
	if need > len(b) {
		grew, err := s.grow()
		if err != nil {
			return err
		}
		if grew {
			return nil
		}
		b = s.win.Bytes()
		// at end of input the failed refill discards the partial
		// marker, leaving nothing to classify
		if len(b) == 0 {
			return s.errorf(construct, "%s", short)
		}
	}

	switch {
	case s.inTag && len(b) > 5 && bytes.HasPrefix(b, xmlnsWord) && (b[5] == ':' || b[5] == '='):
		return s.scanNamespace()
	case s.inTag:
		return s.scanAttribute()
	case s.inComment || bytes.HasPrefix(b, commentOpen):
		return s.scanComment()
	case s.inCDATA || bytes.HasPrefix(b, cdataOpen):
		return s.scanCDATA()
	case bytes.HasPrefix(b, declOpen):
		return s.scanDeclaration()
	case bytes.HasPrefix(b, piOpen):
		return s.scanInstruction()
	case bytes.HasPrefix(b, endTagOpen):
		return s.scanEndTag()
	case b[0] == '<':
		return s.scanStartTag()
	case s.depth == 0 && isSpace(b[0]):
		s.win.Advance(skipSpace(b, 0))
		return nil
	case b[0] == '&':
		return s.scanReference()
	default:
		return s.scanCharData()
	}
}

// scanComment consumes an XML comment, resuming the search for the
// terminator across windows. Comment text counts toward nothing.
func (s *Scanner) scanComment() error {
	b := s.win.Bytes()
	if len(b) == 0 {
		return s.errorf("comment", "unterminated XML comment")
	}
	if !s.inComment {
		s.win.Advance(len(commentOpen))
		b = b[len(commentOpen):]
	}
	end := bytes.Index(b, commentClose)
	if end < 0 {
		// the terminator may straddle the window boundary; keep any
		// trailing bytes that could begin it
		keep := overlap(b, commentClose)
		s.inComment = true
		s.win.Advance(len(b) - keep)
		return nil
	}
	if s.Trace != nil {
		s.Trace("comment", "comment", string(b[:end]))
	}
	s.inComment = false
	s.win.Advance(end + len(commentClose))
	return nil
}

// scanCDATA consumes a CDATA section, counting its literal bytes as
// character data. Multi window sections are counted chunk by chunk.
func (s *Scanner) scanCDATA() error {
	b := s.win.Bytes()
	if len(b) == 0 {
		return s.errorf("cdata", "unterminated CDATA")
	}
	if !s.inCDATA {
		s.win.Advance(len(cdataOpen))
		b = b[len(cdataOpen):]
	}
	end := bytes.Index(b, cdataClose)
	if end < 0 {
		keep := overlap(b, cdataClose)
		chunk := b[:len(b)-keep]
		if s.Trace != nil {
			s.Trace("cdata", "characters", string(chunk))
		}
		s.Facts.characters(chunk)
		s.inCDATA = true
		s.win.Advance(len(chunk))
		return nil
	}
	if s.Trace != nil {
		s.Trace("cdata", "characters", string(b[:end]))
	}
	s.Facts.characters(b[:end])
	s.inCDATA = false
	s.win.Advance(end + len(cdataClose))
	return nil
}

// scanDeclaration parses the xml declaration strictly: a required
// version, then optional encoding and standalone attributes, each at
// most once, then the closing marker. The whole declaration must fit
// in the window; one extra refill is allowed to make it so.
func (s *Scanner) scanDeclaration() error {
	gt, err := s.ensure(rangleByte, "declaration", "incomplete XML declaration")
	if err != nil {
		return err
	}
	b := s.win.Bytes()
	i := skipSpace(b, len(declOpen))
	if i >= gt {
		return s.errorf("declaration", "missing version in XML declaration")
	}
	name, version, next, err := s.declAttr(b, i, gt)
	if err != nil {
		return err
	}
	if string(name) != "version" {
		return s.errorf("declaration", "missing required first attribute version in XML declaration")
	}
	i = skipSpace(b, next)
	var (
		encoding   []byte
		standalone []byte
	)
	for i < gt-1 {
		name, value, next, err := s.declAttr(b, i, gt)
		if err != nil {
			return err
		}
		switch {
		case string(name) == "encoding" && encoding == nil && standalone == nil:
			encoding = value
		case string(name) == "standalone" && standalone == nil:
			standalone = value
		default:
			return s.errorf("declaration", "invalid attribute %s in XML declaration", name)
		}
		i = skipSpace(b, next)
	}
	if b[gt-1] != '?' {
		return s.errorf("declaration", "incomplete XML declaration")
	}
	if s.Trace != nil {
		s.Trace("xml declaration",
			"version", string(version),
			"encoding", string(encoding),
			"standalone", string(standalone))
	}
	s.win.Advance(gt + 1)
	s.win.Advance(skipSpace(s.win.Bytes(), 0))
	return nil
}

// declAttr parses one name="value" pair of the xml declaration within
// b[i:gt] and returns the index just past the closing quote.
func (s *Scanner) declAttr(b []byte, i, gt int) (name, value []byte, next int, err error) {
	eq := bytes.IndexByte(b[i:gt], '=')
	if eq < 0 {
		return nil, nil, 0, s.errorf("declaration", "incomplete attribute in XML declaration")
	}
	name = b[i : i+eq]
	i += eq + 1
	if i >= gt || (b[i] != '"' && b[i] != '\'') {
		return nil, nil, 0, s.errorf("declaration", "invalid delimiter for attribute %s in XML declaration", name)
	}
	delim := b[i]
	i++
	vend := bytes.IndexByte(b[i:gt], delim)
	if vend < 0 {
		return nil, nil, 0, s.errorf("declaration", "incomplete attribute %s in XML declaration", name)
	}
	return name, b[i : i+vend], i + vend + 1, nil
}

// scanInstruction consumes a processing instruction: a target of name
// bytes, optional whitespace, then data up to the closing marker. One
// refill is allowed for the marker.
func (s *Scanner) scanInstruction() error {
	end, err := s.ensure(piClose, "processing instruction", "unterminated processing instruction")
	if err != nil {
		return err
	}
	b := s.win.Bytes()
	nameEnd := scanNameBytes(b, len(piOpen))
	if nameEnd == len(piOpen) {
		return s.errorf("processing instruction", "target is missing")
	}
	target := b[len(piOpen):nameEnd]
	i := skipSpace(b, nameEnd)
	if s.Trace != nil {
		s.Trace("processing instruction", "target", string(target), "data", string(b[i:end]))
	}
	s.win.Advance(end + len(piClose))
	return nil
}

// scanEndTag consumes an element end tag and decrements the depth.
func (s *Scanner) scanEndTag() error {
	if err := s.ensureTagEnd(endTagRoom, "end tag", "incomplete element end tag"); err != nil {
		return err
	}
	b := s.win.Bytes()
	i := len(endTagOpen)
	if i < len(b) && b[i] == ':' {
		return s.errorf("end tag", "invalid end tag name")
	}
	end, colon := splitName(b, i)
	if end == len(b) {
		return s.errorf("end tag", "unterminated end tag '%s'", b[i:end])
	}
	qname := b[i:end]
	if len(qname) == 0 {
		return s.errorf("end tag", "invalid element name")
	}
	if b[end] != '>' {
		return s.errorf("end tag", "incomplete element end tag")
	}
	if s.Trace != nil {
		prefix, local := splitQName(qname, rel(colon, i))
		s.Trace("end tag", "prefix", string(prefix), "qName", string(qname), "localName", string(local))
	}
	s.win.Advance(end + 1)
	s.depth--
	return nil
}

// scanStartTag consumes an element start tag header up to its
// terminator, or up to the attribute list, in which case the tag
// identity is copied into owned storage and inTag is raised.
func (s *Scanner) scanStartTag() error {
	if err := s.ensureTagEnd(startTagRoom, "start tag", "incomplete element start tag"); err != nil {
		return err
	}
	b := s.win.Bytes()
	i := 1
	if i < len(b) && b[i] == ':' {
		return s.errorf("start tag", "invalid start tag name")
	}
	end, colon := splitName(b, i)
	if end == len(b) {
		return s.errorf("start tag", "unterminated start tag '%s'", b[i:end])
	}
	qname := b[i:end]
	if len(qname) == 0 {
		return s.errorf("start tag", "invalid element name")
	}
	// rebase the colon onto the name before i moves past it
	col := rel(colon, i)
	prefix, local := splitQName(qname, col)
	if s.Trace != nil {
		s.Trace("start tag", "prefix", string(prefix), "qName", string(qname), "localName", string(local))
	}
	s.Facts.startTag(local, s.depth)
	i = end
	if b[i] != '>' {
		i = skipSpace(b, i)
	}
	switch {
	case i < len(b) && b[i] == '>':
		s.win.Advance(i + 1)
		s.depth++
	case i+1 < len(b) && b[i] == '/' && b[i+1] == '>':
		s.win.Advance(i + 2)
		if s.Trace != nil {
			s.Trace("end tag", "prefix", string(prefix), "qName", string(qname), "localName", string(local))
		}
	default:
		s.rememberTag(qname, col)
		s.inTag = true
		s.win.Advance(i)
	}
	return nil
}

// scanAttribute consumes one attribute of the open tag header,
// capturing the document url, then the header terminator when it
// follows. An attribute cut off by the window boundary is retried
// after a refill.
func (s *Scanner) scanAttribute() error {
	for {
		err := s.tryAttribute()
		if err == nil || !errors.Is(err, errNeedMore) {
			return err
		}
		grew, gerr := s.grow()
		if gerr != nil {
			return gerr
		}
		if !grew {
			return s.errorf("attribute", "incomplete attribute")
		}
	}
}

func (s *Scanner) tryAttribute() error {
	b := s.win.Bytes()
	if len(b) == 0 {
		return errNeedMore
	}
	if b[0] == '>' || b[0] == '/' {
		return s.closeTagHeader()
	}
	if b[0] == ':' {
		return s.errorf("attribute", "invalid attribute name")
	}
	end, colon := splitName(b, 0)
	if end == len(b) {
		return errNeedMore
	}
	qname := b[:end]
	if len(qname) == 0 {
		return s.errorf("attribute", "empty attribute name")
	}
	_, local := splitQName(qname, colon)
	i := skipSpace(b, end)
	if i >= len(b) {
		return errNeedMore
	}
	if b[i] != '=' {
		return s.errorf("attribute", "attribute %s missing =", qname)
	}
	i = skipSpace(b, i+1)
	if i >= len(b) {
		return errNeedMore
	}
	if b[i] != '"' && b[i] != '\'' {
		return s.errorf("attribute", "attribute %s missing delimiter", qname)
	}
	delim := b[i]
	i++
	vend := bytes.IndexByte(b[i:], delim)
	if vend < 0 {
		return errNeedMore
	}
	value := b[i : i+vend]
	s.Facts.attribute(local, value)
	if s.Trace != nil {
		s.Trace("attribute", "qName", string(qname), "localName", string(local), "value", string(value))
	}
	s.win.Advance(skipSpace(b, i+vend+1))
	return s.closeTagHeader()
}

// scanNamespace consumes an xmlns or xmlns:prefix declaration inside a
// tag header. The URI is reported to the trace hook and discarded.
func (s *Scanner) scanNamespace() error {
	for {
		err := s.tryNamespace()
		if err == nil || !errors.Is(err, errNeedMore) {
			return err
		}
		grew, gerr := s.grow()
		if gerr != nil {
			return gerr
		}
		if !grew {
			return s.errorf("namespace", "incomplete namespace")
		}
	}
}

func (s *Scanner) tryNamespace() error {
	b := s.win.Bytes()
	i := len(xmlnsWord)
	eq := bytes.IndexByte(b[i:], '=')
	if eq < 0 {
		return errNeedMore
	}
	nameEnd := i + eq
	var prefix []byte
	if b[i] == ':' {
		prefix = b[i+1 : nameEnd]
	}
	i = skipSpace(b, nameEnd+1)
	if i >= len(b) {
		return errNeedMore
	}
	if b[i] != '"' && b[i] != '\'' {
		return s.errorf("namespace", "incomplete namespace")
	}
	delim := b[i]
	i++
	vend := bytes.IndexByte(b[i:], delim)
	if vend < 0 {
		return errNeedMore
	}
	if s.Trace != nil {
		s.Trace("namespace", "prefix", string(prefix), "uri", string(b[i:i+vend]))
	}
	s.win.Advance(skipSpace(b, i+vend+1))
	return s.closeTagHeader()
}

// closeTagHeader consumes a tag header terminator when one is at the
// cursor. Self closing tags never change the depth. When neither
// terminator is present the header stays open and the next iteration
// scans further attributes.
func (s *Scanner) closeTagHeader() error {
	b := s.win.Bytes()
	switch {
	case len(b) > 0 && b[0] == '>':
		s.win.Advance(1)
		s.inTag = false
		s.depth++
	case len(b) > 1 && b[0] == '/' && b[1] == '>':
		s.win.Advance(2)
		s.inTag = false
		if s.Trace != nil {
			s.Trace("end tag", "prefix", s.tagPrefix, "qName", s.tagQName, "localName", s.tagLocal)
		}
	case len(b) > 1 && b[0] == '/':
		return s.errorf("element", "incomplete element start tag")
	}
	return nil
}

// scanReference expands the three predefined entities. Anything else
// passes the ampersand through alone; each reference counts one
// character.
func (s *Scanner) scanReference() error {
	b := s.win.Bytes()
	var expanded string
	switch {
	case b[1] == 'l' && b[2] == 't' && b[3] == ';':
		expanded = "<"
		s.win.Advance(4)
	case b[1] == 'g' && b[2] == 't' && b[3] == ';':
		expanded = ">"
		s.win.Advance(4)
	case b[1] == 'a' && b[2] == 'm' && b[3] == 'p' && b[4] == ';':
		expanded = "&"
		s.win.Advance(5)
	default:
		expanded = "&"
		s.win.Advance(1)
	}
	if s.Trace != nil {
		s.Trace("entity reference", "characters", expanded)
	}
	s.Facts.reference()
	return nil
}

// scanCharData consumes a run of character content up to the next
// markup or entity reference.
func (s *Scanner) scanCharData() error {
	b := s.win.Bytes()
	n := len(b)
	if i := bytes.IndexByte(b, '<'); i >= 0 {
		n = i
	}
	if i := bytes.IndexByte(b[:n], '&'); i >= 0 {
		n = i
	}
	if s.Trace != nil {
		s.Trace("characters", "characters", string(b[:n]))
	}
	s.Facts.characters(b[:n])
	s.win.Advance(n)
	return nil
}

// rememberTag copies the open tag identity into owned storage; slices
// into the window do not survive the refills that attribute scanning
// may trigger.
func (s *Scanner) rememberTag(qname []byte, colon int) {
	s.tagQName = string(qname)
	if colon >= 0 {
		s.tagPrefix = s.tagQName[:colon]
		s.tagLocal = s.tagQName[colon+1:]
	} else {
		s.tagPrefix = ""
		s.tagLocal = s.tagQName
	}
}

// ensure locates sep in the window, refilling once so a construct that
// straddles the window boundary can fit entirely.
func (s *Scanner) ensure(sep []byte, construct, msg string) (int, error) {
	if i := bytes.Index(s.win.Bytes(), sep); i >= 0 {
		return i, nil
	}
	if err := s.refill(); err != nil {
		return 0, err
	}
	if i := bytes.Index(s.win.Bytes(), sep); i >= 0 {
		return i, nil
	}
	return 0, s.errorf(construct, "%s", msg)
}

// ensureTagEnd refills once when the window runs low without a tag
// terminator in sight, so short tag headers always fit.
func (s *Scanner) ensureTagEnd(room int, construct, msg string) error {
	if s.win.Len() >= room {
		return nil
	}
	if bytes.IndexByte(s.win.Bytes(), '>') >= 0 {
		return nil
	}
	if err := s.refill(); err != nil {
		return err
	}
	if bytes.IndexByte(s.win.Bytes(), '>') < 0 {
		return s.errorf(construct, "%s", msg)
	}
	return nil
}

func (s *Scanner) refill() error {
	if _, err := s.win.Refill(); err != nil {
		return fmt.Errorf("file input error: %w", err)
	}
	return nil
}

// grow refills the window and reports whether more input became
// visible.
func (s *Scanner) grow() (bool, error) {
	before := s.win.Len()
	if err := s.refill(); err != nil {
		return false, err
	}
	return s.win.Len() > before, nil
}

func (s *Scanner) errorf(construct, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return createParseError(construct, msg, s.win.Offset())
}

// overlap reports how many trailing bytes of b form a proper prefix of
// sep.
func overlap(b, sep []byte) int {
	n := len(sep) - 1
	if n > len(b) {
		n = len(b)
	}
	for ; n > 0; n-- {
		if bytes.HasSuffix(b, sep[:n]) {
			return n
		}
	}
	return 0
}

// rel rebases the absolute colon index returned by splitName onto the
// start of the name, keeping -1 for unprefixed names.
func rel(colon, start int) int {
	if colon < 0 {
		return -1
	}
	return colon - start
}

// splitQName cuts a qualified name at the given colon index.
func splitQName(qname []byte, colon int) (prefix, local []byte) {
	if colon < 0 {
		return nil, qname
	}
	return qname[:colon], qname[colon+1:]
}
