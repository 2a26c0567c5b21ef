package srcml

import "fmt"

// ParseError reports the construct being scanned, what went wrong and
// the byte offset in the input stream where the scan stopped.
type ParseError struct {
	Offset    int64
	Construct string
	Message   string
}

func createParseError(construct, msg string, offset int64) error {
	return ParseError{
		Offset:    offset,
		Construct: construct,
		Message:   msg,
	}
}

func (e ParseError) Error() string {
	return fmt.Sprintf("byte %d: %s: %s", e.Offset, e.Construct, e.Message)
}
