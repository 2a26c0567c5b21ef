package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Report is the final snapshot of one scan, ready to render.
type Report struct {
	URL          string
	TotalBytes   int64
	Characters   int
	Files        int
	LOC          int
	Classes      int
	Functions    int
	Declarations int
	Expressions  int
	Comments     int
}

// Render writes the markdown measures table. The value column is right
// aligned to a width derived from the byte total, and numbers are
// grouped according to the process locale.
func Render(w io.Writer, r Report) error {
	var (
		width  = valueWidth(r.TotalBytes)
		format = formatter()
	)
	if _, err := fmt.Fprintf(w, "# srcFacts: %s\n", r.URL); err != nil {
		return err
	}
	fmt.Fprintf(w, "| Measure      | %*s |\n", width, "Value")
	fmt.Fprintf(w, "|:-------------|-%s:|\n", strings.Repeat("-", width))

	rows := []struct {
		Label string
		Value int64
	}{
		{"srcML bytes", r.TotalBytes},
		{"Characters", int64(r.Characters)},
		{"Files", int64(r.Files)},
		{"LOC", int64(r.LOC)},
		{"Classes", int64(r.Classes)},
		{"Functions", int64(r.Functions)},
		{"Declarations", int64(r.Declarations)},
		{"Expressions", int64(r.Expressions)},
		{"Comments", int64(r.Comments)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "| %-12s | %*s |\n", row.Label, width, format(row.Value)); err != nil {
			return err
		}
	}
	return nil
}

// Timing writes the elapsed wall clock time and the scan throughput,
// three significant digits each.
func Timing(w io.Writer, elapsed time.Duration, loc int) {
	secs := elapsed.Seconds()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%.3g sec\n", secs)
	fmt.Fprintf(w, "%.3g MLOC/sec\n", float64(loc)/secs/1e6)
}

func valueWidth(total int64) int {
	width := 5
	if total > 0 {
		if n := int(math.Log10(float64(total))*1.3 + 1); n > width {
			width = n
		}
	}
	return width
}

// formatter returns the integer renderer for the process locale. The C
// and POSIX locales, and an unset environment, group nothing.
func formatter() func(int64) string {
	tag, ok := locale()
	if !ok {
		return func(v int64) string {
			return strconv.FormatInt(v, 10)
		}
	}
	p := message.NewPrinter(tag)
	return func(v int64) string {
		return p.Sprint(number.Decimal(v))
	}
}

func locale() (language.Tag, bool) {
	for _, name := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if v == "C" || v == "POSIX" {
			return language.Und, false
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err == nil {
			return tag, true
		}
	}
	return language.Und, false
}
