package report

import (
	"strings"
	"testing"
	"time"
)

func TestValueWidth(t *testing.T) {
	data := []struct {
		Total int64
		Width int
	}{
		{Total: 0, Width: 5},
		{Total: 43, Width: 5},
		{Total: 1366, Width: 5},
		{Total: 99999, Width: 7},
		{Total: 1000000, Width: 8},
	}
	for _, d := range data {
		if got := valueWidth(d.Total); got != d.Width {
			t.Errorf("valueWidth(%d) = %d, want %d", d.Total, got, d.Width)
		}
	}
}

const renderWant = `# srcFacts: test.cpp
| Measure      | Value |
|:-------------|------:|
| srcML bytes  |  1366 |
| Characters   |   400 |
| Files        |     1 |
| LOC          |    25 |
| Classes      |     1 |
| Functions    |     2 |
| Declarations |     3 |
| Expressions  |     4 |
| Comments     |     5 |
`

func TestRender(t *testing.T) {
	t.Setenv("LC_ALL", "C")
	r := Report{
		URL:          "test.cpp",
		TotalBytes:   1366,
		Characters:   400,
		Files:        1,
		LOC:          25,
		Classes:      1,
		Functions:    2,
		Declarations: 3,
		Expressions:  4,
		Comments:     5,
	}
	var buf strings.Builder
	if err := Render(&buf, r); err != nil {
		t.Fatalf("render failed: %s", err)
	}
	if buf.String() != renderWant {
		t.Errorf("render output:\n%s\nwant:\n%s", buf.String(), renderWant)
	}
}

func TestFormatterLocale(t *testing.T) {
	t.Setenv("LC_ALL", "en_US.UTF-8")
	if got := formatter()(1234567); got != "1,234,567" {
		t.Errorf("en_US groups to %q", got)
	}
	t.Setenv("LC_ALL", "C")
	if got := formatter()(1234567); got != "1234567" {
		t.Errorf("C locale groups to %q", got)
	}
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_NUMERIC", "")
	t.Setenv("LANG", "")
	if got := formatter()(987654); got != "987654" {
		t.Errorf("unset locale groups to %q", got)
	}
}

func TestTiming(t *testing.T) {
	var buf strings.Builder
	Timing(&buf, 2*time.Second, 4000000)
	want := "\n2 sec\n2 MLOC/sec\n"
	if buf.String() != want {
		t.Errorf("timing output %q, want %q", buf.String(), want)
	}
}
