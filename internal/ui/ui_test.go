package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestInlineShowSingleLine(t *testing.T) {
	var buf bytes.Buffer
	NewInline(&buf).Show("(1\n 2\n 3)")
	got := buf.String()
	if got != "=> (1  2  3)\n" {
		t.Errorf("inline output = %q", got)
	}
	if strings.Count(got, "\n") != 1 {
		t.Error("status line must be a single row")
	}
}

func TestAuxShowPlainWhenNotInteractive(t *testing.T) {
	var buf bytes.Buffer
	text := strings.Repeat("long output line\n", 5)
	NewAux(&buf, false).Show(text)
	if !strings.Contains(buf.String(), "long output line") {
		t.Errorf("aux output = %q", buf.String())
	}
}

func TestAuxFallsBackWhenPagerUnavailable(t *testing.T) {
	// no terminal is attached under go test, so the pager cannot start
	// and the surface must fall back to the plain writer
	var buf bytes.Buffer
	NewAux(&buf, true).Show("fallback text")
	if !strings.Contains(buf.String(), "fallback text") {
		t.Errorf("aux output = %q", buf.String())
	}
}
