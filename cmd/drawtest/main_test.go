package main

import (
	"bytes"
	"testing"

	"github.com/gogpu/drawtest"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, drawtest.Summary{Total: 1234, Passed: 1200, Failed: 30, NotSupported: 3, Errors: 1})
	want := "1,234 cases: 1,200 passed, 30 failed, 3 not supported, 1 errors\n"
	if got := buf.String(); got != want {
		t.Errorf("printSummary = %q, want %q", got, want)
	}
}
