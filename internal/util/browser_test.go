package util

import (
	"runtime"
	"strings"
	"testing"
)

func TestFileURL(t *testing.T) {
	t.Parallel()

	got := FileURL("report.json")
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/report.json") {
		t.Fatalf("FileURL=%q", got)
	}
	if runtime.GOOS != "windows" && strings.HasPrefix(got, "file:////") {
		t.Fatalf("FileURL has extra slash: %q", got)
	}
}
