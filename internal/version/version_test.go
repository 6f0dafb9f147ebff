package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	orig := Commit
	defer func() { Commit = orig }()

	Commit = "0123456789abcdef"
	got := String()
	if !strings.HasPrefix(got, "bellhop dev") {
		t.Errorf("String() = %q, want bellhop dev prefix", got)
	}
	if !strings.Contains(got, "commit: 0123456,") {
		t.Errorf("String() = %q, want short commit", got)
	}
	if Get().Commit != "0123456" {
		t.Errorf("Get().Commit = %q", Get().Commit)
	}
}
