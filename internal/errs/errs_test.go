package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestIsMatchesOnKindOnly(t *testing.T) {
	a := IO(2, "bmp.Open", errors.New("disk full"))
	b := IO(0, "bmp.ReadRows", errors.New("timeout"))
	if !a.Is(b) {
		t.Fatal("Is() = false for two errors of the same kind, want true")
	}

	c := Format("bmp.Open: signature", errors.New("bad magic"))
	if a.Is(c) {
		t.Fatal("Is() = true across different kinds, want false")
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("boom")
	e := Transport(3, "rank.Send", inner)
	if errors.Unwrap(e) != inner {
		t.Fatal("Unwrap() did not return the wrapped error")
	}
}

func TestErrorStringsIncludeRankWhenPresent(t *testing.T) {
	withRank := Allocation(1, "kernel.Apply", errors.New("oom"))
	if got := withRank.Error(); !strings.Contains(got, "rank 1") {
		t.Fatalf("Error() = %q, want it to contain %q", got, "rank 1")
	}

	noRank := Usage("cli.parse", errors.New("missing argument"))
	if noRank.Rank != -1 {
		t.Fatalf("Usage() Rank = %d, want -1", noRank.Rank)
	}
	if got := noRank.Error(); strings.Contains(got, "rank") {
		t.Fatalf("Error() = %q, want no rank for Rank -1", got)
	}
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindIO:         "io",
		KindFormat:     "format",
		KindAllocation: "allocation",
		KindTransport:  "transport",
		KindUsage:      "usage",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
