package pagemath

import (
	"strings"
	"testing"
)

func TestCountWords(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t  ", 0},
		{"one", 1},
		{"one two three", 3},
		{"  spaced\tout\nwords  here ", 4},
	}
	for _, c := range cases {
		if got := CountWords(c.in); got != c.want {
			t.Fatalf("CountWords(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestEstimatePages(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{299, 1},
		{300, 1},
		{301, 2},
		{600, 2},
		{601, 3},
	}
	for _, c := range cases {
		if got := EstimatePages(c.words); got != c.want {
			t.Fatalf("EstimatePages(%d) = %d, want %d", c.words, got, c.want)
		}
	}
}

func TestEstimatePagesMatchesCountWords(t *testing.T) {
	text := strings.Repeat("word ", 450)
	words := CountWords(text)
	if words != 450 {
		t.Fatalf("expected 450 words, got %d", words)
	}
	if got := EstimatePages(words); got != 2 {
		t.Fatalf("EstimatePages(450) = %d, want 2", got)
	}
}

func TestDistributePagesEven(t *testing.T) {
	got := DistributePages(100, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 shares, got %d", len(got))
	}
	sum := 0
	for i, share := range got {
		if share != 20 {
			t.Fatalf("share %d = %d, want 20", i, share)
		}
		sum += share
	}
	if sum != 100 {
		t.Fatalf("shares sum to %d, want 100", sum)
	}
}

func TestDistributePagesRemainder(t *testing.T) {
	got := DistributePages(10, 3)
	want := []int{4, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DistributePages(10,3) = %v, want %v", got, want)
		}
	}

	got = DistributePages(7, 4)
	want = []int{2, 2, 2, 1}
	sum := 0
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DistributePages(7,4) = %v, want %v", got, want)
		}
		sum += got[i]
	}
	if sum != 7 {
		t.Fatalf("shares sum to %d, want 7", sum)
	}
}

func TestDistributePagesDegenerate(t *testing.T) {
	if got := DistributePages(10, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
	if got := DistributePages(-3, 2); got[0] != 0 || got[1] != 0 {
		t.Fatalf("expected zero shares for negative total, got %v", got)
	}
}

func TestPageRange(t *testing.T) {
	if got := PageRange(20); got != "20-22" {
		t.Fatalf("PageRange(20) = %q, want %q", got, "20-22")
	}
	if got := PageRange(0); got != "0-2" {
		t.Fatalf("PageRange(0) = %q, want %q", got, "0-2")
	}
}
