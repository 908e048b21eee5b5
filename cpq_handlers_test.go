package main

import (
	"testing"

	"github.com/quotelane/cpq_backend/config"
)

func TestListLimit(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", config.SearchLimit},
		{"abc", config.SearchLimit},
		{"0", config.SearchLimit},
		{"-5", config.SearchLimit},
		{"25", 25},
		{" 25 ", 25},
		{"100", 100},
		{"5000", maxListLimit},
	}
	for _, tc := range cases {
		if got := listLimit(tc.raw); got != tc.want {
			t.Fatalf("listLimit(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
