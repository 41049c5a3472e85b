package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2026, time.March, 2, h, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(9), at(10), at(9), at(10), true},
		{"partial head", at(9), at(10), at(8), at(9).Add(30 * time.Minute), true},
		{"partial tail", at(9), at(10), at(9).Add(30 * time.Minute), at(11), true},
		{"contained", at(9), at(10), at(9).Add(10 * time.Minute), at(9).Add(20 * time.Minute), true},
		{"containing", at(9), at(10), at(8), at(11), true},
		{"back-to-back before", at(8), at(9), at(9), at(10), false},
		{"back-to-back after", at(10), at(11), at(9), at(10), false},
		{"disjoint", at(8), at(9), at(10), at(11), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd), "overlap is symmetric")
		})
	}
}
