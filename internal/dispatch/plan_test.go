// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		want    []Span
		wantErr error
	}{
		{
			name:    "ten commands three workers",
			n:       10,
			workers: 3,
			want:    []Span{{Start: 0, Len: 3}, {Start: 3, Len: 3}, {Start: 6, Len: 4}},
		},
		{
			name:    "more workers than commands is clamped",
			n:       3,
			workers: 10,
			want:    []Span{{Start: 0, Len: 1}, {Start: 1, Len: 1}, {Start: 2, Len: 1}},
		},
		{
			name:    "single worker takes everything",
			n:       5,
			workers: 1,
			want:    []Span{{Start: 0, Len: 5}},
		},
		{
			name:    "even split",
			n:       8,
			workers: 4,
			want:    []Span{{Start: 0, Len: 2}, {Start: 2, Len: 2}, {Start: 4, Len: 2}, {Start: 6, Len: 2}},
		},
		{
			name:    "last span absorbs a large leftover",
			n:       11,
			workers: 6,
			want: []Span{
				{Start: 0, Len: 1}, {Start: 1, Len: 1}, {Start: 2, Len: 1},
				{Start: 3, Len: 1}, {Start: 4, Len: 1}, {Start: 5, Len: 6},
			},
		},
		{
			name:    "no commands",
			n:       0,
			workers: 4,
			want:    nil,
		},
		{
			name:    "zero workers",
			n:       4,
			workers: 0,
			wantErr: ErrInvalidWorkerCount,
		},
		{
			name:    "negative workers",
			n:       4,
			workers: -2,
			wantErr: ErrInvalidWorkerCount,
		},
		{
			name:    "zero workers and no commands is still an error",
			n:       0,
			workers: 0,
			wantErr: ErrInvalidWorkerCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.n, tt.workers)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_CoversEveryIndexOnce(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for k := 1; k <= 45; k++ {
			spans, err := Plan(n, k)
			require.NoError(t, err)
			require.Len(t, spans, min(n, k), "n=%d k=%d", n, k)

			seen := make([]int, n)
			next := 0

			for i, s := range spans {
				assert.Equal(t, next, s.Start, "spans must be contiguous, n=%d k=%d", n, k)
				assert.Positive(t, s.Len, "span must not be empty, n=%d k=%d", n, k)

				eff := len(spans)
				if i < eff-1 {
					assert.Equal(t, n/eff, s.Len, "n=%d k=%d span=%d", n, k, i)
				} else {
					assert.Equal(t, n/eff+n%eff, s.Len, "n=%d k=%d last span", n, k)
				}

				for j := s.Start; j < s.End(); j++ {
					seen[j]++
				}

				next = s.End()
			}

			assert.Equal(t, n, next, "n=%d k=%d", n, k)

			for idx, c := range seen {
				assert.Equal(t, 1, c, "index %d covered %d times, n=%d k=%d", idx, c, n, k)
			}
		}
	}
}

func TestEffectiveWorkers(t *testing.T) {
	assert.Equal(t, 3, EffectiveWorkers(3, 10))
	assert.Equal(t, 3, EffectiveWorkers(10, 3))
	assert.Equal(t, 5, EffectiveWorkers(5, 5))
}

func TestSpan_String(t *testing.T) {
	assert.Equal(t, "[6,10)", Span{Start: 6, Len: 4}.String())
	assert.Equal(t, 10, Span{Start: 6, Len: 4}.End())
}
