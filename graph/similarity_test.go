package graph

import (
	"testing"

	"github.com/poiesic/issuegraph/core"
	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b *core.Record
		want float64
	}{
		{
			name: "identical",
			a:    record(core.RecordKindIssue, "r", 1, "a b", "u", "x"),
			b:    record(core.RecordKindIssue, "r", 2, "a b", "u", "x"),
			want: 1,
		},
		{
			name: "nothing shared",
			a:    record(core.RecordKindIssue, "r1", 1, "alpha", "u1"),
			b:    record(core.RecordKindIssue, "r2", 2, "beta", "u2"),
			want: 0,
		},
		{
			name: "half title overlap",
			a:    record(core.RecordKindIssue, "", 1, "login bug", ""),
			b:    record(core.RecordKindIssue, "", 2, "login crash", ""),
			want: 0.2,
		},
		{
			name: "empty repository and author are not shared",
			a:    record(core.RecordKindIssue, "", 1, "", ""),
			b:    record(core.RecordKindIssue, "", 2, "", ""),
			want: 0,
		},
		{
			name: "shared words, label and repository",
			a:    record(core.RecordKindIssue, "org/repo", 1, "fix login bug", "", "bug"),
			b:    record(core.RecordKindIssue, "org/repo", 2, "fix login error", "", "bug"),
			want: 0.4*2.0/3.0 + 0.3 + 0.2,
		},
		{
			name: "repository and author only",
			a:    record(core.RecordKindIssue, "r", 1, "one", "u"),
			b:    record(core.RecordKindIssue, "r", 2, "two", "u"),
			want: 0.3,
		},
		{
			name: "nil",
			a:    nil,
			b:    record(core.RecordKindIssue, "r", 2, "two", "u"),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, Similarity(tt.b, tt.a), Similarity(tt.a, tt.b), 1e-12)
		})
	}
}

func TestCandidatePairs(t *testing.T) {
	records := []*core.Record{
		record(core.RecordKindIssue, "r1", 1, "a", "u1"),
		record(core.RecordKindIssue, "r2", 2, "b", "u1"),
		record(core.RecordKindIssue, "r3", 3, "c", "u3", "bug"),
		record(core.RecordKindIssue, "r4", 4, "d", "u4", "bug"),
	}

	assert.Len(t, candidatePairs(records, false), 6)
	assert.Equal(t, [][2]int{{0, 1}, {2, 3}}, candidatePairs(records, true))
	assert.Empty(t, candidatePairs(nil, false))
}
