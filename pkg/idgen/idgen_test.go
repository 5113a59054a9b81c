package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	gen := New()
	assert.NotNil(t, gen)
	assert.NotNil(t, gen.sf)
}

func TestGenerateJobID(t *testing.T) {
	t.Parallel()

	gen := New()

	ids := make(map[string]bool)
	var prev uint64
	for i := 0; i < 100; i++ {
		id, err := gen.GenerateJobID()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "job-"), id)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true

		seq, ok := ParseJobID(id)
		require.True(t, ok)
		if i > 0 {
			assert.Greater(t, seq, prev)
		}
		prev = seq
	}
}

func TestParseJobID(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		id     string
		want   uint64
		wantOK bool
	}{
		{name: "valid", id: "job-42", want: 42, wantOK: true},
		{name: "no prefix", id: "42", wantOK: false},
		{name: "other prefix", id: "vol-42", wantOK: false},
		{name: "empty number", id: "job-", wantOK: false},
		{name: "not a number", id: "job-abc", wantOK: false},
		{name: "empty", id: "", wantOK: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseJobID(tc.id)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultGenerator(t *testing.T) {
	t.Parallel()

	assert.Same(t, DefaultGenerator(), DefaultGenerator())

	id, err := GenerateJobID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "job-"))
}
