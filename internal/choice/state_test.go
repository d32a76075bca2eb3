package choice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-choice-service/internal/domain"
)

func TestRestoreRoundTripMultiAnswer(t *testing.T) {
	e := New([]bool{true, false, true, true}, behaviour("multiple", false, 100))
	e.Toggle(3)
	e.Toggle(0)
	e.Toggle(1)
	saved := e.CurrentState()
	before := e.SelectedIndexes()

	e.Reset()
	e.RestoreState(saved.Answers)

	assert.Equal(t, before, e.SelectedIndexes())
}

func TestRestoreSingleAnswerKeepsLast(t *testing.T) {
	e := New([]bool{true, false, false}, behaviour("single", false, 100))
	e.RestoreState([]int{0, 2, 1})

	assert.Equal(t, []int{1}, e.SelectedIndexes())
	assert.Equal(t, 0, e.Score())
}

func TestRestoreDoesNotNotify(t *testing.T) {
	calls := 0
	e := New([]bool{true, true}, behaviour("multiple", false, 100), WithInteracted(func(int) { calls++ }))
	e.RestoreState([]int{0, 1})

	assert.Zero(t, calls)
	assert.Equal(t, []int{0, 1}, e.SelectedIndexes())
}

func TestRestoreSkipsInvalidIndexes(t *testing.T) {
	e := New([]bool{true, false, true}, behaviour("multiple", false, 100))
	e.RestoreState([]int{-4, 2, 99, 0})

	assert.Equal(t, []int{0, 2}, e.SelectedIndexes())
}

func TestCurrentStateIsPure(t *testing.T) {
	e := New([]bool{true, false}, behaviour("multiple", false, 100))
	e.Toggle(1)

	first := e.CurrentState()
	first.Answers[0] = 0
	assert.Equal(t, []int{1}, e.CurrentState().Answers)
	assert.Equal(t, []int{1}, e.SelectedIndexes())
}

func TestFormatAndParseIndexes(t *testing.T) {
	tests := []struct {
		raw     string
		indexes []int
	}{
		{"", []int{}},
		{"4", []int{4}},
		{"1[,]3", []int{1, 3}},
		{"0[,]2[,]5", []int{0, 2, 5}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.raw, FormatIndexes(tc.indexes))
		got, err := ParseIndexes(tc.raw)
		require.NoError(t, err)
		assert.Equal(t, tc.indexes, got)
	}
}

func TestParseIndexesRejectsGarbage(t *testing.T) {
	_, err := ParseIndexes("1,3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}
