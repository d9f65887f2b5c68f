package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/injurylens/internal/store"
)

func diagnosisOf(r *store.Record) string { return r.Diagnosis }

func viewOf(records []store.Record) store.View {
	return store.New(records, nil, nil).Records()
}

func TestWeightedTopN(t *testing.T) {
	records := []store.Record{
		{Diagnosis: "A", Weight: 1},
		{Diagnosis: "A", Weight: 2},
		{Diagnosis: "B", Weight: 5},
		{Diagnosis: "C", Weight: 1},
	}

	t.Run("top groups plus other bucket", func(t *testing.T) {
		got, err := WeightedTopN(viewOf(records), diagnosisOf, 2)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, Bucket{Label: "B", Weight: 5}, got[0])
		assert.Equal(t, Bucket{Label: "A", Weight: 3}, got[1])
		assert.Equal(t, Bucket{Label: OtherLabel, Weight: 1}, got[2])
	})

	t.Run("no other bucket when n covers all categories", func(t *testing.T) {
		got, err := WeightedTopN(viewOf(records), diagnosisOf, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, b := range got {
			assert.NotEqual(t, OtherLabel, b.Label)
		}
	})

	t.Run("n larger than category count", func(t *testing.T) {
		got, err := WeightedTopN(viewOf(records), diagnosisOf, 10)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("boundary ties rank in first-encountered order", func(t *testing.T) {
		tied := []store.Record{
			{Diagnosis: "X", Weight: 2},
			{Diagnosis: "Y", Weight: 2},
			{Diagnosis: "Z", Weight: 2},
		}
		got, err := WeightedTopN(viewOf(tied), diagnosisOf, 2)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "X", got[0].Label)
		assert.Equal(t, "Y", got[1].Label)
		assert.Equal(t, Bucket{Label: OtherLabel, Weight: 2}, got[2])
	})

	t.Run("empty view yields empty table", func(t *testing.T) {
		got, err := WeightedTopN(viewOf(nil), diagnosisOf, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("n below one is rejected", func(t *testing.T) {
		_, err := WeightedTopN(viewOf(records), diagnosisOf, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestWeightedTopNDoesNotMutateInput(t *testing.T) {
	records := []store.Record{
		{Diagnosis: "A", Weight: 1},
		{Diagnosis: "B", Weight: 9},
	}
	v := viewOf(records)

	first, err := WeightedTopN(v, diagnosisOf, 1)
	require.NoError(t, err)
	second, err := WeightedTopN(v, diagnosisOf, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
