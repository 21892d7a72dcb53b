package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	keys := func(lemmas ...string) []LookupKey {
		result := make([]LookupKey, len(lemmas))
		for i, lemma := range lemmas {
			result[i] = LookupKey{Lemma: lemma, Language: "de"}
		}
		return result
	}

	tests := []struct {
		name          string
		missing       []LookupKey
		maxBatchSize  int
		expectedSizes []int
	}{
		{
			name:          "empty input yields no batches",
			missing:       nil,
			maxBatchSize:  20,
			expectedSizes: nil,
		},
		{
			name:          "fewer keys than batch size",
			missing:       keys("a", "b", "c"),
			maxBatchSize:  20,
			expectedSizes: []int{3},
		},
		{
			name:          "exact multiple of batch size",
			missing:       keys("a", "b", "c", "d"),
			maxBatchSize:  2,
			expectedSizes: []int{2, 2},
		},
		{
			name:          "remainder forms a short final batch",
			missing:       keys("a", "b", "c", "d", "e"),
			maxBatchSize:  2,
			expectedSizes: []int{2, 2, 1},
		},
		{
			name:          "batch size below one is clamped",
			missing:       keys("a", "b"),
			maxBatchSize:  0,
			expectedSizes: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := Plan(tt.missing, tt.maxBatchSize)

			var sizes []int
			var flattened []LookupKey
			for _, batch := range batches {
				sizes = append(sizes, len(batch))
				flattened = append(flattened, batch...)
			}
			assert.Equal(t, tt.expectedSizes, sizes)
			assert.Equal(t, tt.missing, flattened)
		})
	}
}
