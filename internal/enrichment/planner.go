package enrichment

// Plan splits missing keys into contiguous batches of at most maxBatchSize,
// preserving input order so progress logs and resumption are deterministic
// across runs. The missing set is assumed duplicate-free: Partition is the
// sole deduplication authority.
func Plan(missing []LookupKey, maxBatchSize int) []Batch {
	if len(missing) == 0 {
		return nil
	}
	if maxBatchSize < 1 {
		maxBatchSize = 1
	}

	batches := make([]Batch, 0, (len(missing)+maxBatchSize-1)/maxBatchSize)
	for start := 0; start < len(missing); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batches = append(batches, Batch(missing[start:end]))
	}
	return batches
}
