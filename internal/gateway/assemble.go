package gateway

// assembleResponse merges caller extra fields into the engine's results,
// keyed by filepath. Duplicate keys are last-write-wins; a filepath the
// engine dropped is skipped silently. Output order follows map iteration
// and carries no positional guarantee.
func assembleResponse(instances []Instance, results []Result, extraFields []string) []Result {
	byPath := make(map[string]*Result, len(results))
	for i := range results {
		byPath[results[i].FilePath] = &results[i]
	}
	for _, inst := range instances {
		rec, ok := byPath[inst.FilePath]
		if !ok {
			continue
		}
		for _, field := range extraFields {
			v, present := inst.Extra[field]
			if !present {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[field] = v
		}
	}
	merged := make([]Result, 0, len(byPath))
	for _, rec := range byPath {
		merged = append(merged, *rec)
	}
	return merged
}
