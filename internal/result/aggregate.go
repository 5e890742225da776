package result

// Aggregate folds a batch of valueless results into one. If every result
// succeeded (including the empty batch) it returns Done. Otherwise it returns
// a failure wrapping a Group labeled with the calling stage, whose children
// are exactly the failed results in input order. Successes are dropped;
// nesting is preserved one level at a time, never re-flattened.
func Aggregate(label string, results []Status) Status {
	failures := collectFailures(results)
	if len(failures) == 0 {
		return Done()
	}
	return Err[Unit](&Group{Label: label, Children: failures})
}

// AggregateValues folds a batch of value-carrying results. If every result
// succeeded it returns the extracted values in input order. Any failure takes
// the same path as Aggregate, so no failure detail is lost by picking the
// value-carrying entry point.
func AggregateValues[T any](label string, results []Result[T]) Result[[]T] {
	statuses := make([]Status, len(results))
	for i, r := range results {
		statuses[i] = r.Status()
	}
	failures := collectFailures(statuses)
	if len(failures) > 0 {
		return Err[[]T](&Group{Label: label, Children: failures})
	}
	values := make([]T, len(results))
	for i, r := range results {
		values[i] = r.value
	}
	return Ok(values)
}

func collectFailures(results []Status) []Status {
	var failures []Status
	for _, r := range results {
		if r.IsErr() {
			failures = append(failures, r)
		}
	}
	return failures
}
