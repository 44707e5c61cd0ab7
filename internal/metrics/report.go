package metrics

import (
	"sort"
	"time"
)

// Report is the structured detailed report over a store's samples: an
// overall summary, a per-endpoint breakdown, and a histogram of the most
// frequent error messages.
type Report struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Summary     Stats            `json:"summary"`
	Endpoints   []EndpointReport `json:"endpoints,omitempty"`
	Errors      []ErrorBucket    `json:"errors,omitempty"`
}

// EndpointReport carries aggregate statistics for one distinct endpoint.
type EndpointReport struct {
	Endpoint string `json:"endpoint"`
	Stats    Stats  `json:"stats"`
}

// ErrorBucket is one row of the error histogram.
type ErrorBucket struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// topErrorBuckets is the cap on the error histogram in a report.
const topErrorBuckets = 10

// Report groups the stored samples by distinct endpoint, computes
// per-endpoint statistics, and tallies the most frequent error messages
// across all failed samples. Endpoints appear in first-seen order; error
// buckets are sorted by descending count with ties broken by first-seen
// order.
func (st *Store) Report() Report {
	samples := st.Samples()

	rep := Report{
		GeneratedAt: time.Now(),
		Summary:     Compute(samples),
	}

	byEndpoint := make(map[string][]Sample)
	var endpointOrder []string
	errCounts := make(map[string]int)
	var errOrder []string

	for _, s := range samples {
		if _, seen := byEndpoint[s.Endpoint]; !seen {
			endpointOrder = append(endpointOrder, s.Endpoint)
		}
		byEndpoint[s.Endpoint] = append(byEndpoint[s.Endpoint], s)

		if !s.Success && s.ErrorMessage != "" {
			if _, seen := errCounts[s.ErrorMessage]; !seen {
				errOrder = append(errOrder, s.ErrorMessage)
			}
			errCounts[s.ErrorMessage]++
		}
	}

	for _, endpoint := range endpointOrder {
		rep.Endpoints = append(rep.Endpoints, EndpointReport{
			Endpoint: endpoint,
			Stats:    Compute(byEndpoint[endpoint]),
		})
	}

	rep.Errors = flattenErrorBuckets(errCounts, errOrder)
	return rep
}

func flattenErrorBuckets(counts map[string]int, order []string) []ErrorBucket {
	if len(counts) == 0 {
		return nil
	}
	firstSeen := make(map[string]int, len(order))
	for i, msg := range order {
		firstSeen[msg] = i
	}
	rows := make([]ErrorBucket, 0, len(counts))
	for _, msg := range order {
		rows = append(rows, ErrorBucket{Message: msg, Count: counts[msg]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return firstSeen[rows[i].Message] < firstSeen[rows[j].Message]
		}
		return rows[i].Count > rows[j].Count
	})
	if len(rows) > topErrorBuckets {
		rows = rows[:topErrorBuckets]
	}
	return rows
}
