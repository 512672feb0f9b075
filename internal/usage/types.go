// Package usage counts the Gemini tokens spent by the concierge and keeps
// the totals in a store slot next to the visited set.
package usage

// Operation names recorded by the itinerary client.
const (
	OpItinerary = "itinerary"
	OpAdvice    = "travel_advice"
)

// Counts holds input/output sums.
type Counts struct {
	Calls  int64 `json:"calls"`
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (c *Counts) Add(input, output int) {
	c.Calls++
	c.Input += int64(input)
	c.Output += int64(output)
	c.Total += int64(input + output)
}

// Stats is the persisted aggregate, broken down by model and operation.
type Stats struct {
	Version     string            `json:"version"`
	Total       Counts            `json:"total"`
	ByModel     map[string]Counts `json:"by_model"`
	ByOperation map[string]Counts `json:"by_operation"`
}

func newStats() Stats {
	return Stats{
		Version:     "1",
		ByModel:     make(map[string]Counts),
		ByOperation: make(map[string]Counts),
	}
}

func (s Stats) clone() Stats {
	out := s
	out.ByModel = copyCounts(s.ByModel)
	out.ByOperation = copyCounts(s.ByOperation)
	return out
}

func copyCounts(src map[string]Counts) map[string]Counts {
	dst := make(map[string]Counts, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func addTo(m map[string]Counts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}
