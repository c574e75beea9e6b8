// Package record turns enumerated schedules into season records and tallies
// them into distributions.
package record

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/okian/schedluck/internal/domain/model"
)

// Count pairs a record with the number of schedules that produce it.
type Count struct {
	Record model.Record `json:"record"`
	Count  uint64       `json:"count"`
}

// Distribution maps a Record to the number of schedules producing it.
// The zero value is not usable; call NewDistribution.
type Distribution struct {
	counts map[model.Record]uint64
}

// NewDistribution creates an empty distribution.
func NewDistribution() Distribution {
	return Distribution{counts: make(map[model.Record]uint64)}
}

// Add increments the count of r by n.
func (d Distribution) Add(r model.Record, n uint64) {
	if n == 0 {
		return
	}
	d.counts[r] += n
}

// Count returns how many schedules produced r.
func (d Distribution) Count(r model.Record) uint64 { return d.counts[r] }

// Len returns the number of distinct records.
func (d Distribution) Len() int { return len(d.counts) }

// Total returns the number of schedules counted.
func (d Distribution) Total() uint64 {
	var n uint64
	for _, c := range d.counts {
		n += c
	}
	return n
}

// Merge adds every count of other into d. Merging is commutative and
// associative, so partial results can be combined in any order.
func (d Distribution) Merge(other Distribution) {
	for r, c := range other.counts {
		d.counts[r] += c
	}
}

// Clone returns an independent copy.
func (d Distribution) Clone() Distribution {
	return Distribution{counts: maps.Clone(d.counts)}
}

// Equal reports whether both distributions hold the same counts.
func (d Distribution) Equal(other Distribution) bool {
	return maps.Equal(d.counts, other.counts)
}

// Records returns every record with a nonzero count, sorted by
// (wins, losses, ties).
func (d Distribution) Records() []Count {
	keys := slices.SortedFunc(maps.Keys(d.counts), model.Record.Compare)
	out := make([]Count, 0, len(keys))
	for _, r := range keys {
		out = append(out, Count{Record: r, Count: d.counts[r]})
	}
	return out
}

// Completeness lists every tie-free record for a season of weeks games, from
// zero wins upward, with zero counts shown explicitly.
func (d Distribution) Completeness(weeks int) []Count {
	out := make([]Count, 0, weeks+1)
	for wins := 0; wins <= weeks; wins++ {
		r := model.Record{Wins: wins, Losses: weeks - wins}
		out = append(out, Count{Record: r, Count: d.counts[r]})
	}
	return out
}

// MarshalJSON renders the distribution as its sorted record list so that
// equal distributions always encode to identical bytes.
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Records())
}

// UnmarshalJSON reads the format written by MarshalJSON.
func (d *Distribution) UnmarshalJSON(b []byte) error {
	var counts []Count
	if err := json.Unmarshal(b, &counts); err != nil {
		return err
	}
	*d = NewDistribution()
	for _, c := range counts {
		d.Add(c.Record, c.Count)
	}
	return nil
}
