package domain

import (
	"sort"
	"time"
)

// DateKey is the layout used for daily series keys.
const DateKey = "2006-01-02"

// ResolutionStats describes the created-to-closed duration distribution over
// all closed tickets in a load.
type ResolutionStats struct {
	Count  int           `json:"count"`
	Mean   time.Duration `json:"mean"`
	Median time.Duration `json:"median"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
}

// AgeBuckets counts open tickets by how long they have been waiting.
type AgeBuckets struct {
	Under24h int `json:"under_24h"`
	H24to48  int `json:"h24_to_48"`
	H48to72  int `json:"h48_to_72"`
	Over72h  int `json:"over_72h"`
}

// ReportSummary is the aggregate produced from one export load. It is
// rebuilt wholesale on every run and never mutated afterwards.
type ReportSummary struct {
	GeneratedAt time.Time `json:"generated_at"`

	TotalTickets  int `json:"total_tickets"`
	OpenTickets   int `json:"open_tickets"`
	ClosedTickets int `json:"closed_tickets"`

	ByState    map[string]int `json:"by_state"`
	ByQueue    map[string]int `json:"by_queue"`
	ByPriority map[string]int `json:"by_priority"`

	DailyNew    map[string]int `json:"daily_new"`
	DailyClosed map[string]int `json:"daily_closed"`

	OpenByPriority map[string]int `json:"open_by_priority"`
	OpenAgeBuckets AgeBuckets     `json:"open_age_buckets"`

	NoFirstResponse           int            `json:"no_first_response"`
	NoFirstResponseByPriority map[string]int `json:"no_first_response_by_priority"`

	CreatedToday int `json:"created_today"`
	ClosedToday  int `json:"closed_today"`

	Resolution ResolutionStats `json:"resolution"`
}

// Summarize aggregates ticket records into a ReportSummary. It is pure:
// identical records and reference time always produce an identical summary,
// and an empty load produces a zero-valued summary rather than an error.
// The reference time anchors "today" and the age of open tickets.
func Summarize(records []TicketRecord, ref time.Time) *ReportSummary {
	s := &ReportSummary{
		GeneratedAt:               ref,
		ByState:                   map[string]int{},
		ByQueue:                   map[string]int{},
		ByPriority:                map[string]int{},
		DailyNew:                  map[string]int{},
		DailyClosed:               map[string]int{},
		OpenByPriority:            map[string]int{},
		NoFirstResponseByPriority: map[string]int{},
	}

	today := ref.Format(DateKey)
	var resolutions []time.Duration

	for i := range records {
		t := &records[i]
		s.TotalTickets++

		if t.State != "" {
			s.ByState[t.State]++
		} else {
			s.ByState["(unknown)"]++
		}
		if t.Queue != "" {
			s.ByQueue[t.Queue]++
		}
		if t.Priority != "" {
			s.ByPriority[t.Priority]++
		}

		if !t.CreatedAt.IsZero() {
			day := t.CreatedAt.Format(DateKey)
			s.DailyNew[day]++
			if day == today {
				s.CreatedToday++
			}
		}
		if t.ClosedAt != nil {
			day := t.ClosedAt.Format(DateKey)
			s.DailyClosed[day]++
			if day == today {
				s.ClosedToday++
			}
		}

		if t.IsOpen() {
			s.OpenTickets++
			if t.Priority != "" {
				s.OpenByPriority[t.Priority]++
			}
			bucketAge(&s.OpenAgeBuckets, t.AgeHours(ref))
		} else {
			s.ClosedTickets++
		}

		// Unanswered tickets that are already done are noise for the
		// first-response follow-up list, so only still-live states count.
		if t.FirstResponse == nil && !IsClosedState(t.State) {
			s.NoFirstResponse++
			if t.Priority != "" {
				s.NoFirstResponseByPriority[t.Priority]++
			}
		}

		if d, ok := t.ResolutionTime(); ok {
			resolutions = append(resolutions, d)
		}
	}

	s.Resolution = resolutionStats(resolutions)
	return s
}

func bucketAge(b *AgeBuckets, hours float64) {
	switch {
	case hours <= 24:
		b.Under24h++
	case hours <= 48:
		b.H24to48++
	case hours <= 72:
		b.H48to72++
	default:
		b.Over72h++
	}
}

func resolutionStats(durations []time.Duration) ResolutionStats {
	stats := ResolutionStats{Count: len(durations)}
	if len(durations) == 0 {
		return stats
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	stats.Mean = total / time.Duration(len(sorted))
	stats.Median = percentile(sorted, 50)
	stats.P90 = percentile(sorted, 90)
	stats.P95 = percentile(sorted, 95)
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	return stats
}

// percentile uses the nearest-rank method over an already sorted slice.
func percentile(sorted []time.Duration, pct int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (len(sorted)*pct + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// SortedKeys returns map keys in ascending order, for deterministic output.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeysByPriority returns map keys ordered by OTRS priority rank, falling back
// to lexical order for labels without a leading number.
func KeysByPriority(m map[string]int) []string {
	keys := SortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		return PriorityRank(keys[i]) < PriorityRank(keys[j])
	})
	return keys
}
