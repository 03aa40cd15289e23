package domain

// MonthlyVolume is the ticket count reported for one month.
type MonthlyVolume struct {
	Month    string
	Total    int
	Resolved int
}

// CategoryCount is the ticket count for one category.
type CategoryCount struct {
	Category string
	Count    int
}

// Metrics is a precomputed reporting aggregate. No action mutates it.
type Metrics struct {
	AdoptionRate           float64
	AverageResolutionHours float64
	CSATScore              float64
	TicketVolume           []MonthlyVolume
	PopularCategories      []CategoryCount
}

// Clone returns a deep copy of the aggregate.
func (m Metrics) Clone() Metrics {
	m.TicketVolume = append([]MonthlyVolume(nil), m.TicketVolume...)
	m.PopularCategories = append([]CategoryCount(nil), m.PopularCategories...)
	return m
}
