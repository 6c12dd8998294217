package aggregate

// Table maps each URL to its request times, remembering the order in which
// URLs were first seen.
type Table struct {
	order []string
	times map[string][]float64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{times: make(map[string][]float64)}
}

// Add appends one sample for url.
func (t *Table) Add(url string, d float64) {
	ds, ok := t.times[url]
	if !ok {
		t.order = append(t.order, url)
	}
	t.times[url] = append(ds, d)
}

// URLs returns the distinct URLs in first-seen order. The slice must not be modified.
func (t *Table) URLs() []string { return t.order }

// Times returns the samples for url in encounter order.
func (t *Table) Times(url string) []float64 { return t.times[url] }

// Len is the number of distinct URLs.
func (t *Table) Len() int { return len(t.order) }

// Samples is the total number of stored request times.
func (t *Table) Samples() int {
	n := 0
	for _, ds := range t.times {
		n += len(ds)
	}
	return n
}
