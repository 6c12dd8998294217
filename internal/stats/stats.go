// Package stats reduces per-URL request times to the report rows.
package stats

import (
	"math"
	"sort"

	"loganalyzer/internal/aggregate"
)

// Precision is the number of decimals kept for every float in a URLStat.
const Precision = 3

// URLStat is one report row. Field order is the JSON key order of the report.
type URLStat struct {
	URL       string  `json:"url"`
	Count     int     `json:"count"`
	TimeAvg   float64 `json:"time_avg"`
	TimeMax   float64 `json:"time_max"`
	TimeSum   float64 `json:"time_sum"`
	TimeMed   float64 `json:"time_med"`
	TimePerc  float64 `json:"time_perc"`
	CountPerc float64 `json:"count_perc"`
}

// Reduce builds one URLStat per URL in table order. When maxURLs > 0 only the
// first maxURLs URLs (first-seen order, not ranked) are reduced. Percentages
// are shares of the reduced URLs' totals. The result is never nil.
func Reduce(table *aggregate.Table, maxURLs int) []URLStat {
	if table == nil || table.Len() == 0 {
		return []URLStat{}
	}
	urls := table.URLs()
	if maxURLs > 0 && maxURLs < len(urls) {
		urls = urls[:maxURLs]
	}

	out := make([]URLStat, 0, len(urls))
	sums := make([]float64, 0, len(urls))
	var (
		totalTime  float64
		totalCount int
	)
	for _, u := range urls {
		ds := append([]float64(nil), table.Times(u)...)
		sort.Float64s(ds)

		sum := 0.0
		for _, d := range ds {
			sum += d
		}
		n := len(ds)
		out = append(out, URLStat{
			URL:     u,
			Count:   n,
			TimeSum: roundN(sum, Precision),
			TimeAvg: roundN(sum/float64(n), Precision),
			TimeMax: roundN(ds[n-1], Precision),
			TimeMed: roundN(Median(ds), Precision),
		})
		sums = append(sums, sum)
		totalTime += sum
		totalCount += n
	}

	for i := range out {
		if totalTime > 0 {
			out[i].TimePerc = roundN(sums[i]/totalTime*100, Precision)
		}
		out[i].CountPerc = roundN(float64(out[i].Count)/float64(totalCount)*100, Precision)
	}
	return out
}

// Median of an ascending slice; 0 for an empty one.
func Median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// roundN rounds x to n decimals.
func roundN(x float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(x*p) / p
}
