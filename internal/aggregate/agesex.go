package aggregate

import (
	"sort"

	"github.com/vk/injurylens/internal/store"
)

// rateScale expresses rates per 10,000 people of the reference population.
const rateScale = 10000

// PopulationLookup resolves the reference population for an (age, sex)
// cohort. A miss is a defined absence, not an error.
type PopulationLookup interface {
	LookupPopulation(age int, sex store.Sex) (int64, bool)
}

// AgeSexRow is one cohort of the age/sex summary. Rate is nil when the
// reference table has no row for the cohort (ages above 80); the weighted
// count is still present so count-mode consumers are unaffected.
type AgeSexRow struct {
	Age        int
	Sex        store.Sex
	Weight     float64
	Population int64 // zero when Rate is nil
	Rate       *float64
}

type ageSexKey struct {
	age int
	sex store.Sex
}

// AgeSexSummary groups the view's records by (age, sex), sums weights, and
// joins each cohort to the reference population to derive an incidence rate
// per 10,000. Records with an unknown age carry no cohort and are skipped.
// Rows come back ordered by age ascending, then sex, for stable plotting.
func AgeSexSummary(v store.View, pop PopulationLookup) []AgeSexRow {
	totals := make(map[ageSexKey]float64)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		if r.Age == store.AgeUnknown {
			continue
		}
		totals[ageSexKey{age: r.Age, sex: r.Sex}] += r.Weight
	}

	rows := make([]AgeSexRow, 0, len(totals))
	for k, weight := range totals {
		row := AgeSexRow{Age: k.age, Sex: k.sex, Weight: weight}
		if n, ok := pop.LookupPopulation(k.age, k.sex); ok {
			rate := weight / float64(n) * rateScale
			row.Population = n
			row.Rate = &rate
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Age != rows[j].Age {
			return rows[i].Age < rows[j].Age
		}
		return rows[i].Sex < rows[j].Sex
	})
	return rows
}
