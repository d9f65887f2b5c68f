// Package store holds the three source tables (injury records, product
// catalog, population reference) in memory with typed columns and the
// indexes the engine queries. A Store is immutable after construction and is
// safe to share across any number of concurrent sessions.
package store

import "sort"

type popKey struct {
	age int
	sex Sex
}

// Store is the immutable in-memory representation of the loaded tables.
type Store struct {
	records   []Record
	byProduct map[int][]int

	titles      []Product
	titleByCode map[int]string

	population map[popKey]int64
}

// New builds a Store from already-parsed tables. The loader is the only
// caller; everything after this point is read-only.
func New(records []Record, products []Product, population []PopulationCount) *Store {
	s := &Store{
		records:     records,
		byProduct:   make(map[int][]int),
		titleByCode: make(map[int]string, len(products)),
		population:  make(map[popKey]int64, len(population)),
	}

	for i, r := range records {
		s.byProduct[r.ProductCode] = append(s.byProduct[r.ProductCode], i)
	}

	s.titles = make([]Product, len(products))
	copy(s.titles, products)
	sort.SliceStable(s.titles, func(i, j int) bool {
		return s.titles[i].Title < s.titles[j].Title
	})
	for _, p := range products {
		s.titleByCode[p.Code] = p.Title
	}

	for _, p := range population {
		s.population[popKey{age: p.Age, sex: p.Sex}] = p.Population
	}

	return s
}

// Len returns the total number of injury records held.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a view over every injury record in load order.
func (s *Store) Records() View {
	return View{records: s.records}
}

// FilterByProduct returns the records whose product code matches, preserving
// original load order. An unknown code yields an empty view, not an error.
func (s *Store) FilterByProduct(code int) View {
	idx, ok := s.byProduct[code]
	if !ok {
		return View{records: s.records, idx: []int{}}
	}
	return View{records: s.records, idx: idx}
}

// LookupPopulation returns the reference population for an (age, sex)
// cohort. The reference covers ages 0-80; a miss is a defined absence and is
// reported through the second return value, never as an error.
func (s *Store) LookupPopulation(age int, sex Sex) (int64, bool) {
	n, ok := s.population[popKey{age: age, sex: sex}]
	return n, ok
}

// ProductTitle returns the catalog title for a product code.
func (s *Store) ProductTitle(code int) (string, bool) {
	t, ok := s.titleByCode[code]
	return t, ok
}

// ProductTitles enumerates the catalog sorted by title, for selector UIs.
func (s *Store) ProductTitles() []Product {
	out := make([]Product, len(s.titles))
	copy(out, s.titles)
	return out
}
