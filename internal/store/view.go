package store

// View is a read-only window over a subset of the store's records. It carries
// index positions into the backing slice rather than copies, so building and
// passing views is cheap regardless of how many rows they select.
type View struct {
	records []Record
	idx     []int // nil means the view covers the whole backing slice
}

// Len returns the number of records visible through the view.
func (v View) Len() int {
	if v.idx == nil {
		return len(v.records)
	}
	return len(v.idx)
}

// At returns the i-th record of the view in the original load order.
func (v View) At(i int) *Record {
	if v.idx == nil {
		return &v.records[i]
	}
	return &v.records[v.idx[i]]
}
