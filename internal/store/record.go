package store

import (
	"fmt"
	"time"
)

// Sex is the coded sex of an injury record or population cohort.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
)

// String returns the lowercase label used in the source tables.
func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	}
	return fmt.Sprintf("sex(%d)", uint8(s))
}

// ParseSex maps a source-table label onto a Sex code.
func ParseSex(v string) (Sex, error) {
	switch v {
	case "male", "M", "m":
		return SexMale, nil
	case "female", "F", "f":
		return SexFemale, nil
	}
	return 0, fmt.Errorf("unrecognized sex label %q", v)
}

// AgeUnknown marks a record whose age column was empty in the source data.
const AgeUnknown = -1

// Record is a single emergency-department injury case. Records are immutable
// once loaded; the engine only ever reads them.
type Record struct {
	TreatmentDate time.Time
	Age           int // AgeUnknown when missing
	Sex           Sex
	Race          string
	BodyPart      string
	Diagnosis     string
	Location      string
	ProductCode   int
	Weight        float64 // statistical scaling factor, always positive
	Narrative     string
}

// Product is one catalog entry mapping a product code to its display title.
type Product struct {
	Code  int
	Title string
}

// PopulationCount is one population-reference row keyed by (age, sex).
// The reference covers ages 0 through 80 only.
type PopulationCount struct {
	Age        int
	Sex        Sex
	Population int64
}
