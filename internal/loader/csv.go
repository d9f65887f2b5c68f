package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vk/injurylens/internal/store"
)

const treatmentDateLayout = "2006-01-02"

// header maps column names onto their positions in a CSV file.
type header map[string]int

func readHeader(r *csv.Reader, required ...string) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", name)
		}
	}
	return h, nil
}

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseInjuries reads the injury-record table from CSV.
func ParseInjuries(r io.Reader) ([]store.Record, error) {
	cr := csv.NewReader(r)

	h, err := readHeader(cr, "trmt_date", "age", "sex", "body_part", "diag", "location", "prod", "weight", "narrative")
	if err != nil {
		return nil, err
	}

	var records []store.Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("injuries row %d: %w", line, err)
		}
		line++

		rec, err := parseInjuryRow(h, row)
		if err != nil {
			return nil, fmt.Errorf("injuries row %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseInjuryRow(h header, row []string) (store.Record, error) {
	var rec store.Record
	var err error

	if v := h.get(row, "trmt_date"); v != "" {
		rec.TreatmentDate, err = time.Parse(treatmentDateLayout, v)
		if err != nil {
			return rec, fmt.Errorf("bad trmt_date: %w", err)
		}
	}

	rec.Age = store.AgeUnknown
	if v := h.get(row, "age"); v != "" {
		// Infant ages appear as fractions of a year; whole years elsewhere.
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return rec, fmt.Errorf("bad age %q", v)
		}
		rec.Age = int(f)
	}

	rec.Sex, err = store.ParseSex(h.get(row, "sex"))
	if err != nil {
		return rec, err
	}

	rec.Race = h.get(row, "race")
	rec.BodyPart = h.get(row, "body_part")
	rec.Diagnosis = h.get(row, "diag")
	rec.Location = h.get(row, "location")
	rec.Narrative = h.get(row, "narrative")

	rec.ProductCode, err = strconv.Atoi(h.get(row, "prod"))
	if err != nil {
		return rec, fmt.Errorf("bad product code: %w", err)
	}

	rec.Weight, err = strconv.ParseFloat(h.get(row, "weight"), 64)
	if err != nil || rec.Weight <= 0 {
		return rec, fmt.Errorf("bad weight %q", h.get(row, "weight"))
	}

	return rec, nil
}

// ParseProducts reads the product catalog from CSV.
func ParseProducts(r io.Reader) ([]store.Product, error) {
	cr := csv.NewReader(r)

	h, err := readHeader(cr, "code", "title")
	if err != nil {
		return nil, err
	}

	var products []store.Product
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("products row %d: %w", line, err)
		}
		line++

		code, err := strconv.Atoi(h.get(row, "code"))
		if err != nil {
			return nil, fmt.Errorf("products row %d: bad code: %w", line, err)
		}
		products = append(products, store.Product{Code: code, Title: h.get(row, "title")})
	}
	return products, nil
}

// ParsePopulation reads the (age, sex) population reference from CSV.
func ParsePopulation(r io.Reader) ([]store.PopulationCount, error) {
	cr := csv.NewReader(r)

	h, err := readHeader(cr, "age", "sex", "n")
	if err != nil {
		return nil, err
	}

	var counts []store.PopulationCount
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("population row %d: %w", line, err)
		}
		line++

		var pc store.PopulationCount
		pc.Age, err = strconv.Atoi(h.get(row, "age"))
		if err != nil {
			return nil, fmt.Errorf("population row %d: bad age: %w", line, err)
		}
		pc.Sex, err = store.ParseSex(h.get(row, "sex"))
		if err != nil {
			return nil, fmt.Errorf("population row %d: %w", line, err)
		}
		pc.Population, err = strconv.ParseInt(h.get(row, "n"), 10, 64)
		if err != nil || pc.Population <= 0 {
			return nil, fmt.Errorf("population row %d: bad count %q", line, h.get(row, "n"))
		}
		counts = append(counts, pc)
	}
	return counts, nil
}
