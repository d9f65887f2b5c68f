package loader

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vk/injurylens/internal/store"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// querySQLite opens the database read-only, runs one query against the named
// table, and hands each row to scan.
func querySQLite(ctx context.Context, path, query string, scan func(rows *sql.Rows) error) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query sqlite %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// loadInjuriesSQLite reads the injury-record table from a SQLite database.
func loadInjuriesSQLite(ctx context.Context, path, table string) ([]store.Record, error) {
	query := fmt.Sprintf(
		`SELECT trmt_date, age, sex, race, body_part, diag, location, prod, weight, narrative FROM %q`, table)

	var records []store.Record
	err := querySQLite(ctx, path, query, func(rows *sql.Rows) error {
		var (
			rec     store.Record
			date    sql.NullString
			age     sql.NullFloat64
			sexText string
		)
		if err := rows.Scan(&date, &age, &sexText, &rec.Race, &rec.BodyPart,
			&rec.Diagnosis, &rec.Location, &rec.ProductCode, &rec.Weight, &rec.Narrative); err != nil {
			return fmt.Errorf("scan injuries: %w", err)
		}
		if date.Valid && date.String != "" {
			t, err := time.Parse(treatmentDateLayout, date.String)
			if err != nil {
				return fmt.Errorf("bad trmt_date %q: %w", date.String, err)
			}
			rec.TreatmentDate = t
		}
		rec.Age = store.AgeUnknown
		if age.Valid {
			rec.Age = int(age.Float64)
		}
		sex, err := store.ParseSex(sexText)
		if err != nil {
			return err
		}
		rec.Sex = sex
		if rec.Weight <= 0 {
			return fmt.Errorf("bad weight %v", rec.Weight)
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// loadProductsSQLite reads the product catalog from a SQLite database.
func loadProductsSQLite(ctx context.Context, path, table string) ([]store.Product, error) {
	query := fmt.Sprintf(`SELECT code, title FROM %q`, table)

	var products []store.Product
	err := querySQLite(ctx, path, query, func(rows *sql.Rows) error {
		var p store.Product
		if err := rows.Scan(&p.Code, &p.Title); err != nil {
			return fmt.Errorf("scan products: %w", err)
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

// loadPopulationSQLite reads the population reference from a SQLite database.
func loadPopulationSQLite(ctx context.Context, path, table string) ([]store.PopulationCount, error) {
	query := fmt.Sprintf(`SELECT age, sex, n FROM %q`, table)

	var counts []store.PopulationCount
	err := querySQLite(ctx, path, query, func(rows *sql.Rows) error {
		var (
			pc      store.PopulationCount
			sexText string
		)
		if err := rows.Scan(&pc.Age, &sexText, &pc.Population); err != nil {
			return fmt.Errorf("scan population: %w", err)
		}
		sex, err := store.ParseSex(sexText)
		if err != nil {
			return err
		}
		pc.Sex = sex
		if pc.Population <= 0 {
			return fmt.Errorf("bad population count %d", pc.Population)
		}
		counts = append(counts, pc)
		return nil
	})
	return counts, err
}
