package repository

import (
	"context"
	"database/sql"
	"fmt"

	"classifieds-api/internal/model"
)

// SQLiteLocationRepository implements LocationRepository using SQLite.
type SQLiteLocationRepository struct {
	db *sql.DB
}

// NewSQLiteLocationRepository creates a location repository over a shared
// market database handle.
func NewSQLiteLocationRepository(db *sql.DB) *SQLiteLocationRepository {
	return &SQLiteLocationRepository{db: db}
}

// MajorCities returns up to limit cities ordered by population.
func (r *SQLiteLocationRepository) MajorCities(ctx context.Context, limit int) ([]model.City, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, region, population FROM cities ORDER BY population DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := []model.City{}
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.Name, &c.Region, &c.Population); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// SuburbsByCity returns up to limit suburbs of a city.
func (r *SQLiteLocationRepository) SuburbsByCity(ctx context.Context, city string, limit int) ([]model.Suburb, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, city FROM suburbs WHERE city = ? COLLATE NOCASE ORDER BY name LIMIT ?`, city, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suburbs: %w", err)
	}
	defer rows.Close()

	suburbs := []model.Suburb{}
	for rows.Next() {
		var s model.Suburb
		if err := rows.Scan(&s.Name, &s.City); err != nil {
			return nil, err
		}
		suburbs = append(suburbs, s)
	}
	return suburbs, rows.Err()
}

// SeedLocations loads the default city/suburb dataset if the cities table is
// empty. Safe to call on every startup.
func SeedLocations(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cities`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check cities: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range defaultCities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cities (name, region, population) VALUES (?, ?, ?)`,
			c.Name, c.Region, c.Population); err != nil {
			return fmt.Errorf("failed to seed city %s: %w", c.Name, err)
		}
	}
	for _, s := range defaultSuburbs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO suburbs (name, city) VALUES (?, ?)`, s.Name, s.City); err != nil {
			return fmt.Errorf("failed to seed suburb %s: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

var defaultCities = []model.City{
	{Name: "Auckland", Region: "Auckland", Population: 1716000},
	{Name: "Wellington", Region: "Wellington", Population: 434000},
	{Name: "Christchurch", Region: "Canterbury", Population: 405000},
	{Name: "Hamilton", Region: "Waikato", Population: 192000},
	{Name: "Tauranga", Region: "Bay of Plenty", Population: 161000},
	{Name: "Dunedin", Region: "Otago", Population: 135000},
	{Name: "Palmerston North", Region: "Manawatu-Whanganui", Population: 91000},
	{Name: "Napier", Region: "Hawke's Bay", Population: 67000},
	{Name: "Nelson", Region: "Nelson", Population: 54500},
	{Name: "Rotorua", Region: "Bay of Plenty", Population: 58500},
	{Name: "New Plymouth", Region: "Taranaki", Population: 59000},
	{Name: "Whangarei", Region: "Northland", Population: 56900},
	{Name: "Invercargill", Region: "Southland", Population: 51000},
	{Name: "Queenstown", Region: "Otago", Population: 16000},
	{Name: "Hastings", Region: "Hawke's Bay", Population: 51000},
}

var defaultSuburbs = []model.Suburb{
	{Name: "Ponsonby", City: "Auckland"},
	{Name: "Mount Eden", City: "Auckland"},
	{Name: "Takapuna", City: "Auckland"},
	{Name: "Manukau", City: "Auckland"},
	{Name: "Henderson", City: "Auckland"},
	{Name: "Te Aro", City: "Wellington"},
	{Name: "Karori", City: "Wellington"},
	{Name: "Newtown", City: "Wellington"},
	{Name: "Riccarton", City: "Christchurch"},
	{Name: "Fendalton", City: "Christchurch"},
	{Name: "Sydenham", City: "Christchurch"},
	{Name: "Hillcrest", City: "Hamilton"},
	{Name: "Chartwell", City: "Hamilton"},
	{Name: "Mount Maunganui", City: "Tauranga"},
	{Name: "Papamoa", City: "Tauranga"},
}
