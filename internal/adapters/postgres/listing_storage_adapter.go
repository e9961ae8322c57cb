package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/port"
)

// ListingStorageAdapter implements port.DealStorePort for PostgreSQL.
// The unique constraint on (source, url) is what makes Upsert safe under
// concurrent scrapes for overlapping queries.
type ListingStorageAdapter struct {
	pool *pgxpool.Pool
}

// NewListingStorageAdapter creates the adapter and bootstraps the schema.
func NewListingStorageAdapter(ctx context.Context, pool *pgxpool.Pool) (*ListingStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	a := &ListingStorageAdapter{pool: pool}
	if err := a.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure listings schema: %w", err)
	}
	return a, nil
}

func (a *ListingStorageAdapter) ensureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id                 TEXT PRIMARY KEY,
			source             TEXT NOT NULL,
			url                TEXT NOT NULL,
			title              TEXT NOT NULL,
			description        TEXT NOT NULL DEFAULT '',
			listed_price       NUMERIC(12,2) NOT NULL,
			predicted_price    NUMERIC(12,2) NOT NULL,
			undervalue_percent DOUBLE PRECISION NOT NULL,
			low_confidence     BOOLEAN NOT NULL DEFAULT FALSE,
			year               INT NOT NULL,
			make               TEXT NOT NULL,
			model              TEXT NOT NULL,
			mileage            INT,
			location           TEXT NOT NULL DEFAULT '',
			posted_at          TIMESTAMPTZ NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL,
			UNIQUE (source, url)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_undervalue ON listings (undervalue_percent DESC);
		CREATE INDEX IF NOT EXISTS idx_listings_make_model ON listings (lower(make), lower(split_part(model, ' ', 1)));
	`)
	return err
}

// Upsert inserts if (source, url) is unseen; a conflict is a no-op and the
// stored valuation stays frozen at its first-seen value.
func (a *ListingStorageAdapter) Upsert(ctx context.Context, l domain.Listing) (bool, error) {
	sql := `
		INSERT INTO listings (
			id, source, url, title, description,
			listed_price, predicted_price, undervalue_percent, low_confidence,
			year, make, model, mileage, location, posted_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (source, url) DO NOTHING;
	`
	tag, err := a.pool.Exec(ctx, sql,
		l.ID, l.Source, l.URL, l.Title, l.Description,
		l.ListedPrice, l.PredictedPrice, l.UndervaluePercent, l.LowConfidence,
		l.Year, l.Make, l.Model, l.Mileage, l.Location, l.PostedAt, l.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert listing %s: %w", l.URL, err)
	}
	return tag.RowsAffected() == 1, nil
}

const listingColumns = `
	id, source, url, title, description,
	listed_price, predicted_price, undervalue_percent, low_confidence,
	year, make, model, mileage, location, posted_at, created_at
`

// QueryDeals filters on the unrounded undervalue percent and orders by
// undervalue desc, posted_at desc, id asc for full determinism.
func (a *ListingStorageAdapter) QueryDeals(ctx context.Context, filter domain.DealFilter) ([]domain.Listing, error) {
	var conditions []string
	var args []interface{}

	addCondition := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	addCondition("undervalue_percent >= $%d", filter.MinUndervaluePercent)
	if !filter.IncludeLowConfidence {
		conditions = append(conditions, "low_confidence = FALSE")
	}
	if filter.Make != "" {
		addCondition("make ILIKE $%d", filter.Make)
	}
	if filter.Model != "" {
		addCondition("model ILIKE $%d", filter.Model)
	}
	if filter.Location != "" {
		addCondition("location ILIKE $%d", "%"+filter.Location+"%")
	}

	sql := fmt.Sprintf(`
		SELECT %s FROM listings
		WHERE %s
		ORDER BY undervalue_percent DESC, posted_at DESC, id ASC
	`, listingColumns, strings.Join(conditions, " AND "))

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// GetDealByID returns one listing or domain.ErrNotFound.
func (a *ListingStorageAdapter) GetDealByID(ctx context.Context, id string) (domain.Listing, error) {
	sql := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)

	rows, err := a.pool.Query(ctx, sql, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to query listing %s: %w", id, err)
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return domain.Listing{}, err
	}
	if len(listings) == 0 {
		return domain.Listing{}, domain.ErrNotFound
	}
	return listings[0], nil
}

// FetchComparables reads listed prices of the same make/model line within the
// year range. Plain MVCC reads, never blocking inserts.
func (a *ListingStorageAdapter) FetchComparables(ctx context.Context, mk, model string, yearFrom, yearTo int) ([]port.ComparablePoint, error) {
	modelLine := strings.ToLower(model)
	if fields := strings.Fields(modelLine); len(fields) > 0 {
		modelLine = fields[0]
	}

	sql := `
		SELECT year, listed_price, mileage FROM listings
		WHERE lower(make) = lower($1)
		  AND lower(split_part(model, ' ', 1)) = $2
		  AND year BETWEEN $3 AND $4
	`
	rows, err := a.pool.Query(ctx, sql, mk, modelLine, yearFrom, yearTo)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparables for %s %s: %w", mk, model, err)
	}
	defer rows.Close()

	var points []port.ComparablePoint
	for rows.Next() {
		var p port.ComparablePoint
		if err := rows.Scan(&p.Year, &p.ListedPrice, &p.Mileage); err != nil {
			return nil, fmt.Errorf("failed to scan comparable row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.Source, &l.URL, &l.Title, &l.Description,
			&l.ListedPrice, &l.PredictedPrice, &l.UndervaluePercent, &l.LowConfidence,
			&l.Year, &l.Make, &l.Model, &l.Mileage, &l.Location, &l.PostedAt, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return listings, nil
}
