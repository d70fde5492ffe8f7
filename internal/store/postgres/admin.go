package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cqs/queue-service/internal/models"
	"cqs/queue-service/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const fkViolationCode = "23503"

func (s *Store) ListRegions(ctx context.Context) ([]models.Region, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT region_id, name, created_at, updated_at
		FROM regions
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.RegionID, &region.Name, &region.CreatedAt, &region.UpdatedAt); err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

func (s *Store) CreateRegion(ctx context.Context, name string) (models.Region, error) {
	var region models.Region
	row := s.pool.QueryRow(ctx, `
		INSERT INTO regions (name)
		VALUES ($1)
		RETURNING region_id, name, created_at, updated_at
	`, name)
	if err := row.Scan(&region.RegionID, &region.Name, &region.CreatedAt, &region.UpdatedAt); err != nil {
		return models.Region{}, err
	}
	return region, nil
}

func (s *Store) UpdateRegion(ctx context.Context, regionID int64, name string) (models.Region, error) {
	var region models.Region
	row := s.pool.QueryRow(ctx, `
		UPDATE regions
		SET name = $2, updated_at = now()
		WHERE region_id = $1
		RETURNING region_id, name, created_at, updated_at
	`, regionID, name)
	if err := row.Scan(&region.RegionID, &region.Name, &region.CreatedAt, &region.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Region{}, store.ErrRegionNotFound
		}
		return models.Region{}, err
	}
	return region, nil
}

func (s *Store) DeleteRegion(ctx context.Context, regionID int64) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM regions WHERE region_id = $1
	`, regionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return store.ErrRegionHasOffices
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRegionNotFound
	}
	return nil
}

func (s *Store) ListOffices(ctx context.Context, regionID int64) ([]models.Office, error) {
	query := `
		SELECT office_id, region_id, name, created_at, updated_at
		FROM offices
	`
	args := []interface{}{}
	if regionID > 0 {
		query += " WHERE region_id = $1"
		args = append(args, regionID)
	}
	query += " ORDER BY name ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offices []models.Office
	for rows.Next() {
		var office models.Office
		if err := rows.Scan(&office.OfficeID, &office.RegionID, &office.Name, &office.CreatedAt, &office.UpdatedAt); err != nil {
			return nil, err
		}
		offices = append(offices, office)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offices, nil
}

func (s *Store) GetOffice(ctx context.Context, officeID int64) (models.Office, error) {
	var office models.Office
	row := s.pool.QueryRow(ctx, `
		SELECT office_id, region_id, name, created_at, updated_at
		FROM offices
		WHERE office_id = $1
	`, officeID)
	if err := row.Scan(&office.OfficeID, &office.RegionID, &office.Name, &office.CreatedAt, &office.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Office{}, store.ErrOfficeNotFound
		}
		return models.Office{}, err
	}
	return office, nil
}

func (s *Store) CreateOffice(ctx context.Context, regionID int64, name string) (models.Office, error) {
	var office models.Office
	row := s.pool.QueryRow(ctx, `
		INSERT INTO offices (region_id, name)
		VALUES ($1, $2)
		RETURNING office_id, region_id, name, created_at, updated_at
	`, regionID, name)
	if err := row.Scan(&office.OfficeID, &office.RegionID, &office.Name, &office.CreatedAt, &office.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return models.Office{}, store.ErrRegionNotFound
		}
		return models.Office{}, err
	}
	return office, nil
}

func (s *Store) UpdateOffice(ctx context.Context, officeID int64, name string) (models.Office, error) {
	var office models.Office
	row := s.pool.QueryRow(ctx, `
		UPDATE offices
		SET name = $2, updated_at = now()
		WHERE office_id = $1
		RETURNING office_id, region_id, name, created_at, updated_at
	`, officeID, name)
	if err := row.Scan(&office.OfficeID, &office.RegionID, &office.Name, &office.CreatedAt, &office.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Office{}, store.ErrOfficeNotFound
		}
		return models.Office{}, err
	}
	return office, nil
}

func (s *Store) DeleteOffice(ctx context.Context, officeID int64) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM offices WHERE office_id = $1
	`, officeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrOfficeNotFound
	}
	return nil
}

func (s *Store) ListCounters(ctx context.Context, officeID int64) ([]models.Counter, error) {
	return s.queryCounters(ctx, `
		SELECT counter_id, office_id, name, is_active, created_at, updated_at
		FROM counters
		WHERE office_id = $1
		ORDER BY name ASC
	`, officeID)
}

func (s *Store) GetCounter(ctx context.Context, counterID int64) (models.Counter, error) {
	var counter models.Counter
	row := s.pool.QueryRow(ctx, `
		SELECT counter_id, office_id, name, is_active, created_at, updated_at
		FROM counters
		WHERE counter_id = $1
	`, counterID)
	if err := row.Scan(&counter.CounterID, &counter.OfficeID, &counter.Name, &counter.IsActive, &counter.CreatedAt, &counter.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Counter{}, store.ErrCounterNotFound
		}
		return models.Counter{}, err
	}
	return counter, nil
}

func (s *Store) CreateCounter(ctx context.Context, officeID int64, name string) (models.Counter, error) {
	var counter models.Counter
	row := s.pool.QueryRow(ctx, `
		INSERT INTO counters (office_id, name)
		VALUES ($1, $2)
		RETURNING counter_id, office_id, name, is_active, created_at, updated_at
	`, officeID, name)
	if err := row.Scan(&counter.CounterID, &counter.OfficeID, &counter.Name, &counter.IsActive, &counter.CreatedAt, &counter.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return models.Counter{}, store.ErrOfficeNotFound
		}
		return models.Counter{}, err
	}
	return counter, nil
}

func (s *Store) UpdateCounter(ctx context.Context, counterID int64, name string, isActive bool) (models.Counter, error) {
	var counter models.Counter
	row := s.pool.QueryRow(ctx, `
		UPDATE counters
		SET name = $2, is_active = $3, updated_at = now()
		WHERE counter_id = $1
		RETURNING counter_id, office_id, name, is_active, created_at, updated_at
	`, counterID, name, isActive)
	if err := row.Scan(&counter.CounterID, &counter.OfficeID, &counter.Name, &counter.IsActive, &counter.CreatedAt, &counter.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Counter{}, store.ErrCounterNotFound
		}
		return models.Counter{}, err
	}
	return counter, nil
}

func (s *Store) DeleteCounter(ctx context.Context, counterID int64) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM counters WHERE counter_id = $1
	`, counterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrCounterNotFound
	}
	return nil
}

func (s *Store) ListOfficers(ctx context.Context, officeID int64) ([]models.Officer, error) {
	query := `
		SELECT o.officer_id, o.counter_id, o.name, o.user_email, o.created_at, o.updated_at
		FROM officers o
	`
	args := []interface{}{}
	if officeID > 0 {
		query += `
		JOIN counters c ON c.counter_id = o.counter_id
		WHERE c.office_id = $1`
		args = append(args, officeID)
	}
	query += " ORDER BY o.name ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officers []models.Officer
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			return nil, err
		}
		officers = append(officers, officer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return officers, nil
}

func (s *Store) CreateOfficer(ctx context.Context, name, userEmail string, counterID *int64) (models.Officer, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO officers (name, user_email, counter_id)
		VALUES ($1, $2, $3)
		RETURNING officer_id, counter_id, name, user_email, created_at, updated_at
	`, name, userEmail, counterID)
	officer, err := scanOfficer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return models.Officer{}, store.ErrCounterNotFound
		}
		return models.Officer{}, err
	}
	return officer, nil
}

func (s *Store) UpdateOfficer(ctx context.Context, officerID int64, name string, counterID *int64) (models.Officer, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE officers
		SET name = $2, counter_id = $3, updated_at = now()
		WHERE officer_id = $1
		RETURNING officer_id, counter_id, name, user_email, created_at, updated_at
	`, officerID, name, counterID)
	officer, err := scanOfficer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Officer{}, store.ErrOfficerNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolationCode {
			return models.Officer{}, store.ErrCounterNotFound
		}
		return models.Officer{}, err
	}
	return officer, nil
}

func (s *Store) DeleteOfficer(ctx context.Context, officerID int64) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM officers WHERE officer_id = $1
	`, officerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrOfficerNotFound
	}
	return nil
}

func scanOfficer(row pgx.Row) (models.Officer, error) {
	var officer models.Officer
	var counterIDNull sql.NullInt64
	if err := row.Scan(&officer.OfficerID, &counterIDNull, &officer.Name, &officer.UserEmail, &officer.CreatedAt, &officer.UpdatedAt); err != nil {
		return models.Officer{}, err
	}
	officer.CounterID = nullInt64Ptr(counterIDNull)
	return officer, nil
}
