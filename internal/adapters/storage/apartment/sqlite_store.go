package apartment

import (
	"context"
	"database/sql"
	"fmt"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/apartment"
)

const apartmentColumns = "id, residence_id, resident_id, floor, number, type"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ApartmentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanApartment(scan func(dest ...any) error) (domain.Apartment, error) {
	var entity domain.Apartment
	var residentID sql.NullString
	err := scan(&entity.ID, &entity.ResidenceID, &residentID, &entity.Floor, &entity.Number, &entity.Type)
	if err != nil {
		return domain.Apartment{}, err
	}
	if residentID.Valid {
		entity.ResidentID = residentID.String
	}
	return entity, nil
}

// GetByID retrieves an Apartment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Apartment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+apartmentColumns+" FROM apartment WHERE id = ?", id)
	entity, err := scanApartment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Apartment{}, fmt.Errorf("apartment not found: %w", err)
	}
	return entity, err
}

// GetByResidentID retrieves the apartment occupied by a resident.
// PRE: residentID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByResidentID(ctx context.Context, residentID string) (domain.Apartment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+apartmentColumns+" FROM apartment WHERE resident_id = ?", residentID)
	entity, err := scanApartment(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Apartment{}, fmt.Errorf("apartment not found: %w", err)
	}
	return entity, err
}

// Save persists an Apartment to the database.
// The schema's UNIQUE(residence_id, floor, number) closes the duplicate
// window; a violation surfaces as ErrDuplicateUnit.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Apartment) error {
	var residentID any
	if entity.ResidentID != "" {
		residentID = entity.ResidentID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO apartment (`+apartmentColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   residence_id=excluded.residence_id, resident_id=excluded.resident_id,
		   floor=excluded.floor, number=excluded.number, type=excluded.type`,
		entity.ID, entity.ResidenceID, residentID, entity.Floor, entity.Number, entity.Type)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicateUnit
	}
	return err
}

// Delete removes an Apartment from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM apartment WHERE id = ?", id)
	return err
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.ResidenceID != "" {
		where += " AND residence_id = ?"
		args = append(args, filter.ResidenceID)
	}
	if filter.Floor >= 0 {
		where += " AND floor = ?"
		args = append(args, filter.Floor)
	}
	if filter.Type != "" {
		where += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.VacantOnly {
		where += " AND resident_id IS NULL"
	}
	return where, args
}

// List retrieves Apartments based on the filter, ordered by floor then number.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Apartment, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + apartmentColumns + " FROM apartment" + where + " ORDER BY floor ASC, number ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Apartment
	for rows.Next() {
		entity, err := scanApartment(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of apartments matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM apartment"+where, args...).Scan(&count)
	return count, err
}
