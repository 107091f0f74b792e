package residence

import (
	"context"
	"database/sql"
	"fmt"

	"syndicway/internal/adapters/storage"
	domain "syndicway/internal/domain/residence"
)

const residenceColumns = "id, syndic_id, name, address, city"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ResidenceStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanResidence(scan func(dest ...any) error) (domain.Residence, error) {
	var entity domain.Residence
	err := scan(&entity.ID, &entity.SyndicID, &entity.Name, &entity.Address, &entity.City)
	return entity, err
}

// GetByID retrieves a Residence by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Residence, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+residenceColumns+" FROM residence WHERE id = ?", id)
	entity, err := scanResidence(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Residence{}, fmt.Errorf("residence not found: %w", err)
	}
	return entity, err
}

// GetBySyndicID retrieves the residence managed by the given syndic.
// PRE: syndicID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetBySyndicID(ctx context.Context, syndicID string) (domain.Residence, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+residenceColumns+" FROM residence WHERE syndic_id = ?", syndicID)
	entity, err := scanResidence(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Residence{}, fmt.Errorf("residence not found: %w", err)
	}
	return entity, err
}

// Save persists a Residence to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Residence) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO residence (`+residenceColumns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   syndic_id=excluded.syndic_id, name=excluded.name,
		   address=excluded.address, city=excluded.city`,
		entity.ID, entity.SyndicID, entity.Name, entity.Address, entity.City)
	return err
}

// List retrieves all residences ordered by name.
// POST: Returns all entities
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Residence, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+residenceColumns+" FROM residence ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Residence
	for rows.Next() {
		entity, err := scanResidence(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
