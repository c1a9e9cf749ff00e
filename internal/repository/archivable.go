package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/gorm"
)

// ErrNotChanged is returned when an archive or restore matched no row in the
// expected state.
var ErrNotChanged = errors.New("repository: no row in expected archive state")

// ArchivableStore implements Archivable once for any model embedding models.Archivable.
type ArchivableStore[T models.ArchivableRecord] struct {
	db       *gorm.DB
	table    string
	preloads []string
}

func newArchivableStore[T models.ArchivableRecord](db *gorm.DB, table string, preloads ...string) *ArchivableStore[T] {
	return &ArchivableStore[T]{db: db, table: table, preloads: preloads}
}

func (s *ArchivableStore[T]) withPreloads(ctx context.Context) *gorm.DB {
	query := s.db.WithContext(ctx)
	for _, p := range s.preloads {
		query = query.Preload(p)
	}
	return query
}

// FindActive finds a non-archived row by ID
func (s *ArchivableStore[T]) FindActive(ctx context.Context, id uint64) (*T, error) {
	var record T
	if err := s.withPreloads(ctx).Scopes(database.Active(s.table)).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAny finds a row by ID regardless of archive state
func (s *ArchivableStore[T]) FindAny(ctx context.Context, id uint64) (*T, error) {
	var record T
	if err := s.withPreloads(ctx).First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistsActive reports whether a non-archived row other than excludeID holds value in column
func (s *ArchivableStore[T]) ExistsActive(ctx context.Context, column string, value any, excludeID uint64) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(new(T)).
		Scopes(database.Active(s.table)).
		Where(s.table+"."+column+" = ?", value)
	if excludeID != 0 {
		query = query.Where(s.table+".id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Archive flags an active row as archived
func (s *ArchivableStore[T]) Archive(ctx context.Context, id uint64, extra map[string]any) error {
	set := map[string]any{
		"archived":    true,
		"archived_at": time.Now(),
	}
	return s.transition(ctx, id, false, set, extra)
}

// Restore clears the archive flag of an archived row
func (s *ArchivableStore[T]) Restore(ctx context.Context, id uint64, extra map[string]any) error {
	set := map[string]any{
		"archived":    false,
		"archived_at": nil,
	}
	return s.transition(ctx, id, true, set, extra)
}

func (s *ArchivableStore[T]) transition(ctx context.Context, id uint64, fromArchived bool, set, extra map[string]any) error {
	for column, value := range extra {
		set[column] = value
	}

	result := s.db.WithContext(ctx).
		Model(new(T)).
		Where(s.table+".id = ? AND "+s.table+".archived = ?", id, fromArchived).
		Updates(set)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotChanged
	}
	return nil
}
