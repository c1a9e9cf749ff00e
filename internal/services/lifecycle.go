package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/gorm"
)

// Lifecycle implements Get, Archive and Restore once for every archivable
// entity, enforcing role policy and uniqueness among active rows.
type Lifecycle[T models.ArchivableRecord] struct {
	entity  string
	store   repository.Archivable[T]
	uniques func(*T) []policy.UniqueField

	// extra columns written alongside the archive flag
	onArchive func(policy.Principal) map[string]any
	onRestore func(policy.Principal) map[string]any
}

func newLifecycle[T models.ArchivableRecord](entity string, store repository.Archivable[T], uniques func(*T) []policy.UniqueField) *Lifecycle[T] {
	return &Lifecycle[T]{entity: entity, store: store, uniques: uniques}
}

// Get returns the active entity or NotFound; archived and absent ids look the same.
func (l *Lifecycle[T]) Get(ctx context.Context, principal policy.Principal, id uint64) (*T, error) {
	if err := principal.Require(policy.ActionView); err != nil {
		return nil, err
	}
	return l.findActive(ctx, id)
}

func (l *Lifecycle[T]) findActive(ctx context.Context, id uint64) (*T, error) {
	record, err := l.store.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(l.entity, id)
		}
		return nil, fmt.Errorf("failed to find %s: %w", l.entity, err)
	}
	return record, nil
}

// Archive soft-deletes an active entity. Related rows are left untouched.
func (l *Lifecycle[T]) Archive(ctx context.Context, principal policy.Principal, id uint64) error {
	if err := principal.Require(policy.ActionArchive); err != nil {
		return err
	}
	if _, err := l.findActive(ctx, id); err != nil {
		return err
	}

	if err := l.store.Archive(ctx, id, l.extra(l.onArchive, principal)); err != nil {
		if errors.Is(err, repository.ErrNotChanged) {
			return apierrors.NotFound(l.entity, id)
		}
		return fmt.Errorf("failed to archive %s: %w", l.entity, err)
	}

	l.logTransition(ctx, principal, id, "archived")
	return nil
}

// Restore reactivates an archived entity unless an active row now holds one
// of its unique values, in which case it stays archived.
func (l *Lifecycle[T]) Restore(ctx context.Context, principal policy.Principal, id uint64) (*T, error) {
	if err := principal.Require(policy.ActionArchive); err != nil {
		return nil, err
	}

	record, err := l.store.FindAny(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound(l.entity, id)
		}
		return nil, fmt.Errorf("failed to find %s: %w", l.entity, err)
	}
	if !(*record).IsArchived() {
		return nil, apierrors.InvalidState(fmt.Sprintf("%s %d is not archived", l.entity, id))
	}

	if err := policy.CheckRestorable(ctx, l.store, l.entity, l.uniqueFields(record)); err != nil {
		return nil, err
	}

	if err := l.store.Restore(ctx, id, l.extra(l.onRestore, principal)); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotChanged):
			return nil, apierrors.InvalidState(fmt.Sprintf("%s %d is not archived", l.entity, id))
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apierrors.Conflict(fmt.Sprintf("cannot restore %s %d: a unique value is already in use", l.entity, id))
		}
		return nil, fmt.Errorf("failed to restore %s: %w", l.entity, err)
	}

	l.logTransition(ctx, principal, id, "restored")
	return l.findActive(ctx, id)
}

// checkUnique runs the uniqueness policy for one field.
func (l *Lifecycle[T]) checkUnique(ctx context.Context, field policy.UniqueField, excludeID uint64) error {
	return policy.CheckUnique(ctx, l.store, l.entity, field, excludeID)
}

// translateWrite maps a storage-level unique violation that slipped past the
// pre-check onto a conflict.
func (l *Lifecycle[T]) translateWrite(err error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierrors.Conflict(fmt.Sprintf("%s with the same unique value already exists", l.entity))
	}
	return fmt.Errorf("failed to %s %s: %w", action, l.entity, err)
}

func (l *Lifecycle[T]) uniqueFields(record *T) []policy.UniqueField {
	if l.uniques == nil {
		return nil
	}
	return l.uniques(record)
}

func (l *Lifecycle[T]) extra(fn func(policy.Principal) map[string]any, principal policy.Principal) map[string]any {
	if fn == nil {
		return nil
	}
	return fn(principal)
}

func (l *Lifecycle[T]) logTransition(ctx context.Context, principal policy.Principal, id uint64, transition string) {
	zerolog.Ctx(ctx).Info().
		Str("entity", l.entity).
		Uint64("entity_id", id).
		Uint64("actor_id", principal.UserID).
		Str("transition", transition).
		Msg("lifecycle.transition")
}
