package policy

import (
	"context"
	"fmt"

	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

// ActiveLookup answers whether an active row other than excludeID holds value in column.
type ActiveLookup interface {
	ExistsActive(ctx context.Context, column string, value any, excludeID uint64) (bool, error)
}

// UniqueField is one unique-among-active value of an entity.
type UniqueField struct {
	Field  string
	Column string
	Value  string
}

// CheckUnique fails with a conflict if any active row other than excludeID
// holds field's value. Pass excludeID 0 to check against every active row.
func CheckUnique(ctx context.Context, lookup ActiveLookup, entity string, field UniqueField, excludeID uint64) error {
	exists, err := lookup.ExistsActive(ctx, field.Column, field.Value, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check %s %s: %w", entity, field.Field, err)
	}
	if exists {
		return apierrors.Conflict(fmt.Sprintf("%s with %s %q already exists", entity, field.Field, field.Value))
	}
	return nil
}

// CheckRestorable verifies no active row holds any of the unique values of
// the archived row being restored.
func CheckRestorable(ctx context.Context, lookup ActiveLookup, entity string, fields []UniqueField) error {
	for _, field := range fields {
		exists, err := lookup.ExistsActive(ctx, field.Column, field.Value, 0)
		if err != nil {
			return fmt.Errorf("failed to check %s %s: %w", entity, field.Field, err)
		}
		if exists {
			return apierrors.Conflict(fmt.Sprintf(
				"cannot restore %s: %s %q is already used by an active %s",
				entity, field.Field, field.Value, entity,
			))
		}
	}
	return nil
}
