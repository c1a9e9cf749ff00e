package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

type activeRow struct {
	id     uint64
	column string
	value  string
}

type fakeLookup struct {
	rows []activeRow
	err  error
}

func (f *fakeLookup) ExistsActive(_ context.Context, column string, value any, excludeID uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, row := range f.rows {
		if row.column == column && row.value == value && row.id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func TestCheckUnique(t *testing.T) {
	lookup := &fakeLookup{rows: []activeRow{{id: 1, column: "name", value: "Widget"}}}
	field := UniqueField{Field: "name", Column: "name", Value: "Widget"}
	ctx := context.Background()

	err := CheckUnique(ctx, lookup, "product", field, 0)
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindConflict))
	assert.Contains(t, err.Error(), `"Widget"`)

	// updating the row that already holds the value is not a conflict
	require.NoError(t, CheckUnique(ctx, lookup, "product", field, 1))

	require.NoError(t, CheckUnique(ctx, lookup, "product", UniqueField{Field: "name", Column: "name", Value: "Gadget"}, 0))
}

func TestCheckUniqueWrapsLookupFailure(t *testing.T) {
	boom := errors.New("db down")
	err := CheckUnique(context.Background(), &fakeLookup{err: boom}, "user", UniqueField{Field: "email", Column: "email", Value: "a@b.c"}, 0)
	require.ErrorIs(t, err, boom)
	assert.False(t, apierrors.IsKind(err, apierrors.KindConflict))
}

func TestCheckRestorable(t *testing.T) {
	lookup := &fakeLookup{rows: []activeRow{{id: 5, column: "email", value: "taken@example.com"}}}
	fields := []UniqueField{
		{Field: "username", Column: "username", Value: "alice"},
		{Field: "email", Column: "email", Value: "taken@example.com"},
	}

	err := CheckRestorable(context.Background(), lookup, "user", fields)
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindConflict))
	assert.Contains(t, err.Error(), "taken@example.com")

	require.NoError(t, CheckRestorable(context.Background(), lookup, "user", fields[:1]))
}
