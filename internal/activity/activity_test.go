package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/model"
)

func TestRowForWithoutMetaInsertsNull(t *testing.T) {
	actor := uint(3)
	row := rowFor(Entry{
		StoreID:     7,
		ActorUserID: &actor,
		Type:        model.ActivityStoreCreated,
		EntityType:  "store",
		EntityID:    7,
	})

	// jsonb column: nil maps to NULL, an empty string would be rejected by
	// postgres as invalid json.
	assert.Nil(t, row.Meta)
	assert.Equal(t, model.ActivityStoreCreated, row.Type)
	assert.Equal(t, uint(7), row.StoreID)
}

func TestRowForKeepsMetaWhenSet(t *testing.T) {
	row := rowFor(Entry{
		StoreID: 7,
		Type:    model.ActivityUserAdded,
		Meta:    `{"role":"EDITOR"}`,
	})

	require.NotNil(t, row.Meta)
	assert.JSONEq(t, `{"role":"EDITOR"}`, *row.Meta)
}
