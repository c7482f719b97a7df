package model_test

import (
	"sync"
	"testing"

	"wastenot/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// =====================
// FK制約
// =====================

func TestForeignKeys(t *testing.T) {
	cases := []struct {
		name     string
		model    interface{}
		relation string
		refTable string
		column   string
	}{
		{"line item -> listing", &model.LineItem{}, "Listing", "listings", "listing_id"},
		{"line item -> product", &model.LineItem{}, "Product", "products", "product_id"},
		{"claim item -> claim", &model.ClaimItem{}, "Claim", "claims", "claim_id"},
		{"claim item -> line item", &model.ClaimItem{}, "LineItem", "listing_line_items", "line_item_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := schema.Parse(tc.model, &sync.Map{}, schema.NamingStrategy{})
			require.NoError(t, err)

			rel, ok := s.Relationships.Relations[tc.relation]
			require.True(t, ok)
			assert.Equal(t, schema.BelongsTo, rel.Type)

			c := rel.ParseConstraint()
			require.NotNil(t, c)
			assert.Equal(t, "RESTRICT", c.OnDelete)
			assert.Equal(t, tc.refTable, c.ReferenceSchema.Table)
			require.Len(t, c.ForeignKeys, 1)
			assert.Equal(t, tc.column, c.ForeignKeys[0].DBName)
		})
	}
}
