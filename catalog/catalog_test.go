package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

func TestLoadFile(t *testing.T) {
	c, err := LoadFile("testdata/menu.yaml")
	require.NoError(t, err)

	require.Len(t, c.Menu, 3)
	assert.Equal(t, models.CategoryAppetizer, c.Menu[0].Category)
	assert.True(t, c.Menu[0].Available)
	assert.Equal(t, models.CategoryMainCourse, c.Menu[1].Category)
	assert.Equal(t, "Baked daily", c.Menu[1].Description)
	assert.False(t, c.Menu[2].Available)

	require.Len(t, c.Staff, 1)
	assert.Equal(t, "Ayu", c.Staff[0].Name)
	assert.NotEmpty(t, c.Staff[0].PINHash)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "menu:\n  - id: 1\n    name: Tea\n    price: 1\n    category: beverage\n    colour: red\n"},
		{"bad category", "menu:\n  - id: 1\n    name: Tea\n    price: 1\n    category: soup\n"},
		{"negative price", "menu:\n  - id: 1\n    name: Tea\n    price: -1\n    category: beverage\n"},
		{"duplicate id", "menu:\n  - {id: 1, name: Tea, price: 1, category: beverage}\n  - {id: 1, name: Coffee, price: 1, category: beverage}\n"},
		{"empty menu", "menu: []\n"},
		{"bad role", "menu:\n  - {id: 1, name: Tea, price: 1, category: beverage}\nstaff:\n  - {name: Bo, role: owner}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	ids := map[int]bool{}
	for _, item := range c.Menu {
		assert.NoError(t, item.Validate(), item.Name)
		assert.False(t, ids[item.ID], "duplicate id %d", item.ID)
		ids[item.ID] = true
	}
	for _, category := range models.Categories() {
		found := false
		for _, item := range c.Menu {
			found = found || item.Category == category
		}
		assert.True(t, found, "no %s on the default menu", category)
	}
}
