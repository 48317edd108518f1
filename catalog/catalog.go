package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yeremiapane/restaurant-pos/models"
)

// Catalog is the menu and staff roster a terminal starts with.
type Catalog struct {
	Menu  []models.MenuItem
	Staff []models.Staff
}

type file struct {
	Menu  []menuEntry    `yaml:"menu"`
	Staff []models.Staff `yaml:"staff"`
}

// menuEntry lets "available" default to true when omitted.
type menuEntry struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Available   *bool   `yaml:"available"`
	Description string  `yaml:"description"`
}

// LoadFile reads a catalog YAML file. Unknown fields are rejected so typos
// surface at startup.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	c := &Catalog{Staff: f.Staff}
	seen := make(map[int]bool, len(f.Menu))
	for i, e := range f.Menu {
		category, err := models.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("menu[%d]: %w", i, err)
		}
		item := models.MenuItem{
			ID:          e.ID,
			Name:        e.Name,
			Price:       e.Price,
			Category:    category,
			Available:   e.Available == nil || *e.Available,
			Description: e.Description,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("menu[%d]: %w", i, err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("menu[%d]: duplicate id %d", i, item.ID)
		}
		seen[item.ID] = true
		c.Menu = append(c.Menu, item)
	}
	if len(c.Menu) == 0 {
		return nil, errors.New("catalog has no menu items")
	}
	for i, s := range c.Staff {
		if s.Name == "" || !models.ValidRole(s.Role) {
			return nil, fmt.Errorf("staff[%d]: name and a valid role are required", i)
		}
	}
	return c, nil
}

// Default is the built-in menu used when no catalog file is configured.
func Default() *Catalog {
	return &Catalog{Menu: []models.MenuItem{
		{ID: 1, Name: "Caesar Salad", Price: 8.99, Category: models.CategoryAppetizer, Available: true, Description: "Romaine, parmesan, croutons"},
		{ID: 2, Name: "Buffalo Wings", Price: 10.99, Category: models.CategoryAppetizer, Available: true, Description: "Ten wings, blue cheese dip"},
		{ID: 3, Name: "Mozzarella Sticks", Price: 7.49, Category: models.CategoryAppetizer, Available: true},
		{ID: 10, Name: "Classic Burger", Price: 13.99, Category: models.CategoryMainCourse, Available: true, Description: "Beef patty, cheddar, fries"},
		{ID: 11, Name: "Grilled Salmon", Price: 19.99, Category: models.CategoryMainCourse, Available: true},
		{ID: 12, Name: "Ribeye Steak", Price: 26.99, Category: models.CategoryMainCourse, Available: true},
		{ID: 13, Name: "Margherita Pizza", Price: 14.49, Category: models.CategoryMainCourse, Available: true},
		{ID: 20, Name: "Chocolate Cake", Price: 6.99, Category: models.CategoryDessert, Available: true},
		{ID: 21, Name: "Cheesecake", Price: 7.49, Category: models.CategoryDessert, Available: true},
		{ID: 30, Name: "Soft Drink", Price: 2.49, Category: models.CategoryBeverage, Available: true},
		{ID: 31, Name: "Iced Tea", Price: 2.99, Category: models.CategoryBeverage, Available: true},
		{ID: 32, Name: "Coffee", Price: 2.29, Category: models.CategoryBeverage, Available: true},
		{ID: 40, Name: "Chef's Tasting Plate", Price: 34.99, Category: models.CategorySpecial, Available: true},
	}}
}
