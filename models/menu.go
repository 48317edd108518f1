package models

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryAppetizer  Category = "APPETIZER"
	CategoryMainCourse Category = "MAIN_COURSE"
	CategoryDessert    Category = "DESSERT"
	CategoryBeverage   Category = "BEVERAGE"
	CategorySpecial    Category = "SPECIAL"
)

// Categories returns every menu category in display order.
func Categories() []Category {
	return []Category{
		CategoryAppetizer,
		CategoryMainCourse,
		CategoryDessert,
		CategoryBeverage,
		CategorySpecial,
	}
}

// ParseCategory accepts "MAIN_COURSE", "main_course" and "main course".
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	for _, c := range Categories() {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown menu category %q", s)
}

type MenuItem struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       float64  `json:"price" yaml:"price"`
	Category    Category `json:"category" yaml:"category"`
	Available   bool     `json:"available" yaml:"available"`
	Description string   `json:"description,omitempty" yaml:"description"`
}

func (m MenuItem) Validate() error {
	if m.ID <= 0 {
		return errors.New("menu item id must be positive")
	}
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("menu item name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("menu item %q has negative price", m.Name)
	}
	if _, err := ParseCategory(string(m.Category)); err != nil {
		return err
	}
	return nil
}
