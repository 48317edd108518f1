package services

import (
	"time"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
)

var (
	burger  = models.MenuItem{ID: 1, Name: "Burger", Price: 10.00, Category: models.CategoryMainCourse, Available: true}
	wings   = models.MenuItem{ID: 2, Name: "Wings", Price: 8.50, Category: models.CategoryAppetizer, Available: true}
	soda    = models.MenuItem{ID: 3, Name: "Soda", Price: 2.50, Category: models.CategoryBeverage, Available: true}
	cake    = models.MenuItem{ID: 4, Name: "Cheesecake", Price: 6.00, Category: models.CategoryDessert, Available: true}
	special = models.MenuItem{ID: 5, Name: "Chef Special", Price: 24.00, Category: models.CategorySpecial, Available: false}

	testMenu = []models.MenuItem{burger, wings, soda, cake, special}
)

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(_ string, ev events.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) topics() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Topic())
	}
	return out
}

func (r *recorder) count(topic string) int {
	n := 0
	for _, ev := range r.events {
		if ev.Topic() == topic {
			n++
		}
	}
	return n
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func fixedRandom(v float64) func() float64 {
	return func() float64 { return v }
}

// orderWith builds a pending order outside any manager.
func orderWith(id int, items ...models.MenuItem) *models.Order {
	o := models.NewOrder(id, "table 1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	for _, item := range items {
		_ = o.AddItem(item, 1, "")
	}
	return o
}
