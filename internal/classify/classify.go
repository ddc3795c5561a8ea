// Package classify maps the free-text "Tipo de evento" column to one of a
// fixed set of display categories.
package classify

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is the display bucket of an event.
type Category string

const (
	Fair   Category = "fair"
	Live   Category = "live"
	Circle Category = "circle"
	Other  Category = "other"
)

// Display colors per category.
const (
	ColorFair   = "#FF6B8A"
	ColorLive   = "#00D9FF"
	ColorCircle = "#D4FF33"
	ColorOther  = "#9E9E9E"
)

// Class is the result of classifying an event type.
type Class struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
	// Label is the plural legend label shown next to the color swatch.
	Label string `json:"label"`
}

type rule struct {
	needles []string
	class   Class
}

var (
	fair   = Class{Category: Fair, Color: ColorFair, Label: "Feiras"}
	live   = Class{Category: Live, Color: ColorLive, Label: "Lives"}
	circle = Class{Category: Circle, Color: ColorCircle, Label: "Circles"}
	other  = Class{Category: Other, Color: ColorOther, Label: "Outros"}
)

// rules are evaluated in order; the first match wins. A type mentioning both
// "feira" and "live" is therefore a fair.
var rules = []rule{
	{needles: []string{"feira"}, class: fair},
	{needles: []string{"live"}, class: live},
	{needles: []string{"circle", "círculo"}, class: circle},
}

// Classify returns the category and color for an event type. It never fails:
// an empty type and any unmatched text both map to Other.
func Classify(eventType string) Class {
	t := strings.TrimSpace(eventType)
	if t == "" {
		return other
	}
	// A Caser carries state, so each call gets its own.
	fold := cases.Fold()
	t = fold.String(t)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(t, fold.String(n)) {
				return r.class
			}
		}
	}
	return other
}

// Categories returns every class in legend order.
func Categories() []Class {
	return []Class{fair, live, circle, other}
}

// Lookup returns the class for a category name, falling back to Other.
func Lookup(c Category) Class {
	for _, cl := range Categories() {
		if cl.Category == c {
			return cl
		}
	}
	return other
}
