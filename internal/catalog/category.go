// internal/catalog/category.go
//
// Static category table.  Categories are compiled into the binary and never
// persisted; products reference them by key.  Keys double as the second
// path segment of /shop/{category}, so they must already be slugs.

package catalog

import "strings"

// Category describes one shop section.
type Category struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var categoryOrder = []Category{
	{Key: "wasmachines", Name: "Wasmachines", Icon: "washing-machine"},
	{Key: "drogers", Name: "Wasdrogers", Icon: "dryer"},
	{Key: "koelkasten", Name: "Koelkasten", Icon: "fridge"},
	{Key: "stofzuigers", Name: "Stofzuigers", Icon: "vacuum"},
	{Key: "robotstofzuigers", Name: "Robotstofzuigers", Icon: "robot"},
	{Key: "koffiemachines", Name: "Koffiemachines", Icon: "coffee"},
	{Key: "airfryers", Name: "Airfryers", Icon: "fryer"},
	{Key: "televisies", Name: "Televisies", Icon: "tv"},
	{Key: "smartphones", Name: "Smartphones", Icon: "phone"},
	{Key: "laptops", Name: "Laptops", Icon: "laptop"},
	{Key: "koptelefoons", Name: "Koptelefoons", Icon: "headphones"},
	{Key: "smartwatches", Name: "Smartwatches", Icon: "watch"},
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(categoryOrder))
	for _, c := range categoryOrder {
		m[c.Key] = c
	}
	return m
}()

// LookupCategory finds a category by key, ignoring case.
func LookupCategory(key string) (Category, bool) {
	c, ok := categoryIndex[strings.ToLower(key)]
	return c, ok
}

// Categories returns the table in display order.  The slice is a copy.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}
