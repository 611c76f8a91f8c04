package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category groups related items within a collection (a kana row, a set of
// consonants, a frequency band).
type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NameNative string `json:"nameNative,omitempty"`
}

// Example is a word that uses an item.
type Example struct {
	Word    string `json:"word"`
	Reading string `json:"reading,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

// Item is a single practicable unit: a character of a script or a word of a
// deck. ID is unique within its collection.
type Item struct {
	ID            string    `json:"id"`
	Glyph         string    `json:"glyph"`
	Romanization  string    `json:"romanization,omitempty"`
	Pronunciation string    `json:"pronunciation,omitempty"`
	Meaning       string    `json:"meaning,omitempty"`
	Category      string    `json:"category"`
	Order         int       `json:"order"`
	Mnemonic      string    `json:"mnemonic,omitempty"`
	Examples      []Example `json:"examples,omitempty"`
}

// Collection is a script set or vocabulary deck.
type Collection struct {
	ID           string     `json:"id"`
	LanguageCode string     `json:"languageCode"`
	Name         string     `json:"name"`
	NameNative   string     `json:"nameNative,omitempty"`
	Description  string     `json:"description,omitempty"`
	Categories   []Category `json:"categories"`
	Items        []Item     `json:"items"`

	byID map[string]int
}

// index builds lookup tables and sorts items by Order.
func (c *Collection) index() {
	slices.SortStableFunc(c.Items, func(a, b Item) int { return a.Order - b.Order })
	c.byID = make(map[string]int, len(c.Items))
	for i := range c.Items {
		c.byID[c.Items[i].ID] = i
	}
}

// Item returns the item with the given ID.
func (c *Collection) Item(id string) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.Items[i], true
}

// ItemIDs returns every item ID in display order.
func (c *Collection) ItemIDs() []string {
	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ID
	}
	return ids
}

// ItemsInCategory returns the items of one category in display order.
func (c *Collection) ItemsInCategory(categoryID string) []Item {
	var out []Item
	for _, it := range c.Items {
		if it.Category == categoryID {
			out = append(out, it)
		}
	}
	return out
}

// Find looks an item up by ID or by glyph. Glyphs are compared after NFC
// normalization so composed and decomposed input both match.
func (c *Collection) Find(query string) (Item, bool) {
	query = strings.TrimSpace(query)
	if it, ok := c.Item(query); ok {
		return it, true
	}
	want := norm.NFC.String(query)
	for _, it := range c.Items {
		if norm.NFC.String(it.Glyph) == want {
			return it, true
		}
	}
	return Item{}, false
}
