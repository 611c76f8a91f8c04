package catalog

import (
	"fmt"
	"strings"
)

// DefaultLessonMinSize is the smallest lesson a category may form on its own.
const DefaultLessonMinSize = 4

// LessonSet is a slice of a collection built from one or more adjacent
// categories, used for guided practice.
type LessonSet struct {
	ID         string
	Name       string
	NameNative string
	Items      []Item
	Order      int
}

// ItemIDs returns the IDs of the lesson's items.
func (l LessonSet) ItemIDs() []string {
	ids := make([]string, len(l.Items))
	for i, it := range l.Items {
		ids[i] = it.ID
	}
	return ids
}

type pendingLesson struct {
	names       []string
	namesNative []string
	items       []Item
}

// GenerateLessonSets splits a collection into lessons along its categories.
// A category with fewer than minSize items is merged with the categories that
// follow it until the merged lesson is large enough; a small remainder at the
// end is folded into the last lesson. Empty categories are skipped. Lesson IDs
// are "<collection>--<n>" with n counting from 0.
func GenerateLessonSets(c *Collection, minSize int) []LessonSet {
	if minSize <= 0 {
		minSize = DefaultLessonMinSize
	}

	var sets []LessonSet
	emit := func(names, namesNative []string, items []Item) {
		sets = append(sets, LessonSet{
			ID:         fmt.Sprintf("%s--%d", c.ID, len(sets)),
			Name:       strings.Join(names, " / "),
			NameNative: strings.Join(namesNative, " / "),
			Items:      items,
			Order:      len(sets),
		})
	}

	var pending *pendingLesson
	for _, cat := range c.Categories {
		items := c.ItemsInCategory(cat.ID)
		if len(items) == 0 {
			continue
		}

		switch {
		case pending != nil:
			pending.names = append(pending.names, cat.Name)
			pending.namesNative = append(pending.namesNative, cat.NameNative)
			pending.items = append(pending.items, items...)
			if len(pending.items) >= minSize {
				emit(pending.names, pending.namesNative, pending.items)
				pending = nil
			}
		case len(items) < minSize:
			pending = &pendingLesson{
				names:       []string{cat.Name},
				namesNative: []string{cat.NameNative},
				items:       items,
			}
		default:
			emit([]string{cat.Name}, []string{cat.NameNative}, items)
		}
	}

	if pending != nil {
		if len(sets) > 0 {
			last := &sets[len(sets)-1]
			last.Name += " / " + strings.Join(pending.names, " / ")
			last.NameNative += " / " + strings.Join(pending.namesNative, " / ")
			last.Items = append(last.Items, pending.items...)
		} else {
			emit(pending.names, pending.namesNative, pending.items)
		}
	}
	return sets
}

// Lesson returns the lesson set with the given ID.
func Lesson(c *Collection, minSize int, id string) (LessonSet, error) {
	for _, l := range GenerateLessonSets(c, minSize) {
		if l.ID == id {
			return l, nil
		}
	}
	return LessonSet{}, fmt.Errorf("lesson %q in %s: %w", id, c.ID, ErrNotFound)
}
