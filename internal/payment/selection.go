package payment

import (
	"fmt"

	"github.com/jo-hoe/pixweb/internal/core"
)

// Selection tracks which images of a collection the buyer picked. Selected
// items keep the collection's order regardless of the order of selection.
type Selection struct {
	items    []Item
	selected map[string]bool
}

func NewSelection(items []Item) *Selection {
	return &Selection{
		items:    items,
		selected: make(map[string]bool),
	}
}

// Toggle flips the selection of id and reports whether it is now selected.
func (s *Selection) Toggle(id string) (bool, error) {
	if !s.contains(id) {
		return false, fmt.Errorf("unknown image %q", id)
	}
	s.selected[id] = !s.selected[id]
	return s.selected[id], nil
}

// SelectAll marks ids as selected, ignoring ids not in the collection.
func (s *Selection) SelectAll(ids []string) {
	for _, id := range ids {
		if s.contains(id) {
			s.selected[id] = true
		}
	}
}

func (s *Selection) IsSelected(id string) bool {
	return s.selected[id]
}

func (s *Selection) Selected() []Item {
	var out []Item
	for _, item := range s.items {
		if s.selected[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

func (s *Selection) Total() core.Price {
	var total core.Price
	for _, item := range s.Selected() {
		total += item.Price
	}
	return total
}

func (s *Selection) Empty() bool {
	return len(s.Selected()) == 0
}

func (s *Selection) contains(id string) bool {
	for _, item := range s.items {
		if item.ID == id {
			return true
		}
	}
	return false
}
