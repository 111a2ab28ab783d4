package item

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/handfistface/ListPoint/internal/model"
)

// New builds a fresh item with a new identity, default quantity 1, and the
// current timestamp.
func New(text, section string) model.Item {
	return model.Item{
		ID:       uuid.NewString(),
		Text:     text,
		Quantity: 1,
		Section:  section,
		AddedAt:  time.Now().UTC(),
	}
}

// Sort orders items canonically in place: items carrying a section come
// first, grouped by section and alphabetical within each group; loose items
// follow, alphabetical. All comparisons are case-insensitive. This is the
// stored order, recomputed on every mutation, not a display-time sort.
func Sort(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if (a.Section != "") != (b.Section != "") {
			return a.Section != ""
		}
		if a.Section != "" {
			as, bs := strings.ToLower(a.Section), strings.ToLower(b.Section)
			if as != bs {
				return as < bs
			}
		}
		return strings.ToLower(a.Text) < strings.ToLower(b.Text)
	})
}

// IndexOfText returns the index of the item whose text matches
// case-insensitively, or -1.
func IndexOfText(items []model.Item, text string) int {
	for i := range items {
		if strings.EqualFold(items[i].Text, text) {
			return i
		}
	}
	return -1
}

// HasText reports whether any item's text matches case-insensitively.
func HasText(items []model.Item, text string) bool {
	return IndexOfText(items, text) >= 0
}

// IndexByID returns the index of the item with the given identity, or -1.
func IndexByID(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone copies every item with a fresh identity and timestamp. Text,
// quantity, and section are preserved. When resetChecked is true the checked
// flag is cleared on the copies; otherwise it is carried over.
func Clone(items []model.Item, resetChecked bool) []model.Item {
	now := time.Now().UTC()
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		copied := model.Item{
			ID:       uuid.NewString(),
			Text:     it.Text,
			Quantity: it.Quantity,
			Checked:  it.Checked,
			Section:  it.Section,
			AddedAt:  now,
		}
		if resetChecked {
			copied.Checked = false
		}
		out = append(out, copied)
	}
	return out
}

// Sections returns the distinct section names currently in use, sorted
// alphabetically.
func Sections(items []model.Item) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, it := range items {
		if it.Section == "" {
			continue
		}
		if _, ok := seen[it.Section]; ok {
			continue
		}
		seen[it.Section] = struct{}{}
		names = append(names, it.Section)
	}
	sort.Strings(names)
	return names
}
