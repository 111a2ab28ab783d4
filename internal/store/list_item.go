package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/handfistface/ListPoint/internal/item"
	"github.com/handfistface/ListPoint/internal/model"
)

// listFlags reads just the existence and ethereal flag of a list.
func listFlags(q dbtx, listID int64) (exists, ethereal bool, err error) {
	var isEthereal int
	row := q.QueryRow(`SELECT is_ethereal FROM lists WHERE id = ?`, listID)
	if err := row.Scan(&isEthereal); err != nil {
		if err == sql.ErrNoRows {
			return false, false, nil
		}
		return false, false, fmt.Errorf("get list flags: %w", err)
	}
	return true, isEthereal != 0, nil
}

// AddItem appends a new item to the working collection and returns its
// identity. The text must be unique within the collection, case-insensitively.
func (s *ListStore) AddItem(listID int64, text, section string) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, _, err := listFlags(tx, listID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrListNotFound
	}

	items, err := readItems(tx, listID, false)
	if err != nil {
		return "", err
	}
	if item.HasText(items, text) {
		return "", ErrDuplicateItem
	}

	ni := item.New(text, section)
	items = append(items, ni)
	item.Sort(items)

	if err := writeItems(tx, listID, false, items); err != nil {
		return "", err
	}
	if err := touchList(tx, listID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return ni.ID, nil
}

// RemoveItem deletes an item from the working collection by identity.
// Removing an absent item is a silent no-op.
func (s *ListStore) RemoveItem(listID int64, itemID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, _, err := listFlags(tx, listID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrListNotFound
	}

	if _, err := tx.Exec(`DELETE FROM list_items WHERE list_id = ? AND original = 0 AND id = ?`, listID, itemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if err := touchList(tx, listID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// EditItemText renames an item in the working collection and returns the
// prior text so the caller can repair the autocomplete index.
func (s *ListStore) EditItemText(listID int64, itemID, newText string) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, _, err := listFlags(tx, listID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrListNotFound
	}

	items, err := readItems(tx, listID, false)
	if err != nil {
		return "", err
	}

	oldText, err := renameItem(items, itemID, newText)
	if err != nil {
		return oldText, err
	}
	item.Sort(items)

	if err := writeItems(tx, listID, false, items); err != nil {
		return "", err
	}
	if err := touchList(tx, listID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return oldText, nil
}

// renameItem validates and applies a text change in place.
func renameItem(items []model.Item, itemID, newText string) (string, error) {
	idx := item.IndexByID(items, itemID)
	if idx < 0 {
		return "", ErrItemNotFound
	}
	oldText := items[idx].Text
	if strings.EqualFold(oldText, newText) {
		return oldText, ErrNoOpEdit
	}
	for i := range items {
		if i != idx && strings.EqualFold(items[i].Text, newText) {
			return oldText, ErrDuplicateItem
		}
	}
	items[idx].Text = newText
	return oldText, nil
}

// AdjustQuantity applies a delta to an item's quantity, clamped to a minimum
// of 1, and returns the resulting quantity.
func (s *ListStore) AdjustQuantity(listID int64, itemID string, delta int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, _, err := listFlags(tx, listID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrListNotFound
	}

	var current int
	row := tx.QueryRow(`SELECT quantity FROM list_items WHERE list_id = ? AND original = 0 AND id = ?`, listID, itemID)
	if err := row.Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrItemNotFound
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}

	next := current + delta
	if next < 1 {
		next = 1
	}
	if _, err := tx.Exec(`UPDATE list_items SET quantity = ? WHERE list_id = ? AND original = 0 AND id = ?`, next, listID, itemID); err != nil {
		return 0, fmt.Errorf("update quantity: %w", err)
	}
	if err := touchList(tx, listID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// ToggleChecked flips an item's checked flag and returns the new state.
// Only valid on ethereal lists; the flag is meaningless elsewhere.
func (s *ListStore) ToggleChecked(listID int64, itemID string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, ethereal, err := listFlags(tx, listID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrListNotFound
	}
	if !ethereal {
		return false, ErrNotEthereal
	}

	var checked int
	row := tx.QueryRow(`SELECT checked FROM list_items WHERE list_id = ? AND original = 0 AND id = ?`, listID, itemID)
	if err := row.Scan(&checked); err != nil {
		if err == sql.ErrNoRows {
			return false, ErrItemNotFound
		}
		return false, fmt.Errorf("get checked: %w", err)
	}

	next := checked == 0
	if _, err := tx.Exec(`UPDATE list_items SET checked = ? WHERE list_id = ? AND original = 0 AND id = ?`, boolInt(next), listID, itemID); err != nil {
		return false, fmt.Errorf("toggle checked: %w", err)
	}
	if err := touchList(tx, listID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// Restore starts a new checklist cycle on an ethereal list. Full mode
// replaces the working collection with an unchecked copy of the template;
// reset-checked-only keeps the current membership and just clears every
// checked flag.
func (s *ListStore) Restore(listID int64, resetCheckedOnly bool) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, ethereal, err := listFlags(tx, listID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrListNotFound
	}
	if !ethereal {
		return ErrNotEthereal
	}

	if resetCheckedOnly {
		if _, err := tx.Exec(`UPDATE list_items SET checked = 0 WHERE list_id = ? AND original = 0`, listID); err != nil {
			return fmt.Errorf("reset checked: %w", err)
		}
	} else {
		original, err := readItems(tx, listID, true)
		if err != nil {
			return err
		}
		// Identities carry over from the template so the two collections
		// stay linked for original-path edits.
		for i := range original {
			original[i].Checked = false
		}
		item.Sort(original)
		if err := writeItems(tx, listID, false, original); err != nil {
			return err
		}
	}
	if err := touchList(tx, listID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AddItemToOriginal appends an item to the ethereal template and mirrors it
// into the working collection under the same identity, so it shows up in the
// current run immediately.
func (s *ListStore) AddItemToOriginal(listID int64, text string) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, ethereal, err := listFlags(tx, listID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrListNotFound
	}
	if !ethereal {
		return "", ErrNotEthereal
	}

	original, err := readItems(tx, listID, true)
	if err != nil {
		return "", err
	}
	if item.HasText(original, text) {
		return "", ErrDuplicateItem
	}

	ni := item.New(text, "")
	original = append(original, ni)
	item.Sort(original)
	if err := writeItems(tx, listID, true, original); err != nil {
		return "", err
	}

	items, err := readItems(tx, listID, false)
	if err != nil {
		return "", err
	}
	// Mirror unless the working copy already carries the text; a duplicate
	// there would break per-collection uniqueness.
	if !item.HasText(items, text) {
		items = append(items, ni)
		item.Sort(items)
		if err := writeItems(tx, listID, false, items); err != nil {
			return "", err
		}
	}

	if err := touchList(tx, listID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return ni.ID, nil
}

// RemoveItemFromOriginal pulls an item from the template and from the working
// collection (same identity in both).
func (s *ListStore) RemoveItemFromOriginal(listID int64, itemID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, ethereal, err := listFlags(tx, listID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrListNotFound
	}
	if !ethereal {
		return ErrNotEthereal
	}

	if _, err := tx.Exec(`DELETE FROM list_items WHERE list_id = ? AND id = ?`, listID, itemID); err != nil {
		return fmt.Errorf("remove original item: %w", err)
	}
	if err := touchList(tx, listID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// EditItemTextInOriginal renames a template item and propagates the rename to
// the working copy carrying the same identity. Uniqueness is validated
// against the template collection.
func (s *ListStore) EditItemTextInOriginal(listID int64, itemID, newText string) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, ethereal, err := listFlags(tx, listID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrListNotFound
	}
	if !ethereal {
		return "", ErrNotEthereal
	}

	original, err := readItems(tx, listID, true)
	if err != nil {
		return "", err
	}
	oldText, err := renameItem(original, itemID, newText)
	if err != nil {
		return oldText, err
	}
	item.Sort(original)
	if err := writeItems(tx, listID, true, original); err != nil {
		return "", err
	}

	items, err := readItems(tx, listID, false)
	if err != nil {
		return "", err
	}
	if idx := item.IndexByID(items, itemID); idx >= 0 {
		// Skip the mirror when a different working item already carries the
		// new text; a duplicate there would break per-collection uniqueness.
		if j := item.IndexOfText(items, newText); j < 0 || j == idx {
			items[idx].Text = newText
			item.Sort(items)
			if err := writeItems(tx, listID, false, items); err != nil {
				return "", err
			}
		}
	}

	if err := touchList(tx, listID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return oldText, nil
}

// CreateSection tags a single item with a section name.
func (s *ListStore) CreateSection(listID int64, itemID, name string) error {
	return s.retagItems(listID, func(items []model.Item) error {
		idx := item.IndexByID(items, itemID)
		if idx < 0 {
			return ErrItemNotFound
		}
		items[idx].Section = name
		return nil
	})
}

// RenameSection retags every item currently in a section.
func (s *ListStore) RenameSection(listID int64, oldName, newName string) error {
	return s.retagItems(listID, func(items []model.Item) error {
		found := false
		for i := range items {
			if items[i].Section == oldName {
				items[i].Section = newName
				found = true
			}
		}
		if !found {
			return ErrSectionNotFound
		}
		return nil
	})
}

// DeleteSection drops the section tag from every item in it. The items
// themselves remain, un-sectioned.
func (s *ListStore) DeleteSection(listID int64, name string) error {
	return s.retagItems(listID, func(items []model.Item) error {
		found := false
		for i := range items {
			if items[i].Section == name {
				items[i].Section = ""
				found = true
			}
		}
		if !found {
			return ErrSectionNotFound
		}
		return nil
	})
}

func (s *ListStore) retagItems(listID int64, mutate func([]model.Item) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	exists, _, err := listFlags(tx, listID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrListNotFound
	}

	items, err := readItems(tx, listID, false)
	if err != nil {
		return err
	}
	if err := mutate(items); err != nil {
		return err
	}
	item.Sort(items)

	if err := writeItems(tx, listID, false, items); err != nil {
		return err
	}
	if err := touchList(tx, listID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Sections returns the distinct section names in use, alphabetical.
func (s *ListStore) Sections(listID int64) ([]string, error) {
	exists, _, err := listFlags(s.db, listID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrListNotFound
	}
	items, err := readItems(s.db, listID, false)
	if err != nil {
		return nil, err
	}
	return item.Sections(items), nil
}
