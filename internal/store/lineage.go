package store

import (
	"fmt"

	"github.com/handfistface/ListPoint/internal/item"
	"github.com/handfistface/ListPoint/internal/model"
)

// Clone duplicates a list for a new owner: fresh item identities, quantities
// preserved, checked state reset on ethereal items, parent_id pointing at the
// source, and the source's clone_count bumped atomically. Clones are always
// public regardless of the source's visibility — cloning is how content
// propagates through the explore surface.
func (s *ListStore) Clone(listID, newOwnerID int64) (*model.List, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	src, err := getList(tx, listID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrListNotFound
	}

	id, err := s.createTx(tx, CreateListParams{
		Name:         src.Name,
		OwnerID:      newOwnerID,
		ThumbnailURL: src.ThumbnailURL,
		IsPublic:     true,
		IsEthereal:   src.IsEthereal,
		Tags:         src.Tags,
		Items:        item.Clone(src.Items, src.IsEthereal),
		ParentID:     &src.ID,
	})
	if err != nil {
		return nil, err
	}

	// createTx seeds the template from the working items; an ethereal source
	// has its own template, which replaces that seed.
	if src.IsEthereal {
		original := item.Clone(src.OriginalItems, true)
		item.Sort(original)
		if err := writeItems(tx, id, true, original); err != nil {
			return nil, err
		}
	}

	clone, err := getList(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return clone, nil
}

// Children returns the lists whose parent_id points at the given list.
func (s *ListStore) Children(listID int64) ([]model.List, error) {
	return s.queryLists(`SELECT `+listCols+` FROM lists WHERE parent_id = ? ORDER BY created_at ASC`, listID)
}

// Delete removes a list and repairs the clone lineage around it:
//
//  1. The parent (if any) loses one clone.
//  2. Children are re-pointed at the grandparent, which gains one clone per
//     adopted child.
//  3. If the deleted list was a lineage root, a single orphan snapshot list
//     owned by the system account is materialized lazily on first need, and
//     all children are re-pointed at it.
//  4. The list row goes away along with its favorites.
//
// Deleting a list that does not exist returns ErrListNotFound; the operation
// is deliberately not idempotent.
func (s *ListStore) Delete(listID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	lst, err := getList(tx, listID)
	if err != nil {
		return err
	}
	if lst == nil {
		return ErrListNotFound
	}

	if lst.ParentID != nil {
		if _, err := tx.Exec(`UPDATE lists SET clone_count = clone_count - 1 WHERE id = ?`, *lst.ParentID); err != nil {
			return fmt.Errorf("decrement parent clone count: %w", err)
		}
	}

	rows, err := tx.Query(`SELECT id FROM lists WHERE parent_id = ?`, listID)
	if err != nil {
		return fmt.Errorf("find children: %w", err)
	}
	var children []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan child: %w", err)
		}
		children = append(children, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var orphanID int64
	for _, childID := range children {
		adoptive := int64(0)
		if lst.ParentID != nil {
			adoptive = *lst.ParentID
		} else {
			if orphanID == 0 {
				orphanID, err = s.createOrphanTx(tx, lst)
				if err != nil {
					return err
				}
			}
			adoptive = orphanID
		}
		if _, err := tx.Exec(`UPDATE lists SET parent_id = ? WHERE id = ?`, adoptive, childID); err != nil {
			return fmt.Errorf("re-point child: %w", err)
		}
		if _, err := tx.Exec(`UPDATE lists SET clone_count = clone_count + 1 WHERE id = ?`, adoptive); err != nil {
			return fmt.Errorf("increment adoptive clone count: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM lists WHERE id = ?`, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM favorites WHERE list_id = ?`, listID); err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// createOrphanTx materializes the adoptive parent for a deleted lineage
// root: a public snapshot of the deleted list's content, owned by the system
// account, with no parent of its own. Checked state on working items is kept
// as a faithful snapshot; the template copy starts unchecked.
func (s *ListStore) createOrphanTx(tx dbtx, deleted *model.List) (int64, error) {
	id, err := s.createTx(tx, CreateListParams{
		Name:         deleted.Name,
		OwnerID:      s.systemUserID,
		ThumbnailURL: deleted.ThumbnailURL,
		IsPublic:     true,
		IsEthereal:   deleted.IsEthereal,
		Tags:         deleted.Tags,
		Items:        item.Clone(deleted.Items, false),
	})
	if err != nil {
		return 0, fmt.Errorf("create orphan list: %w", err)
	}
	if deleted.IsEthereal {
		original := item.Clone(deleted.OriginalItems, true)
		item.Sort(original)
		if err := writeItems(tx, id, true, original); err != nil {
			return 0, err
		}
	}
	return id, nil
}
