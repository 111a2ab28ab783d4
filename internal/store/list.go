package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/handfistface/ListPoint/internal/item"
	"github.com/handfistface/ListPoint/internal/model"
)

// ListStore owns the list aggregate: the list row, its tag and collaborator
// sets, and its item collections. The system user id is resolved once at
// startup and used by the lineage repair in Delete.
type ListStore struct {
	db           *sql.DB
	systemUserID int64
}

func NewListStore(db *sql.DB, systemUserID int64) *ListStore {
	return &ListStore{db: db, systemUserID: systemUserID}
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the hydration helpers can
// run inside or outside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const listCols = `id, name, owner_id, thumbnail_url, is_public, is_ethereal, parent_id, clone_count, created_at, updated_at`

func scanList(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	var isPublic, isEthereal int
	var parentID sql.NullInt64

	err := scanner.Scan(
		&l.ID, &l.Name, &l.OwnerID, &l.ThumbnailURL, &isPublic, &isEthereal,
		&parentID, &l.CloneCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.IsPublic = isPublic != 0
	l.IsEthereal = isEthereal != 0
	if parentID.Valid {
		l.ParentID = &parentID.Int64
	}
	return &l, nil
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var it model.Item
	var checked int
	err := scanner.Scan(&it.ID, &it.Text, &it.Quantity, &checked, &it.Section, &it.AddedAt)
	if err != nil {
		return nil, err
	}
	it.Checked = checked != 0
	return &it, nil
}

const itemCols = `id, text, quantity, checked, section, added_at`

// CreateListParams seeds a new list. Items, Tags, and ParentID are only set
// on the clone path; user-created lists start empty.
type CreateListParams struct {
	Name         string
	OwnerID      int64
	ThumbnailURL string
	IsPublic     bool
	IsEthereal   bool
	Tags         []string
	Items        []model.Item
	ParentID     *int64
}

func (s *ListStore) Create(p CreateListParams) (*model.List, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := s.createTx(tx, p)
	if err != nil {
		return nil, err
	}

	lst, err := getList(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return lst, nil
}

func (s *ListStore) createTx(tx dbtx, p CreateListParams) (int64, error) {
	var parentID sql.NullInt64
	if p.ParentID != nil {
		parentID = sql.NullInt64{Int64: *p.ParentID, Valid: true}
	}
	now := time.Now().UTC()

	result, err := tx.Exec(
		`INSERT INTO lists (name, owner_id, thumbnail_url, is_public, is_ethereal, parent_id, clone_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		p.Name, p.OwnerID, p.ThumbnailURL, boolInt(p.IsPublic), boolInt(p.IsEthereal), parentID, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for _, tag := range p.Tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO list_tags (list_id, tag) VALUES (?, ?)`, id, tag); err != nil {
			return 0, fmt.Errorf("insert tag: %w", err)
		}
	}

	seed := make([]model.Item, len(p.Items))
	copy(seed, p.Items)
	item.Sort(seed)
	if err := writeItems(tx, id, false, seed); err != nil {
		return 0, err
	}
	if p.IsEthereal {
		if err := writeItems(tx, id, true, seed); err != nil {
			return 0, err
		}
	}

	// The new list points at its parent, so the parent gained a clone.
	if p.ParentID != nil {
		if _, err := tx.Exec(`UPDATE lists SET clone_count = clone_count + 1 WHERE id = ?`, *p.ParentID); err != nil {
			return 0, fmt.Errorf("increment parent clone count: %w", err)
		}
	}

	return id, nil
}

func (s *ListStore) GetByID(id int64) (*model.List, error) {
	return getList(s.db, id)
}

func getList(q dbtx, id int64) (*model.List, error) {
	row := q.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	if err := hydrateList(q, l); err != nil {
		return nil, err
	}
	return l, nil
}

func hydrateList(q dbtx, l *model.List) error {
	tags, err := listTags(q, l.ID)
	if err != nil {
		return err
	}
	l.Tags = tags

	collaborators, err := listCollaborators(q, l.ID)
	if err != nil {
		return err
	}
	l.Collaborators = collaborators

	items, err := readItems(q, l.ID, false)
	if err != nil {
		return err
	}
	l.Items = items

	if l.IsEthereal {
		original, err := readItems(q, l.ID, true)
		if err != nil {
			return err
		}
		l.OriginalItems = original
	}
	return nil
}

func listTags(q dbtx, listID int64) ([]string, error) {
	rows, err := q.Query(`SELECT tag FROM list_tags WHERE list_id = ? ORDER BY tag ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func listCollaborators(q dbtx, listID int64) ([]int64, error) {
	rows, err := q.Query(`SELECT user_id FROM list_collaborators WHERE list_id = ? ORDER BY created_at ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func readItems(q dbtx, listID int64, original bool) ([]model.Item, error) {
	rows, err := q.Query(
		`SELECT `+itemCols+` FROM list_items WHERE list_id = ? AND original = ? ORDER BY position ASC`,
		listID, boolInt(original),
	)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// writeItems replaces a whole item collection. Positions are the slice order,
// which callers establish with the canonical sort before writing.
func writeItems(q dbtx, listID int64, original bool, items []model.Item) error {
	if _, err := q.Exec(`DELETE FROM list_items WHERE list_id = ? AND original = ?`, listID, boolInt(original)); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i, it := range items {
		_, err := q.Exec(
			`INSERT INTO list_items (id, list_id, original, text, quantity, checked, section, position, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, listID, boolInt(original), it.Text, it.Quantity, boolInt(it.Checked), it.Section, i, it.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return nil
}

func touchList(q dbtx, listID int64) error {
	if _, err := q.Exec(`UPDATE lists SET updated_at = ? WHERE id = ?`, time.Now().UTC(), listID); err != nil {
		return fmt.Errorf("touch list: %w", err)
	}
	return nil
}

// ListUpdate is a field merge: nil means "leave unchanged". Items are never
// touched by a metadata update.
type ListUpdate struct {
	Name         *string
	Tags         *[]string
	IsPublic     *bool
	ThumbnailURL *string
}

func (s *ListStore) UpdateMeta(id int64, upd ListUpdate) (*model.List, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	existing, err := getList(tx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrListNotFound
	}

	if upd.Name != nil {
		if _, err := tx.Exec(`UPDATE lists SET name = ? WHERE id = ?`, *upd.Name, id); err != nil {
			return nil, fmt.Errorf("update name: %w", err)
		}
	}
	if upd.IsPublic != nil {
		if _, err := tx.Exec(`UPDATE lists SET is_public = ? WHERE id = ?`, boolInt(*upd.IsPublic), id); err != nil {
			return nil, fmt.Errorf("update visibility: %w", err)
		}
	}
	if upd.ThumbnailURL != nil {
		if _, err := tx.Exec(`UPDATE lists SET thumbnail_url = ? WHERE id = ?`, *upd.ThumbnailURL, id); err != nil {
			return nil, fmt.Errorf("update thumbnail: %w", err)
		}
	}
	if upd.Tags != nil {
		if _, err := tx.Exec(`DELETE FROM list_tags WHERE list_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clear tags: %w", err)
		}
		for _, tag := range *upd.Tags {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO list_tags (list_id, tag) VALUES (?, ?)`, id, tag); err != nil {
				return nil, fmt.Errorf("insert tag: %w", err)
			}
		}
	}
	if err := touchList(tx, id); err != nil {
		return nil, err
	}

	lst, err := getList(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return lst, nil
}

func (s *ListStore) ListByOwner(ownerID int64) ([]model.List, error) {
	return s.queryLists(
		`SELECT `+listCols+` FROM lists WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID,
	)
}

// ListByCollaborator returns lists where the user collaborates but does not own.
func (s *ListStore) ListByCollaborator(userID int64) ([]model.List, error) {
	return s.queryLists(
		`SELECT l.`+strings.ReplaceAll(listCols, ", ", ", l.")+`
		 FROM lists l JOIN list_collaborators c ON c.list_id = l.id
		 WHERE c.user_id = ? ORDER BY l.created_at DESC`,
		userID,
	)
}

// PublicLists returns public lists, newest first, optionally filtered by a
// case-insensitive name substring and a tag set ("any of").
func (s *ListStore) PublicLists(search string, tags []string, limit int) ([]model.List, error) {
	query, args := publicListsQuery(search, tags)
	query += ` ORDER BY l.created_at DESC LIMIT ?`
	args = append(args, limit)
	return s.queryLists(query, args...)
}

// PublicListsPage is the paginated explore query, most recently updated first.
func (s *ListStore) PublicListsPage(search string, tags []string, skip, limit int) ([]model.List, error) {
	query, args := publicListsQuery(search, tags)
	query += ` ORDER BY l.updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, skip)
	return s.queryLists(query, args...)
}

func publicListsQuery(search string, tags []string) (string, []any) {
	query := `SELECT DISTINCT l.` + strings.ReplaceAll(listCols, ", ", ", l.") + ` FROM lists l`
	var args []any

	if len(tags) > 0 {
		query += ` JOIN list_tags t ON t.list_id = l.id AND t.tag IN (?` + strings.Repeat(", ?", len(tags)-1) + `)`
		for _, tag := range tags {
			args = append(args, tag)
		}
	}
	query += ` WHERE l.is_public = 1`
	if search != "" {
		query += ` AND instr(lower(l.name), lower(?)) > 0`
		args = append(args, search)
	}
	return query, args
}

func (s *ListStore) queryLists(query string, args ...any) ([]model.List, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		if err := hydrateList(s.db, &lists[i]); err != nil {
			return nil, err
		}
	}
	return lists, nil
}
