package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/handfistface/ListPoint/internal/model"
)

type FavoriteStore struct {
	db *sql.DB
}

func NewFavoriteStore(db *sql.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Add favorites a list for a user. Favoriting twice is a success no-op; the
// unique constraint on the pair absorbs the duplicate.
func (s *FavoriteStore) Add(userID, listID int64) error {
	_, err := s.db.Exec(
		`INSERT INTO favorites (user_id, list_id) VALUES (?, ?)
		 ON CONFLICT (user_id, list_id) DO NOTHING`,
		userID, listID,
	)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *FavoriteStore) Remove(userID, listID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM favorites WHERE user_id = ? AND list_id = ?`,
		userID, listID,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *FavoriteStore) IsFavorited(userID, listID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND list_id = ?`,
		userID, listID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return n > 0, nil
}

// ListsByUser resolves a user's favorites against the lists table, newest
// list first. Favorites pointing at deleted lists are skipped.
func (s *FavoriteStore) ListsByUser(userID int64) ([]model.List, error) {
	rows, err := s.db.Query(
		`SELECT l.`+strings.ReplaceAll(listCols, ", ", ", l.")+`
		 FROM lists l JOIN favorites f ON f.list_id = l.id
		 WHERE f.user_id = ? ORDER BY l.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorited lists: %w", err)
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
