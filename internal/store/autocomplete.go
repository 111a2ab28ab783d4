package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Suggestion queries shorter than this return nothing; a one-character
// prefix scan is too broad to be useful.
const minSuggestQueryLen = 2

// suggestLimit caps how many suggestions a query returns.
const suggestLimit = 5

// AutocompleteStore is a per-user, usage-ranked index of item texts.
type AutocompleteStore struct {
	db *sql.DB
}

func NewAutocompleteStore(db *sql.DB) *AutocompleteStore {
	return &AutocompleteStore{db: db}
}

// Record notes that the user used an item text: bump the frequency if the
// entry exists, otherwise start it at 1.
func (s *AutocompleteStore) Record(userID int64, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO autocomplete_cache (user_id, item_text, frequency, last_used)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT (user_id, item_text)
		 DO UPDATE SET frequency = frequency + 1, last_used = excluded.last_used`,
		userID, text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record autocomplete: %w", err)
	}
	return nil
}

// Suggest returns up to five of the user's own entries whose text starts
// with the query, case-insensitively, most frequent first. Queries shorter
// than two characters return nothing.
func (s *AutocompleteStore) Suggest(userID int64, query string) ([]string, error) {
	if utf8.RuneCountInString(query) < minSuggestQueryLen {
		return []string{}, nil
	}

	rows, err := s.db.Query(
		`SELECT item_text FROM autocomplete_cache
		 WHERE user_id = ? AND lower(item_text) LIKE lower(?) || '%' ESCAPE '\'
		 ORDER BY frequency DESC, last_used DESC LIMIT ?`,
		userID, escapeLike(query), suggestLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	defer rows.Close()

	suggestions := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, text)
	}
	return suggestions, rows.Err()
}

// Replace repairs the index after an item rename. If both texts have
// entries, the old one is dropped and the new one bumped; if only the old
// exists it is renamed in place; otherwise the new text is recorded fresh.
func (s *AutocompleteStore) Replace(userID int64, oldText, newText string) error {
	var oldID, newID int64
	oldErr := s.db.QueryRow(
		`SELECT id FROM autocomplete_cache WHERE user_id = ? AND item_text = ?`,
		userID, oldText,
	).Scan(&oldID)
	if oldErr != nil && oldErr != sql.ErrNoRows {
		return fmt.Errorf("lookup old entry: %w", oldErr)
	}
	newErr := s.db.QueryRow(
		`SELECT id FROM autocomplete_cache WHERE user_id = ? AND item_text = ?`,
		userID, newText,
	).Scan(&newID)
	if newErr != nil && newErr != sql.ErrNoRows {
		return fmt.Errorf("lookup new entry: %w", newErr)
	}

	now := time.Now().UTC()
	switch {
	case oldErr == nil && newErr == nil:
		if _, err := s.db.Exec(`DELETE FROM autocomplete_cache WHERE id = ?`, oldID); err != nil {
			return fmt.Errorf("drop old entry: %w", err)
		}
		if _, err := s.db.Exec(
			`UPDATE autocomplete_cache SET frequency = frequency + 1, last_used = ? WHERE id = ?`,
			now, newID,
		); err != nil {
			return fmt.Errorf("bump new entry: %w", err)
		}
	case oldErr == nil:
		if _, err := s.db.Exec(
			`UPDATE autocomplete_cache SET item_text = ?, last_used = ? WHERE id = ?`,
			newText, now, oldID,
		); err != nil {
			return fmt.Errorf("rename entry: %w", err)
		}
	default:
		return s.Record(userID, newText)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user input only ever matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
