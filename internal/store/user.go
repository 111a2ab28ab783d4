package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/handfistface/ListPoint/internal/model"
)

// SystemUsername is the reserved account that adopts orphaned clone lineages.
// It is bootstrapped once at startup and can never log in.
const SystemUsername = "None"

const systemEmail = "none@system.internal"

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var isAdmin int
	err := scanner.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &isAdmin, &u.Theme, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin != 0
	return &u, nil
}

const userCols = `id, email, username, password_hash, is_admin, theme, created_at, updated_at`

func (s *UserStore) Create(email, username, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)`,
		email, username, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// SearchByUsername returns users whose username starts with the given prefix,
// case-insensitively. The system account is excluded.
func (s *UserStore) SearchByUsername(prefix string, limit int) ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users
		 WHERE lower(username) LIKE lower(?) || '%' ESCAPE '\' AND username != ?
		 ORDER BY username ASC LIMIT ?`,
		escapeLike(prefix), SystemUsername, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateTheme(id int64, theme string) error {
	_, err := s.db.Exec(
		`UPDATE users SET theme = ?, updated_at = ? WHERE id = ?`,
		theme, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	return nil
}

func (s *UserStore) SetAdmin(id int64, isAdmin bool) error {
	_, err := s.db.Exec(
		`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`,
		boolInt(isAdmin), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return nil
}

// EnsureSystemUser looks up or creates the reserved system account. Called
// once at service start; the resolved id is handed to the list store so
// orphan adoption never does a name lookup.
func (s *UserStore) EnsureSystemUser() (*model.User, error) {
	u, err := s.GetByUsername(SystemUsername)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	// Unusable hash: no password ever verifies against it.
	return s.Create(systemEmail, SystemUsername, "!")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
