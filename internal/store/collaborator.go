package store

import "fmt"

// AddCollaborator grants a user mutation rights on a list. The owner cannot
// be a collaborator, and adding twice is rejected.
func (s *ListStore) AddCollaborator(listID, userID int64) error {
	lst, err := s.GetByID(listID)
	if err != nil {
		return err
	}
	if lst == nil {
		return ErrListNotFound
	}
	if lst.OwnerID == userID {
		return ErrOwnerCollaborator
	}
	for _, c := range lst.Collaborators {
		if c == userID {
			return ErrAlreadyCollaborator
		}
	}

	if _, err := s.db.Exec(
		`INSERT INTO list_collaborators (list_id, user_id) VALUES (?, ?)`,
		listID, userID,
	); err != nil {
		return fmt.Errorf("insert collaborator: %w", err)
	}
	return nil
}

// RemoveCollaborator revokes collaboration. Removing a non-collaborator is a
// silent no-op.
func (s *ListStore) RemoveCollaborator(listID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM list_collaborators WHERE list_id = ? AND user_id = ?`,
		listID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	return nil
}

func (s *ListStore) IsCollaborator(listID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM list_collaborators WHERE list_id = ? AND user_id = ?`,
		listID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check collaborator: %w", err)
	}
	return n > 0, nil
}
