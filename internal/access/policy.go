package access

import "github.com/handfistface/ListPoint/internal/model"

// Role is the capability a user holds on a list.
type Role int

const (
	Denied Role = iota
	PublicViewer
	Collaborator
	Owner
)

func (r Role) String() string {
	switch r {
	case Owner:
		return "owner"
	case Collaborator:
		return "collaborator"
	case PublicViewer:
		return "public_viewer"
	default:
		return "denied"
	}
}

// Classify computes the acting user's role on a list. Pure classification,
// no side effects. Pass userID 0 for an anonymous viewer.
func Classify(list *model.List, userID int64) Role {
	if list == nil {
		return Denied
	}
	if userID != 0 && list.OwnerID == userID {
		return Owner
	}
	for _, c := range list.Collaborators {
		if userID != 0 && c == userID {
			return Collaborator
		}
	}
	if list.IsPublic {
		return PublicViewer
	}
	return Denied
}

// CanView reports whether the role may see the list at all.
func (r Role) CanView() bool { return r >= PublicViewer }

// CanEditItems reports whether the role may add, remove, edit, or re-section
// items and adjust quantities.
func (r Role) CanEditItems() bool { return r >= Collaborator }

// CanToggleChecked reports whether the role may check items off on an
// ethereal list. Any viewer of a visible list qualifies.
func (r Role) CanToggleChecked() bool { return r >= PublicViewer }

// CanManage reports whether the role may delete the list, change its
// metadata or visibility, manage collaborators, or mutate the original
// template items. Owner only.
func (r Role) CanManage() bool { return r == Owner }
