package store

import (
	"strings"
	"testing"

	"github.com/handfistface/ListPoint/internal/model"
)

func itemTexts(items []model.Item) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

func assertOrder(t *testing.T, items []model.Item, want ...string) {
	t.Helper()
	got := itemTexts(items)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAddItemSortsAndPersists(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Groceries", false)

	// Loose items interleaved with sectioned ones, added out of order.
	for _, add := range []struct{ text, section string }{
		{"zucchini", ""},
		{"apples", "Produce"},
		{"bread", ""},
		{"cheddar", "Dairy"},
		{"bananas", "Produce"},
	} {
		if _, err := env.lists.AddItem(lst.ID, add.text, add.section); err != nil {
			t.Fatalf("add %s: %v", add.text, err)
		}
	}

	got, err := env.lists.GetByID(lst.ID)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	// Sectioned first by (section, text), loose after by text.
	assertOrder(t, got.Items, "cheddar", "apples", "bananas", "bread", "zucchini")
}

func TestAddItemDuplicateText(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Groceries", false)

	if _, err := env.lists.AddItem(lst.ID, "Milk", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := env.lists.AddItem(lst.ID, "milk", ""); err != ErrDuplicateItem {
		t.Errorf("err = %v, want ErrDuplicateItem", err)
	}
	if _, err := env.lists.AddItem(404, "milk", ""); err != ErrListNotFound {
		t.Errorf("missing list err = %v, want ErrListNotFound", err)
	}
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Groceries", false)

	id, err := env.lists.AddItem(lst.ID, "milk", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := env.lists.RemoveItem(lst.ID, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Absent item is a silent no-op.
	if err := env.lists.RemoveItem(lst.ID, id); err != nil {
		t.Errorf("second remove err = %v, want nil", err)
	}
	if err := env.lists.RemoveItem(404, id); err != ErrListNotFound {
		t.Errorf("missing list err = %v, want ErrListNotFound", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	if len(got.Items) != 0 {
		t.Errorf("items = %v, want empty", got.Items)
	}
}

func TestEditItemText(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Groceries", false)

	id, _ := env.lists.AddItem(lst.ID, "mlik", "")
	if _, err := env.lists.AddItem(lst.ID, "eggs", ""); err != nil {
		t.Fatal(err)
	}

	oldText, err := env.lists.EditItemText(lst.ID, id, "milk")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if oldText != "mlik" {
		t.Errorf("old text = %q, want %q", oldText, "mlik")
	}

	if _, err := env.lists.EditItemText(lst.ID, id, "MILK"); err != ErrNoOpEdit {
		t.Errorf("same text err = %v, want ErrNoOpEdit", err)
	}
	if _, err := env.lists.EditItemText(lst.ID, id, "Eggs"); err != ErrDuplicateItem {
		t.Errorf("collision err = %v, want ErrDuplicateItem", err)
	}
	if _, err := env.lists.EditItemText(lst.ID, "no-such-id", "x"); err != ErrItemNotFound {
		t.Errorf("missing item err = %v, want ErrItemNotFound", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	assertOrder(t, got.Items, "eggs", "milk")
}

func TestAdjustQuantityClampsAtOne(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Groceries", false)
	id, _ := env.lists.AddItem(lst.ID, "milk", "")

	qty, err := env.lists.AdjustQuantity(lst.ID, id, 3)
	if err != nil || qty != 4 {
		t.Errorf("after +3: qty = %d, err = %v, want 4", qty, err)
	}
	qty, err = env.lists.AdjustQuantity(lst.ID, id, -10)
	if err != nil || qty != 1 {
		t.Errorf("after -10: qty = %d, err = %v, want clamp to 1", qty, err)
	}
	if _, err := env.lists.AdjustQuantity(lst.ID, "no-such-id", 1); err != ErrItemNotFound {
		t.Errorf("missing item err = %v, want ErrItemNotFound", err)
	}
}

func TestToggleCheckedEtherealOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	plain := env.createList(t, owner.ID, "Plain", false)
	ethereal := env.createList(t, owner.ID, "Checklist", true)

	plainItem, _ := env.lists.AddItem(plain.ID, "milk", "")
	if _, err := env.lists.ToggleChecked(plain.ID, plainItem); err != ErrNotEthereal {
		t.Errorf("non-ethereal toggle err = %v, want ErrNotEthereal", err)
	}

	id, _ := env.lists.AddItem(ethereal.ID, "milk", "")
	checked, err := env.lists.ToggleChecked(ethereal.ID, id)
	if err != nil || !checked {
		t.Errorf("first toggle = %v, %v, want true", checked, err)
	}
	checked, err = env.lists.ToggleChecked(ethereal.ID, id)
	if err != nil || checked {
		t.Errorf("second toggle = %v, %v, want false", checked, err)
	}
	if _, err := env.lists.ToggleChecked(ethereal.ID, "no-such-id"); err != ErrItemNotFound {
		t.Errorf("missing item err = %v, want ErrItemNotFound", err)
	}
}

func TestRestoreFullReplacesWorkingSet(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	milkID, _ := env.lists.AddItemToOriginal(lst.ID, "milk")
	if _, err := env.lists.AddItemToOriginal(lst.ID, "eggs"); err != nil {
		t.Fatal(err)
	}

	// Drift the working collection away from the template.
	if _, err := env.lists.ToggleChecked(lst.ID, milkID); err != nil {
		t.Fatal(err)
	}
	if err := env.lists.RemoveItem(lst.ID, milkID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.lists.AddItem(lst.ID, "chips", ""); err != nil {
		t.Fatal(err)
	}

	if err := env.lists.Restore(lst.ID, false); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	assertOrder(t, got.Items, "eggs", "milk")
	for _, it := range got.Items {
		if it.Checked {
			t.Errorf("item %q still checked after restore", it.Text)
		}
	}
	// Template identities carry over into the restored working set.
	found := false
	for _, it := range got.Items {
		if it.ID == milkID {
			found = true
		}
	}
	if !found {
		t.Error("restored items should retain template identities")
	}
}

func TestRestoreResetCheckedOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	if _, err := env.lists.AddItemToOriginal(lst.ID, "milk"); err != nil {
		t.Fatal(err)
	}
	chipsID, _ := env.lists.AddItem(lst.ID, "chips", "")
	if _, err := env.lists.ToggleChecked(lst.ID, chipsID); err != nil {
		t.Fatal(err)
	}

	if err := env.lists.Restore(lst.ID, true); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	// Membership untouched, checked flags cleared.
	assertOrder(t, got.Items, "chips", "milk")
	for _, it := range got.Items {
		if it.Checked {
			t.Errorf("item %q still checked", it.Text)
		}
	}
}

func TestRestoreRequiresEthereal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Plain", false)

	if err := env.lists.Restore(lst.ID, false); err != ErrNotEthereal {
		t.Errorf("err = %v, want ErrNotEthereal", err)
	}
	if err := env.lists.Restore(404, false); err != ErrListNotFound {
		t.Errorf("missing list err = %v, want ErrListNotFound", err)
	}
}

func TestAddItemToOriginalMirrorsIntoWorking(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	id, err := env.lists.AddItemToOriginal(lst.ID, "milk")
	if err != nil {
		t.Fatalf("add to original: %v", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	if len(got.OriginalItems) != 1 || got.OriginalItems[0].Text != "milk" {
		t.Fatalf("original = %v", got.OriginalItems)
	}
	if len(got.Items) != 1 || got.Items[0].ID != id {
		t.Fatalf("working copy should mirror the same identity, got %v", got.Items)
	}

	if _, err := env.lists.AddItemToOriginal(lst.ID, "MILK"); err != ErrDuplicateItem {
		t.Errorf("duplicate err = %v, want ErrDuplicateItem", err)
	}
}

func TestAddItemToOriginalSkipsMirrorOnWorkingDuplicate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	workingID, _ := env.lists.AddItem(lst.ID, "milk", "")
	if _, err := env.lists.AddItemToOriginal(lst.ID, "milk"); err != nil {
		t.Fatalf("add to original: %v", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	if len(got.Items) != 1 || got.Items[0].ID != workingID {
		t.Errorf("working collection should keep its single entry, got %v", got.Items)
	}
	if len(got.OriginalItems) != 1 {
		t.Errorf("original = %v, want one entry", got.OriginalItems)
	}
}

func TestRemoveItemFromOriginalRemovesBoth(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	id, _ := env.lists.AddItemToOriginal(lst.ID, "milk")
	if err := env.lists.RemoveItemFromOriginal(lst.ID, id); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	if len(got.Items) != 0 || len(got.OriginalItems) != 0 {
		t.Errorf("items = %v, original = %v, want both empty", got.Items, got.OriginalItems)
	}
}

func TestEditItemTextInOriginalPropagates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	id, _ := env.lists.AddItemToOriginal(lst.ID, "mlik")
	oldText, err := env.lists.EditItemTextInOriginal(lst.ID, id, "milk")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if oldText != "mlik" {
		t.Errorf("old text = %q", oldText)
	}

	got, _ := env.lists.GetByID(lst.ID)
	if got.OriginalItems[0].Text != "milk" {
		t.Errorf("original text = %q", got.OriginalItems[0].Text)
	}
	if got.Items[0].Text != "milk" {
		t.Errorf("working text = %q, rename should propagate", got.Items[0].Text)
	}
}

func TestEditItemTextInOriginalSkipsMirrorOnWorkingDuplicate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Checklist", true)

	if _, err := env.lists.AddItem(lst.ID, "milk", ""); err != nil {
		t.Fatal(err)
	}
	id, err := env.lists.AddItemToOriginal(lst.ID, "bread")
	if err != nil {
		t.Fatal(err)
	}

	// The template takes the rename; the working copy keeps its old text so
	// it never holds two case-insensitively equal items.
	if _, err := env.lists.EditItemTextInOriginal(lst.ID, id, "Milk"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	if len(got.OriginalItems) != 1 || got.OriginalItems[0].Text != "Milk" {
		t.Errorf("original = %v, want [Milk]", itemTexts(got.OriginalItems))
	}
	milky := 0
	for _, it := range got.Items {
		if strings.EqualFold(it.Text, "milk") {
			milky++
		}
	}
	if milky != 1 {
		t.Errorf("working copy holds %d items matching 'milk', want 1: %v", milky, itemTexts(got.Items))
	}
}

func TestOriginalPathRequiresEthereal(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Plain", false)

	if _, err := env.lists.AddItemToOriginal(lst.ID, "milk"); err != ErrNotEthereal {
		t.Errorf("add err = %v, want ErrNotEthereal", err)
	}
	if err := env.lists.RemoveItemFromOriginal(lst.ID, "x"); err != ErrNotEthereal {
		t.Errorf("remove err = %v, want ErrNotEthereal", err)
	}
	if _, err := env.lists.EditItemTextInOriginal(lst.ID, "x", "y"); err != ErrNotEthereal {
		t.Errorf("edit err = %v, want ErrNotEthereal", err)
	}
}

func TestSectionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice")
	lst := env.createList(t, owner.ID, "Groceries", false)

	milkID, _ := env.lists.AddItem(lst.ID, "milk", "")
	cheeseID, _ := env.lists.AddItem(lst.ID, "cheese", "")
	if _, err := env.lists.AddItem(lst.ID, "bread", ""); err != nil {
		t.Fatal(err)
	}

	if err := env.lists.CreateSection(lst.ID, milkID, "Dairy"); err != nil {
		t.Fatalf("create section: %v", err)
	}
	if err := env.lists.CreateSection(lst.ID, cheeseID, "Dairy"); err != nil {
		t.Fatalf("tag second item: %v", err)
	}
	if err := env.lists.CreateSection(lst.ID, "no-such-id", "Dairy"); err != ErrItemNotFound {
		t.Errorf("missing item err = %v, want ErrItemNotFound", err)
	}

	sections, err := env.lists.Sections(lst.ID)
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	if len(sections) != 1 || sections[0] != "Dairy" {
		t.Errorf("sections = %v, want [Dairy]", sections)
	}

	if err := env.lists.RenameSection(lst.ID, "Dairy", "Fridge"); err != nil {
		t.Fatalf("rename section: %v", err)
	}
	if err := env.lists.RenameSection(lst.ID, "Dairy", "X"); err != ErrSectionNotFound {
		t.Errorf("rename missing err = %v, want ErrSectionNotFound", err)
	}

	got, _ := env.lists.GetByID(lst.ID)
	assertOrder(t, got.Items, "cheese", "milk", "bread")

	// Deleting a section untags its items but keeps them.
	if err := env.lists.DeleteSection(lst.ID, "Fridge"); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	got, _ = env.lists.GetByID(lst.ID)
	if len(got.Items) != 3 {
		t.Fatalf("items = %v, deletion must not remove items", itemTexts(got.Items))
	}
	for _, it := range got.Items {
		if it.Section != "" {
			t.Errorf("item %q still tagged %q", it.Text, it.Section)
		}
	}
	if err := env.lists.DeleteSection(lst.ID, "Fridge"); err != ErrSectionNotFound {
		t.Errorf("delete missing err = %v, want ErrSectionNotFound", err)
	}
}
