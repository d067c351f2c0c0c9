package directory

import (
	"context"
	"testing"

	"github.com/mr1hm/go-report-alerts/internal/models"
)

func setupTestDirectory(t *testing.T) *SQLiteDirectory {
	d, err := NewSQLiteDirectory(":memory:")
	if err != nil {
		t.Fatalf("failed to create test directory: %v", err)
	}
	return d
}

func TestSQLiteDirectory_AddAndList(t *testing.T) {
	d := setupTestDirectory(t)
	defer d.Close()

	ctx := context.Background()

	users := []models.UserRecord{
		{ID: "u1", Contact: "+919820098200", Pincode: "400001"},
		{ID: "u2", Contact: "9820098201", Pincode: "110001"},
		{ID: "u3", Contact: "9820098202"}, // no pincode
	}
	for _, u := range users {
		if err := d.AddUser(ctx, u); err != nil {
			t.Fatalf("AddUser(%s) failed: %v", u.ID, err)
		}
	}

	got, err := d.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 users, got %d", len(got))
	}

	byID := make(map[string]models.UserRecord)
	for _, u := range got {
		byID[u.ID] = u
	}

	if byID["u1"].Pincode != "400001" {
		t.Errorf("expected u1 pincode 400001, got %q", byID["u1"].Pincode)
	}
	if byID["u3"].Pincode != "" {
		t.Errorf("expected empty pincode for u3, got %q", byID["u3"].Pincode)
	}
	if byID["u2"].Contact != "9820098201" {
		t.Errorf("expected u2 contact preserved, got %q", byID["u2"].Contact)
	}
}

func TestSQLiteDirectory_AddUserReplaces(t *testing.T) {
	d := setupTestDirectory(t)
	defer d.Close()

	ctx := context.Background()

	if err := d.AddUser(ctx, models.UserRecord{ID: "u1", Contact: "111", Pincode: "400001"}); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	if err := d.AddUser(ctx, models.UserRecord{ID: "u1", Contact: "222", Pincode: "400002"}); err != nil {
		t.Fatalf("AddUser (replace) failed: %v", err)
	}

	got, err := d.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 user after replace, got %d", len(got))
	}
	if got[0].Contact != "222" || got[0].Pincode != "400002" {
		t.Errorf("replace did not take: %+v", got[0])
	}
}

func TestSQLiteDirectory_EmptyDirectory(t *testing.T) {
	d := setupTestDirectory(t)
	defer d.Close()

	got, err := d.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty directory, got %d users", len(got))
	}
}
