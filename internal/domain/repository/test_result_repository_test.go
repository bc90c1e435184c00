package repository

import (
	"context"
	"testing"

	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/testutil"
)

func ptr(f float64) *float64 { return &f }

func TestTestResultCreateRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "demo_ogrenci", "123456", model.RoleUser)
	repo := NewTestResultRepository(db)
	ctx := context.Background()

	result := &model.TestResult{
		UserID:   user.ID,
		TestName: "digit-span",
		Score:    7,
		Hits:     ptr(5),
		Misses:   ptr(2),
	}
	if err := repo.Create(ctx, result); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.ID == 0 || result.CreatedAt.IsZero() {
		t.Errorf("expected generated id and timestamp, got %+v", result)
	}

	results, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1", len(results))
	}

	got := results[0]
	if got.ID != result.ID || got.TestName != "digit-span" || got.Score != 7 {
		t.Errorf("unexpected row: %+v", got)
	}
	if got.Hits == nil || *got.Hits != 5 {
		t.Errorf("Hits = %v, want 5", got.Hits)
	}
	if got.Misses == nil || *got.Misses != 2 {
		t.Errorf("Misses = %v, want 2", got.Misses)
	}
	if got.FalseAlarms != nil {
		t.Errorf("FalseAlarms = %v, want nil", *got.FalseAlarms)
	}
	if !got.Extra.IsNull() {
		t.Errorf("Extra = %s, want null", got.Extra)
	}
}

func TestTestResultExtraStoredOpaque(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "u", "p", model.RoleUser)
	repo := NewTestResultRepository(db)
	ctx := context.Background()

	result := &model.TestResult{
		UserID:   user.ID,
		TestName: "t",
		Score:    1,
		Extra:    model.Extra(`{"customField":"abc"}`),
	}
	if err := repo.Create(ctx, result); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	fields, err := results[0].Extra.Fields()
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if string(fields["customField"]) != `"abc"` {
		t.Errorf("customField = %s", fields["customField"])
	}
}

func TestTestResultUnknownUserRejectedByStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewTestResultRepository(db)

	err := repo.Create(context.Background(), &model.TestResult{UserID: 999, TestName: "t", Score: 1})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
	if n := testutil.CountRows(t, db, "test_results"); n != 0 {
		t.Errorf("test_results = %d, want 0", n)
	}
}

func TestTestResultListsNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	alice := testutil.CreateTestUser(t, db, "alice", "p", model.RoleUser)
	bob := testutil.CreateTestUser(t, db, "bob", "p", model.RoleUser)
	repo := NewTestResultRepository(db)
	ctx := context.Background()

	inserts := []struct {
		user int64
		name string
	}{
		{alice.ID, "a1"},
		{bob.ID, "b1"},
		{alice.ID, "a2"},
	}
	for _, in := range inserts {
		if err := repo.Create(ctx, &model.TestResult{UserID: in.user, TestName: in.name, Score: 1}); err != nil {
			t.Fatalf("Create %s failed: %v", in.name, err)
		}
	}

	mine, err := repo.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(mine) != 2 || mine[0].TestName != "a2" || mine[1].TestName != "a1" {
		t.Errorf("ListByUser order = %+v", mine)
	}

	all, err := repo.ListWithUsername(ctx)
	if err != nil {
		t.Fatalf("ListWithUsername failed: %v", err)
	}
	wantNames := []string{"a2", "b1", "a1"}
	wantUsers := []string{"alice", "bob", "alice"}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, r := range all {
		if r.TestName != wantNames[i] || r.Username != wantUsers[i] {
			t.Errorf("all[%d] = %s/%s, want %s/%s", i, r.TestName, r.Username, wantNames[i], wantUsers[i])
		}
	}
}

func TestTestResultListByUserEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	results, err := NewTestResultRepository(db).ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("ListByUser = %#v, want empty non-nil slice", results)
	}
}
