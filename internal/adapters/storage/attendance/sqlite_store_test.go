package attendance_test

import (
	"context"
	"testing"
	"time"

	attendanceStore "clubdash/internal/adapters/storage/attendance"
	"clubdash/internal/adapters/storage/storagetest"
	domain "clubdash/internal/domain/attendance"
)

// TestSQLiteStore_SaveUpserts keeps one row per member and occurrence.
func TestSQLiteStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	db := storagetest.OpenDB(t)
	storagetest.InsertTemplate(t, db, "fund")
	store := attendanceStore.NewSQLiteStore(db)
	at := time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, domain.Record{ID: "r1", ClassID: "fund", Date: "2024-06-03", UserID: "ana", Status: domain.StatusMissed, MarkedAt: at}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, domain.Record{ID: "r2", ClassID: "fund", Date: "2024-06-03", UserID: "ana", Status: domain.StatusAttended, MarkedAt: at.Add(time.Hour)}); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := store.ListByOccurrence(ctx, "fund", "2024-06-03")
	if err != nil {
		t.Fatalf("ListByOccurrence: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" || got[0].Status != domain.StatusAttended || !got[0].MarkedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("records = %+v", got)
	}

	if ranged, _ := store.ListByDateRange(ctx, "2024-06-04", "2024-06-30"); len(ranged) != 0 {
		t.Errorf("ListByDateRange outside = %+v", ranged)
	}
	if mine, _ := store.ListByUser(ctx, "ana", "2024-06-01", "2024-06-30"); len(mine) != 1 {
		t.Errorf("ListByUser = %+v", mine)
	}
}
