package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports/mocks"
)

func TestStatsService_Execute(t *testing.T) {
	gw := mocks.NewMockGateway()
	seedFile(t, gw, "a.jpg", "image/jpeg", make([]byte, 100))
	seedFile(t, gw, "b.png", "image/png", make([]byte, 300))
	seedFile(t, gw, "c.pdf", "application/pdf", make([]byte, 50))
	gw.Seed(domain.StoredFile{FileMeta: domain.FileMeta{ID: 40, Name: "old.mp4", MimeType: "video/mp4", SizeBytes: 10}})

	resp, err := NewStatsService(gw).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Total != 4 || resp.TotalBytes != 460 {
		t.Errorf("expected 4 files / 460 bytes, got %d / %d", resp.Total, resp.TotalBytes)
	}
	if resp.Legacy != 1 {
		t.Errorf("expected 1 legacy row, got %d", resp.Legacy)
	}
	if len(resp.Categories) != 5 {
		t.Fatalf("expected all 5 categories, got %d", len(resp.Categories))
	}

	want := map[domain.Category][2]int64{
		domain.CategoryImage:    {2, 400},
		domain.CategoryVideo:    {0, 0},
		domain.CategoryDocument: {1, 50},
		domain.CategoryOther:    {1, 10}, // legacy row is counted with other
	}
	for _, cs := range resp.Categories {
		w, ok := want[cs.Category]
		if !ok {
			continue
		}
		if int64(cs.Count) != w[0] || cs.Bytes != w[1] {
			t.Errorf("%s: got %d files / %d bytes, want %d / %d", cs.Category, cs.Count, cs.Bytes, w[0], w[1])
		}
	}

	if resp.Largest == nil || resp.Largest.Name != "b.png" {
		t.Errorf("unexpected largest: %+v", resp.Largest)
	}
	if resp.Newest == nil || resp.Newest.ID != 40 {
		t.Errorf("unexpected newest: %+v", resp.Newest)
	}
}

func TestStatsService_Execute_Empty(t *testing.T) {
	resp, err := NewStatsService(mocks.NewMockGateway()).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 0 || resp.Largest != nil || resp.Newest != nil {
		t.Errorf("expected empty stats, got %+v", resp)
	}
}

func TestDeleteService_Execute(t *testing.T) {
	gw := mocks.NewMockGateway()
	svc := NewDeleteService(gw, nil)
	id := seedFile(t, gw, "a.txt", "text/plain", []byte("a"))

	if err := svc.Execute(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.Len() != 0 {
		t.Errorf("expected empty store, got %d", gw.Len())
	}

	// Deleting again is a no-op
	if err := svc.Execute(context.Background(), id); err != nil {
		t.Errorf("second delete should succeed, got %v", err)
	}

	gw.SetDeleteError(domain.ErrWriteFailed)
	if err := svc.Execute(context.Background(), 1); !errors.Is(err, domain.ErrWriteFailed) {
		t.Errorf("expected ErrWriteFailed, got %v", err)
	}
}

func TestReclassifyService_Execute(t *testing.T) {
	gw := mocks.NewMockGateway()
	gw.Seed(domain.StoredFile{FileMeta: domain.FileMeta{ID: 1, Name: "a.png", MimeType: "image/png"}})
	gw.Seed(domain.StoredFile{FileMeta: domain.FileMeta{ID: 2, Name: "b.pdf", MimeType: "application/pdf", Category: domain.CategoryDocument}})

	n, err := NewReclassifyService(gw).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row reclassified, got %d", n)
	}

	list, _ := gw.List(context.Background())
	for _, f := range list {
		if f.Category == "" {
			t.Errorf("%s still has no category", f.Name)
		}
	}
}
