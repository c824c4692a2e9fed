package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
)

type StatsService struct {
	gateway ports.Gateway
}

func NewStatsService(gateway ports.Gateway) *StatsService {
	return &StatsService{gateway: gateway}
}

type CategoryStats struct {
	Category domain.Category
	Count    int
	Bytes    int64
}

type StatsResponse struct {
	Total      int
	TotalBytes int64
	Categories []CategoryStats // every category, in display order
	Legacy     int             // rows still waiting for a category
	Largest    *domain.FileMeta
	Newest     *domain.FileMeta
}

// Execute summarizes the stash from metadata only
func (s *StatsService) Execute(ctx context.Context) (*StatsResponse, error) {
	files, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hidden files: %w", err)
	}

	index := make(map[domain.Category]int)
	resp := &StatsResponse{}
	for i, c := range domain.Categories() {
		index[c] = i
		resp.Categories = append(resp.Categories, CategoryStats{Category: c})
	}

	for i := range files {
		f := files[i]
		cs := &resp.Categories[index[f.DisplayCategory()]]
		cs.Count++
		cs.Bytes += f.SizeBytes

		resp.Total++
		resp.TotalBytes += f.SizeBytes
		if f.Category == "" {
			resp.Legacy++
		}
		if resp.Largest == nil || f.SizeBytes > resp.Largest.SizeBytes {
			resp.Largest = &files[i]
		}
		if resp.Newest == nil || f.ID > resp.Newest.ID {
			resp.Newest = &files[i]
		}
	}

	return resp, nil
}

// ReclassifyService derives categories for rows stored before categories existed
type ReclassifyService struct {
	maint ports.Maintenance
}

func NewReclassifyService(maint ports.Maintenance) *ReclassifyService {
	return &ReclassifyService{maint: maint}
}

// Execute returns how many rows were updated
func (s *ReclassifyService) Execute(ctx context.Context) (int, error) {
	n, err := s.maint.Backfill(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reclassify: %w", err)
	}
	return n, nil
}
