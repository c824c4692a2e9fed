package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
)

// ListService handles listing, grouping and searching hidden files
type ListService struct {
	gateway ports.Gateway
}

func NewListService(gateway ports.Gateway) *ListService {
	return &ListService{gateway: gateway}
}

// ListRequest represents a request to list hidden files
type ListRequest struct {
	Category domain.Category // Only this category (optional)
	Query    string          // Fuzzy name filter (optional)
}

// Group is one display section
type Group struct {
	Category domain.Category
	Files    []domain.FileMeta
}

// ListResponse represents the response from listing hidden files
type ListResponse struct {
	Files      []domain.FileMeta
	Groups     []Group
	Total      int
	TotalBytes int64
}

// Execute lists hidden files newest first, optionally filtered
func (s *ListService) Execute(ctx context.Context, req ListRequest) (*ListResponse, error) {
	files, err := s.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hidden files: %w", err)
	}

	SortNewestFirst(files)

	if req.Category != "" {
		files = FilterByCategory(files, req.Category)
	}
	if strings.TrimSpace(req.Query) != "" {
		files = Search(files, req.Query)
	}

	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}

	return &ListResponse{
		Files:      files,
		Groups:     GroupByCategory(files),
		Total:      len(files),
		TotalBytes: total,
	}, nil
}

// SortNewestFirst orders files by id descending, i.e. most recently hidden first
func SortNewestFirst(files []domain.FileMeta) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].ID > files[j].ID
	})
}

// FilterByCategory keeps files whose display category matches c.
// Legacy rows without a category count as other.
func FilterByCategory(files []domain.FileMeta, c domain.Category) []domain.FileMeta {
	var filtered []domain.FileMeta
	for _, f := range files {
		if f.DisplayCategory() == c {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// GroupByCategory splits files into sections in display order, skipping
// empty categories. Order within a section is preserved.
func GroupByCategory(files []domain.FileMeta) []Group {
	buckets := make(map[domain.Category][]domain.FileMeta)
	for _, f := range files {
		c := f.DisplayCategory()
		buckets[c] = append(buckets[c], f)
	}

	var groups []Group
	for _, c := range domain.Categories() {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, Group{Category: c, Files: buckets[c]})
	}
	return groups
}

type fuzzyMatch struct {
	file  domain.FileMeta
	score int
}

// Search ranks files by how well their name matches query.
// Name matches outrank MIME type matches; ties keep the input order.
func Search(files []domain.FileMeta, query string) []domain.FileMeta {
	query = strings.TrimSpace(query)
	if query == "" {
		return files
	}

	var matches []fuzzyMatch
	for _, f := range files {
		if score := fuzzyMatchScore(f.Name, query); score > 0 {
			matches = append(matches, fuzzyMatch{file: f, score: score + 1000})
			continue
		}
		if score := fuzzyMatchScore(f.MimeType, query); score > 0 {
			matches = append(matches, fuzzyMatch{file: f, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	result := make([]domain.FileMeta, len(matches))
	for i, m := range matches {
		result[i] = m.file
	}
	return result
}

// fuzzyMatchScore returns 0 for no match and higher scores for better ones.
// Substring hits always beat scattered subsequence hits.
func fuzzyMatchScore(text, query string) int {
	if text == "" || query == "" {
		return 0
	}

	textLower := strings.ToLower(text)
	queryLower := strings.ToLower(query)

	if text == query {
		return 10000
	}
	if textLower == queryLower {
		return 9000
	}

	if strings.Contains(textLower, queryLower) {
		score := 5000
		if strings.HasPrefix(textLower, queryLower) {
			score += 2000
		}
		return score
	}

	score := 0
	textRunes := []rune(textLower)
	queryRunes := []rune(queryLower)

	queryIdx := 0
	consecutive := 0
	lastMatch := -1

	for i := 0; i < len(textRunes) && queryIdx < len(queryRunes); i++ {
		if textRunes[i] != queryRunes[queryIdx] {
			continue
		}

		score += 100
		if i == lastMatch+1 {
			consecutive++
			score += consecutive * 50
		} else {
			consecutive = 0
		}

		if i == 0 || isWordBoundary(textRunes[i-1]) {
			score += 200
		}
		if i == 0 {
			score += 300
		}

		lastMatch = i
		queryIdx++
	}

	if queryIdx != len(queryRunes) {
		return 0
	}

	// gaps cost a little
	score -= (lastMatch + 1 - len(queryRunes)) * 10
	if score < 1 {
		score = 1
	}
	return score
}

func isWordBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '/'
}
