// Package search provides substring search over the caller's own buckets
// and activities. Results are always scoped to the resolved identity; there
// is no cross-user search surface.
package search

import (
	"context"
	"fmt"

	"github.com/andela/bucketlist/internal/apperror"
	"github.com/andela/bucketlist/internal/buckets"
)

// Result holds the matches for one query, split by resource type.
type Result struct {
	Buckets    []buckets.Bucket   `json:"buckets"`
	Activities []buckets.Activity `json:"activities"`
}

// SearchService defines the search contract.
type SearchService interface {
	Search(ctx context.Context, userID int64, query string) (*Result, error)
}

// searchService implements SearchService on top of the buckets repository.
type searchService struct {
	repo buckets.Repository
}

// NewSearchService creates a search service.
func NewSearchService(repo buckets.Repository) SearchService {
	return &searchService{repo: repo}
}

// Search matches the query against bucket names and activity descriptions
// owned by the caller.
func (s *searchService) Search(ctx context.Context, userID int64, query string) (*Result, error) {
	if query == "" {
		return nil, apperror.NewValidation("Please enter search parameters")
	}

	foundBuckets, err := s.repo.SearchBuckets(ctx, userID, query)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("searching buckets: %w", err))
	}
	foundActivities, err := s.repo.SearchActivities(ctx, userID, query)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("searching activities: %w", err))
	}

	result := &Result{Buckets: foundBuckets, Activities: foundActivities}
	if result.Buckets == nil {
		result.Buckets = []buckets.Bucket{}
	}
	if result.Activities == nil {
		result.Activities = []buckets.Activity{}
	}
	return result, nil
}
