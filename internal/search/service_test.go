package search

import (
	"context"
	"errors"
	"testing"

	"github.com/andela/bucketlist/internal/apperror"
	"github.com/andela/bucketlist/internal/buckets"
)

// mockSearchRepo overrides only the search methods; the embedded nil
// interface panics on anything else, which would flag an unexpected call.
type mockSearchRepo struct {
	buckets.Repository
	searchBucketsFn    func(ctx context.Context, userID int64, query string) ([]buckets.Bucket, error)
	searchActivitiesFn func(ctx context.Context, userID int64, query string) ([]buckets.Activity, error)
}

func (m *mockSearchRepo) SearchBuckets(ctx context.Context, userID int64, query string) ([]buckets.Bucket, error) {
	if m.searchBucketsFn != nil {
		return m.searchBucketsFn(ctx, userID, query)
	}
	return nil, nil
}

func (m *mockSearchRepo) SearchActivities(ctx context.Context, userID int64, query string) ([]buckets.Activity, error) {
	if m.searchActivitiesFn != nil {
		return m.searchActivitiesFn(ctx, userID, query)
	}
	return nil, nil
}

func TestSearch_ScopedToCaller(t *testing.T) {
	var bucketUserID, activityUserID int64
	repo := &mockSearchRepo{
		searchBucketsFn: func(ctx context.Context, userID int64, query string) ([]buckets.Bucket, error) {
			bucketUserID = userID
			return []buckets.Bucket{{ID: 1, Name: "Travel"}}, nil
		},
		searchActivitiesFn: func(ctx context.Context, userID int64, query string) ([]buckets.Activity, error) {
			activityUserID = userID
			return nil, nil
		},
	}

	svc := NewSearchService(repo)
	result, err := svc.Search(context.Background(), 7, "trav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucketUserID != 7 || activityUserID != 7 {
		t.Errorf("expected both searches scoped to user 7, got %d and %d", bucketUserID, activityUserID)
	}
	if len(result.Buckets) != 1 {
		t.Errorf("expected 1 bucket match, got %d", len(result.Buckets))
	}
	if result.Activities == nil {
		t.Error("expected empty slice, not nil")
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := NewSearchService(&mockSearchRepo{})

	_, err := svc.Search(context.Background(), 7, "")
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 400 {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestSearch_RepoError(t *testing.T) {
	repo := &mockSearchRepo{
		searchBucketsFn: func(ctx context.Context, userID int64, query string) ([]buckets.Bucket, error) {
			return nil, errors.New("db gone")
		},
	}

	svc := NewSearchService(repo)
	_, err := svc.Search(context.Background(), 7, "trav")
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 500 {
		t.Fatalf("expected internal error, got: %v", err)
	}
}
