package buckets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andela/bucketlist/internal/apperror"
	"github.com/andela/bucketlist/internal/sanitize"
)

// BucketService defines the business logic contract for buckets and
// activities. Every method takes the caller's resolved user id explicitly;
// nothing here reads ambient identity state.
type BucketService interface {
	CreateBucket(ctx context.Context, userID int64, req BucketRequest) (*Bucket, error)
	GetBucket(ctx context.Context, userID, bucketID int64) (*Bucket, error)
	ListBuckets(ctx context.Context, userID int64, page, limit int) (*BucketPage, error)
	UpdateBucket(ctx context.Context, userID, bucketID int64, req BucketRequest) (*Bucket, error)
	DeleteBucket(ctx context.Context, userID, bucketID int64) ([]Bucket, error)

	CreateActivity(ctx context.Context, userID, bucketID int64, req ActivityRequest) (*Activity, error)
	GetActivity(ctx context.Context, userID, bucketID, activityID int64) (*Activity, error)
	ListActivities(ctx context.Context, userID, bucketID int64, page, limit int) (*ActivityPage, error)
	UpdateActivity(ctx context.Context, userID, bucketID, activityID int64, req ActivityRequest) (*Activity, error)
	DeleteActivity(ctx context.Context, userID, bucketID, activityID int64) ([]Activity, error)
}

// bucketService implements BucketService.
type bucketService struct {
	repo    Repository
	baseURL string
}

// NewBucketService creates a bucket service. baseURL is used to build
// pagination links.
func NewBucketService(repo Repository, baseURL string) BucketService {
	return &bucketService{repo: repo, baseURL: baseURL}
}

// CreateBucket validates and stores a new bucket for the owner. The
// category is resolved get-or-create; whether it was found or created is
// logged but both outcomes give the caller the same bucket.
func (s *bucketService) CreateBucket(ctx context.Context, userID int64, req BucketRequest) (*Bucket, error) {
	name := sanitize.Text(req.Name)
	description := sanitize.Text(req.Description)
	if name == "" {
		return nil, apperror.NewValidation("Please enter the bucket name")
	}
	if description == "" {
		return nil, apperror.NewValidation("Please describe your bucket")
	}

	exists, err := s.repo.BucketNameExists(ctx, userID, name, 0)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking bucket name: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("You already have a bucket with that name")
	}

	category, err := s.ensureCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bucket := &Bucket{
		Name:        name,
		Description: description,
		CategoryID:  category.ID,
		UserID:      userID,
		Created:     now,
		Updated:     now,
	}

	id, err := s.repo.CreateBucket(ctx, bucket)
	if err != nil {
		return nil, serviceErr("creating bucket", err)
	}

	// Re-read for the joined category name and owner email.
	return s.repo.FindBucket(ctx, id, userID)
}

// GetBucket returns one of the owner's buckets.
func (s *bucketService) GetBucket(ctx context.Context, userID, bucketID int64) (*Bucket, error) {
	return s.repo.FindBucket(ctx, bucketID, userID)
}

// ListBuckets returns the owner's buckets. limit <= 0 disables pagination;
// otherwise the page carries next/previous links.
func (s *bucketService) ListBuckets(ctx context.Context, userID int64, page, limit int) (*BucketPage, error) {
	page, offset := normalizePage(page, limit)

	items, total, err := s.repo.ListBuckets(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing buckets: %w", err))
	}
	if items == nil {
		items = []Bucket{}
	}

	result := &BucketPage{Buckets: items}
	result.NextPage, result.PreviousPage = s.pageLinks("/api/v1/bucketlists", page, limit, total)
	return result, nil
}

// UpdateBucket rewrites a bucket's fields. Ownership is re-checked by the
// repository inside the write itself, not only here.
func (s *bucketService) UpdateBucket(ctx context.Context, userID, bucketID int64, req BucketRequest) (*Bucket, error) {
	name := sanitize.Text(req.Name)
	description := sanitize.Text(req.Description)
	if name == "" {
		return nil, apperror.NewValidation("Please enter the bucket name")
	}
	if description == "" {
		return nil, apperror.NewValidation("Please describe your bucket")
	}

	exists, err := s.repo.BucketNameExists(ctx, userID, name, bucketID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking bucket name: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("You already have a bucket with that name")
	}

	category, err := s.ensureCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	bucket := &Bucket{
		ID:          bucketID,
		Name:        name,
		Description: description,
		CategoryID:  category.ID,
		UserID:      userID,
		Updated:     time.Now().UTC(),
	}
	if err := s.repo.UpdateBucket(ctx, bucket); err != nil {
		return nil, serviceErr("updating bucket", err)
	}

	return s.repo.FindBucket(ctx, bucketID, userID)
}

// DeleteBucket removes a bucket and returns the owner's remaining buckets.
// A second delete of the same id is a clean NotFound, not a crash.
func (s *bucketService) DeleteBucket(ctx context.Context, userID, bucketID int64) ([]Bucket, error) {
	if err := s.repo.DeleteBucket(ctx, bucketID, userID); err != nil {
		return nil, serviceErr("deleting bucket", err)
	}

	remaining, _, err := s.repo.ListBuckets(ctx, userID, 0, 0)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing buckets: %w", err))
	}
	if remaining == nil {
		remaining = []Bucket{}
	}
	return remaining, nil
}

// CreateActivity validates and stores a new activity. The parent bucket
// must belong to the caller; otherwise the bucket simply is "not found".
func (s *bucketService) CreateActivity(ctx context.Context, userID, bucketID int64, req ActivityRequest) (*Activity, error) {
	description := sanitize.Text(req.Description)
	if description == "" {
		return nil, apperror.NewValidation("Please describe your activity")
	}

	if _, err := s.repo.FindBucket(ctx, bucketID, userID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ActivityExists(ctx, bucketID, userID, description, 0)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking activity: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("That activity is already in this bucket")
	}

	now := time.Now().UTC()
	activity := &Activity{
		Description: description,
		BucketID:    bucketID,
		UserID:      userID,
		Created:     now,
		Updated:     now,
	}

	id, err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		return nil, serviceErr("creating activity", err)
	}

	return s.repo.FindActivity(ctx, bucketID, id, userID)
}

// GetActivity returns one activity scoped to the caller.
func (s *bucketService) GetActivity(ctx context.Context, userID, bucketID, activityID int64) (*Activity, error) {
	return s.repo.FindActivity(ctx, bucketID, activityID, userID)
}

// ListActivities returns a bucket's activities for the caller.
func (s *bucketService) ListActivities(ctx context.Context, userID, bucketID int64, page, limit int) (*ActivityPage, error) {
	if _, err := s.repo.FindBucket(ctx, bucketID, userID); err != nil {
		return nil, err
	}

	page, offset := normalizePage(page, limit)

	items, total, err := s.repo.ListActivities(ctx, bucketID, userID, offset, limit)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing activities: %w", err))
	}
	if items == nil {
		items = []Activity{}
	}

	result := &ActivityPage{Activities: items}
	path := fmt.Sprintf("/api/v1/bucketlists/%d/items", bucketID)
	result.NextPage, result.PreviousPage = s.pageLinks(path, page, limit, total)
	return result, nil
}

// UpdateActivity rewrites an activity's description.
func (s *bucketService) UpdateActivity(ctx context.Context, userID, bucketID, activityID int64, req ActivityRequest) (*Activity, error) {
	description := sanitize.Text(req.Description)
	if description == "" {
		return nil, apperror.NewValidation("Please describe your activity")
	}

	exists, err := s.repo.ActivityExists(ctx, bucketID, userID, description, activityID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking activity: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("That activity is already in this bucket")
	}

	activity := &Activity{
		ID:          activityID,
		Description: description,
		BucketID:    bucketID,
		UserID:      userID,
		Updated:     time.Now().UTC(),
	}
	if err := s.repo.UpdateActivity(ctx, activity); err != nil {
		return nil, serviceErr("updating activity", err)
	}

	return s.repo.FindActivity(ctx, bucketID, activityID, userID)
}

// DeleteActivity removes an activity and returns the bucket's remaining
// activities.
func (s *bucketService) DeleteActivity(ctx context.Context, userID, bucketID, activityID int64) ([]Activity, error) {
	if err := s.repo.DeleteActivity(ctx, bucketID, activityID, userID); err != nil {
		return nil, serviceErr("deleting activity", err)
	}

	remaining, _, err := s.repo.ListActivities(ctx, bucketID, userID, 0, 0)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing activities: %w", err))
	}
	if remaining == nil {
		remaining = []Activity{}
	}
	return remaining, nil
}

// ensureCategory resolves the category name get-or-create, defaulting empty
// input. The explicit found/created outcome is surfaced in the log; the
// bucket write only needs the id.
func (s *bucketService) ensureCategory(ctx context.Context, name string) (Category, error) {
	name = sanitize.Text(name)
	if name == "" {
		name = DefaultCategory
	}

	category, created, err := s.repo.EnsureCategory(ctx, name)
	if err != nil {
		return Category{}, apperror.NewInternal(fmt.Errorf("resolving category: %w", err))
	}
	if created {
		slog.Info("category created", slog.String("name", category.Name))
	}
	return category, nil
}

// normalizePage clamps the page number and converts it to an offset.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return page, 0
	}
	return page, (page - 1) * limit
}

// pageLinks builds next/previous URLs for a listing. Empty strings mean no
// page in that direction.
func (s *bucketService) pageLinks(path string, page, limit, total int) (next, previous string) {
	if limit <= 0 {
		return "", ""
	}
	if page*limit < total {
		next = fmt.Sprintf("%s%s?page=%d&limit=%d", s.baseURL, path, page+1, limit)
	}
	if page > 1 {
		previous = fmt.Sprintf("%s%s?page=%d&limit=%d", s.baseURL, path, page-1, limit)
	}
	return next, previous
}

// serviceErr passes AppErrors through untouched and wraps anything else as
// internal.
func serviceErr(op string, err error) error {
	if _, ok := err.(*apperror.AppError); ok {
		return err
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", op, err))
}
