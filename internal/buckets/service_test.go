package buckets

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andela/bucketlist/internal/apperror"
)

// --- Mock Repository ---

// mockRepo implements Repository for testing.
type mockRepo struct {
	createBucketFn     func(ctx context.Context, b *Bucket) (int64, error)
	findBucketFn       func(ctx context.Context, bucketID, userID int64) (*Bucket, error)
	listBucketsFn      func(ctx context.Context, userID int64, offset, limit int) ([]Bucket, int, error)
	updateBucketFn     func(ctx context.Context, b *Bucket) error
	deleteBucketFn     func(ctx context.Context, bucketID, userID int64) error
	bucketNameExistsFn func(ctx context.Context, userID int64, name string, excludeID int64) (bool, error)
	ensureCategoryFn   func(ctx context.Context, name string) (Category, bool, error)
	createActivityFn   func(ctx context.Context, a *Activity) (int64, error)
	findActivityFn     func(ctx context.Context, bucketID, activityID, userID int64) (*Activity, error)
	listActivitiesFn   func(ctx context.Context, bucketID, userID int64, offset, limit int) ([]Activity, int, error)
	updateActivityFn   func(ctx context.Context, a *Activity) error
	deleteActivityFn   func(ctx context.Context, bucketID, activityID, userID int64) error
	activityExistsFn   func(ctx context.Context, bucketID, userID int64, description string, excludeID int64) (bool, error)
	searchBucketsFn    func(ctx context.Context, userID int64, query string) ([]Bucket, error)
	searchActivitiesFn func(ctx context.Context, userID int64, query string) ([]Activity, error)
}

func (m *mockRepo) CreateBucket(ctx context.Context, b *Bucket) (int64, error) {
	if m.createBucketFn != nil {
		return m.createBucketFn(ctx, b)
	}
	return 1, nil
}

func (m *mockRepo) FindBucket(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
	if m.findBucketFn != nil {
		return m.findBucketFn(ctx, bucketID, userID)
	}
	return nil, apperror.NewNotFound("Bucket not found!")
}

func (m *mockRepo) ListBuckets(ctx context.Context, userID int64, offset, limit int) ([]Bucket, int, error) {
	if m.listBucketsFn != nil {
		return m.listBucketsFn(ctx, userID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockRepo) UpdateBucket(ctx context.Context, b *Bucket) error {
	if m.updateBucketFn != nil {
		return m.updateBucketFn(ctx, b)
	}
	return nil
}

func (m *mockRepo) DeleteBucket(ctx context.Context, bucketID, userID int64) error {
	if m.deleteBucketFn != nil {
		return m.deleteBucketFn(ctx, bucketID, userID)
	}
	return nil
}

func (m *mockRepo) BucketNameExists(ctx context.Context, userID int64, name string, excludeID int64) (bool, error) {
	if m.bucketNameExistsFn != nil {
		return m.bucketNameExistsFn(ctx, userID, name, excludeID)
	}
	return false, nil
}

func (m *mockRepo) EnsureCategory(ctx context.Context, name string) (Category, bool, error) {
	if m.ensureCategoryFn != nil {
		return m.ensureCategoryFn(ctx, name)
	}
	return Category{ID: 1, Name: name}, false, nil
}

func (m *mockRepo) CreateActivity(ctx context.Context, a *Activity) (int64, error) {
	if m.createActivityFn != nil {
		return m.createActivityFn(ctx, a)
	}
	return 1, nil
}

func (m *mockRepo) FindActivity(ctx context.Context, bucketID, activityID, userID int64) (*Activity, error) {
	if m.findActivityFn != nil {
		return m.findActivityFn(ctx, bucketID, activityID, userID)
	}
	return nil, apperror.NewNotFound("Activity not found!")
}

func (m *mockRepo) ListActivities(ctx context.Context, bucketID, userID int64, offset, limit int) ([]Activity, int, error) {
	if m.listActivitiesFn != nil {
		return m.listActivitiesFn(ctx, bucketID, userID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockRepo) UpdateActivity(ctx context.Context, a *Activity) error {
	if m.updateActivityFn != nil {
		return m.updateActivityFn(ctx, a)
	}
	return nil
}

func (m *mockRepo) DeleteActivity(ctx context.Context, bucketID, activityID, userID int64) error {
	if m.deleteActivityFn != nil {
		return m.deleteActivityFn(ctx, bucketID, activityID, userID)
	}
	return nil
}

func (m *mockRepo) ActivityExists(ctx context.Context, bucketID, userID int64, description string, excludeID int64) (bool, error) {
	if m.activityExistsFn != nil {
		return m.activityExistsFn(ctx, bucketID, userID, description, excludeID)
	}
	return false, nil
}

func (m *mockRepo) SearchBuckets(ctx context.Context, userID int64, query string) ([]Bucket, error) {
	if m.searchBucketsFn != nil {
		return m.searchBucketsFn(ctx, userID, query)
	}
	return nil, nil
}

func (m *mockRepo) SearchActivities(ctx context.Context, userID int64, query string) ([]Activity, error) {
	if m.searchActivitiesFn != nil {
		return m.searchActivitiesFn(ctx, userID, query)
	}
	return nil, nil
}

// --- Test Helpers ---

func newTestService(repo *mockRepo) BucketService {
	return NewBucketService(repo, "http://localhost:8080")
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- CreateBucket Tests ---

func TestCreateBucket_Success(t *testing.T) {
	repo := &mockRepo{
		createBucketFn: func(ctx context.Context, b *Bucket) (int64, error) {
			if b.UserID != 7 {
				t.Errorf("expected owner id 7, got %d", b.UserID)
			}
			if b.Name != "Travel" {
				t.Errorf("expected name Travel, got %s", b.Name)
			}
			return 3, nil
		},
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			return &Bucket{ID: bucketID, Name: "Travel", UserID: userID, Category: "General"}, nil
		},
	}

	svc := newTestService(repo)
	bucket, err := svc.CreateBucket(context.Background(), 7, BucketRequest{
		Name:        "Travel",
		Description: "Places to see",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket.ID != 3 {
		t.Errorf("expected bucket id 3, got %d", bucket.ID)
	}
}

func TestCreateBucket_Validation(t *testing.T) {
	svc := newTestService(&mockRepo{})

	tests := []struct {
		name string
		req  BucketRequest
	}{
		{"missing name", BucketRequest{Description: "desc"}},
		{"missing description", BucketRequest{Name: "Travel"}},
		{"whitespace name", BucketRequest{Name: "   ", Description: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBucket(context.Background(), 7, tt.req)
			assertAppError(t, err, 400)
		})
	}
}

func TestCreateBucket_StripsMarkup(t *testing.T) {
	var stored string
	repo := &mockRepo{
		createBucketFn: func(ctx context.Context, b *Bucket) (int64, error) {
			stored = b.Name
			return 1, nil
		},
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			return &Bucket{ID: bucketID}, nil
		},
	}

	svc := newTestService(repo)
	_, err := svc.CreateBucket(context.Background(), 7, BucketRequest{
		Name:        "<script>alert(1)</script>Travel",
		Description: "Places to see",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stored, "<script>") {
		t.Errorf("expected markup stripped, stored %q", stored)
	}
}

func TestCreateBucket_DuplicateName(t *testing.T) {
	repo := &mockRepo{
		bucketNameExistsFn: func(ctx context.Context, userID int64, name string, excludeID int64) (bool, error) {
			return true, nil
		},
	}

	svc := newTestService(repo)
	_, err := svc.CreateBucket(context.Background(), 7, BucketRequest{
		Name:        "Travel",
		Description: "Places to see",
	})
	assertAppError(t, err, 409)
}

func TestCreateBucket_DefaultCategory(t *testing.T) {
	var requestedCategory string
	repo := &mockRepo{
		ensureCategoryFn: func(ctx context.Context, name string) (Category, bool, error) {
			requestedCategory = name
			return Category{ID: 1, Name: name}, false, nil
		},
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			return &Bucket{ID: bucketID}, nil
		},
	}

	svc := newTestService(repo)
	_, err := svc.CreateBucket(context.Background(), 7, BucketRequest{
		Name:        "Travel",
		Description: "Places to see",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestedCategory != DefaultCategory {
		t.Errorf("expected default category %q, got %q", DefaultCategory, requestedCategory)
	}
}

func TestCreateBucket_NewCategoryCreated(t *testing.T) {
	repo := &mockRepo{
		ensureCategoryFn: func(ctx context.Context, name string) (Category, bool, error) {
			return Category{ID: 5, Name: name}, true, nil
		},
		createBucketFn: func(ctx context.Context, b *Bucket) (int64, error) {
			if b.CategoryID != 5 {
				t.Errorf("expected category id 5, got %d", b.CategoryID)
			}
			return 1, nil
		},
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			return &Bucket{ID: bucketID, Category: "Adventure"}, nil
		},
	}

	svc := newTestService(repo)
	bucket, err := svc.CreateBucket(context.Background(), 7, BucketRequest{
		Name:        "Travel",
		Category:    "Adventure",
		Description: "Places to see",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket.Category != "Adventure" {
		t.Errorf("expected category Adventure, got %s", bucket.Category)
	}
}

// --- Ownership Tests ---

func TestGetBucket_NotOwned(t *testing.T) {
	repo := &mockRepo{
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			// Scoped query: a bucket owned by someone else is simply absent.
			return nil, apperror.NewNotFound("Bucket not found!")
		},
	}

	svc := newTestService(repo)
	_, err := svc.GetBucket(context.Background(), 99, 3)
	assertAppError(t, err, 404)
}

func TestUpdateBucket_NotOwned(t *testing.T) {
	repo := &mockRepo{
		updateBucketFn: func(ctx context.Context, b *Bucket) error {
			return apperror.NewNotFound("Bucket not found!")
		},
	}

	svc := newTestService(repo)
	_, err := svc.UpdateBucket(context.Background(), 99, 3, BucketRequest{
		Name:        "Hijacked",
		Description: "nope",
	})
	assertAppError(t, err, 404)
}

func TestDeleteBucket_Idempotent(t *testing.T) {
	deleted := map[int64]bool{}
	repo := &mockRepo{
		deleteBucketFn: func(ctx context.Context, bucketID, userID int64) error {
			if deleted[bucketID] {
				return apperror.NewNotFound("Bucket not found!")
			}
			deleted[bucketID] = true
			return nil
		},
	}

	svc := newTestService(repo)
	ctx := context.Background()

	remaining, err := svc.DeleteBucket(ctx, 7, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining == nil {
		t.Error("expected empty slice, not nil")
	}

	// Second delete of the same id: clean NotFound.
	_, err = svc.DeleteBucket(ctx, 7, 3)
	assertAppError(t, err, 404)
}

// --- Pagination Tests ---

func TestListBuckets_PageLinks(t *testing.T) {
	buckets := make([]Bucket, 5)
	repo := &mockRepo{
		listBucketsFn: func(ctx context.Context, userID int64, offset, limit int) ([]Bucket, int, error) {
			return buckets[:limit], len(buckets), nil
		},
	}
	svc := newTestService(repo)

	// First of three pages: next only.
	page, err := svc.ListBuckets(context.Background(), 7, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextPage != "http://localhost:8080/api/v1/bucketlists?page=2&limit=2" {
		t.Errorf("unexpected next link: %q", page.NextPage)
	}
	if page.PreviousPage != "" {
		t.Errorf("expected no previous link on page 1, got %q", page.PreviousPage)
	}

	// Middle page: both links.
	page, err = svc.ListBuckets(context.Background(), 7, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextPage == "" || page.PreviousPage == "" {
		t.Errorf("expected both links on a middle page, got next=%q previous=%q", page.NextPage, page.PreviousPage)
	}

	// Last page: previous only.
	page, err = svc.ListBuckets(context.Background(), 7, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextPage != "" {
		t.Errorf("expected no next link on the last page, got %q", page.NextPage)
	}
	if page.PreviousPage != "http://localhost:8080/api/v1/bucketlists?page=2&limit=2" {
		t.Errorf("unexpected previous link: %q", page.PreviousPage)
	}
}

func TestListBuckets_NoLimitNoLinks(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &mockRepo{
		listBucketsFn: func(ctx context.Context, userID int64, offset, limit int) ([]Bucket, int, error) {
			gotOffset, gotLimit = offset, limit
			return []Bucket{{ID: 1}, {ID: 2}}, 2, nil
		},
	}
	svc := newTestService(repo)

	page, err := svc.ListBuckets(context.Background(), 7, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOffset != 0 || gotLimit != 0 {
		t.Errorf("expected unpaginated query, got offset=%d limit=%d", gotOffset, gotLimit)
	}
	if page.NextPage != "" || page.PreviousPage != "" {
		t.Error("expected no links without a limit")
	}
}

func TestListBuckets_EmptyIsSlice(t *testing.T) {
	svc := newTestService(&mockRepo{})

	page, err := svc.ListBuckets(context.Background(), 7, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Buckets == nil {
		t.Error("expected empty slice, not nil")
	}
}

// --- Activity Tests ---

func TestCreateActivity_Success(t *testing.T) {
	repo := &mockRepo{
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			return &Bucket{ID: bucketID, UserID: userID}, nil
		},
		createActivityFn: func(ctx context.Context, a *Activity) (int64, error) {
			if a.BucketID != 3 || a.UserID != 7 {
				t.Errorf("expected bucket 3, user 7; got bucket %d user %d", a.BucketID, a.UserID)
			}
			return 11, nil
		},
		findActivityFn: func(ctx context.Context, bucketID, activityID, userID int64) (*Activity, error) {
			return &Activity{ID: activityID, BucketID: bucketID, Description: "Climb Kilimanjaro"}, nil
		},
	}

	svc := newTestService(repo)
	activity, err := svc.CreateActivity(context.Background(), 7, 3, ActivityRequest{
		Description: "Climb Kilimanjaro",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if activity.ID != 11 {
		t.Errorf("expected activity id 11, got %d", activity.ID)
	}
}

func TestCreateActivity_BucketNotOwned(t *testing.T) {
	var created bool
	repo := &mockRepo{
		createActivityFn: func(ctx context.Context, a *Activity) (int64, error) {
			created = true
			return 1, nil
		},
	}

	svc := newTestService(repo)
	_, err := svc.CreateActivity(context.Background(), 99, 3, ActivityRequest{
		Description: "Climb Kilimanjaro",
	})
	assertAppError(t, err, 404)
	if created {
		t.Error("must not create an activity in someone else's bucket")
	}
}

func TestCreateActivity_Duplicate(t *testing.T) {
	repo := &mockRepo{
		findBucketFn: func(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
			return &Bucket{ID: bucketID, UserID: userID}, nil
		},
		activityExistsFn: func(ctx context.Context, bucketID, userID int64, description string, excludeID int64) (bool, error) {
			return true, nil
		},
	}

	svc := newTestService(repo)
	_, err := svc.CreateActivity(context.Background(), 7, 3, ActivityRequest{
		Description: "Climb Kilimanjaro",
	})
	assertAppError(t, err, 409)
}

func TestCreateActivity_MissingDescription(t *testing.T) {
	svc := newTestService(&mockRepo{})

	_, err := svc.CreateActivity(context.Background(), 7, 3, ActivityRequest{})
	assertAppError(t, err, 400)
}

func TestDeleteActivity_ReturnsRemaining(t *testing.T) {
	repo := &mockRepo{
		listActivitiesFn: func(ctx context.Context, bucketID, userID int64, offset, limit int) ([]Activity, int, error) {
			return []Activity{{ID: 12, BucketID: bucketID}}, 1, nil
		},
	}

	svc := newTestService(repo)
	remaining, err := svc.DeleteActivity(context.Background(), 7, 3, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != 12 {
		t.Errorf("expected the surviving activity, got %+v", remaining)
	}
}

func TestUpdateActivity_NotOwned(t *testing.T) {
	repo := &mockRepo{
		updateActivityFn: func(ctx context.Context, a *Activity) error {
			return apperror.NewNotFound("Activity not found!")
		},
	}

	svc := newTestService(repo)
	_, err := svc.UpdateActivity(context.Background(), 99, 3, 11, ActivityRequest{
		Description: "Hijacked",
	})
	assertAppError(t, err, 404)
}
