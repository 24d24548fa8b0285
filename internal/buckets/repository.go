package buckets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/andela/bucketlist/internal/apperror"
)

// mysqlDupEntry is the MariaDB error number for a unique key violation.
const mysqlDupEntry = 1062

// Repository defines the data access contract for buckets, activities, and
// categories. Every bucket/activity operation takes the owner's user id and
// scopes the SQL by it; mutations are single statements keyed on
// (id, user_id) with RowsAffected checks, so the ownership re-check and the
// write happen atomically in one row operation.
type Repository interface {
	// Buckets.
	CreateBucket(ctx context.Context, b *Bucket) (int64, error)
	FindBucket(ctx context.Context, bucketID, userID int64) (*Bucket, error)
	ListBuckets(ctx context.Context, userID int64, offset, limit int) ([]Bucket, int, error)
	UpdateBucket(ctx context.Context, b *Bucket) error
	DeleteBucket(ctx context.Context, bucketID, userID int64) error
	BucketNameExists(ctx context.Context, userID int64, name string, excludeID int64) (bool, error)

	// Categories. EnsureCategory reports whether it created the row, so
	// callers see Found vs Created explicitly.
	EnsureCategory(ctx context.Context, name string) (Category, bool, error)

	// Activities.
	CreateActivity(ctx context.Context, a *Activity) (int64, error)
	FindActivity(ctx context.Context, bucketID, activityID, userID int64) (*Activity, error)
	ListActivities(ctx context.Context, bucketID, userID int64, offset, limit int) ([]Activity, int, error)
	UpdateActivity(ctx context.Context, a *Activity) error
	DeleteActivity(ctx context.Context, bucketID, activityID, userID int64) error
	ActivityExists(ctx context.Context, bucketID, userID int64, description string, excludeID int64) (bool, error)

	// Search (owner-scoped, substring match).
	SearchBuckets(ctx context.Context, userID int64, query string) ([]Bucket, error)
	SearchActivities(ctx context.Context, userID int64, query string) ([]Activity, error)
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// bucketColumns is the select list shared by every bucket query: the row
// joined with its category name and owner email for serialization.
const bucketColumns = `b.id, b.bucket_name, b.description, b.category_id, c.category_name,
	       b.user_id, u.email, b.created, b.updated
	FROM buckets b
	JOIN categories c ON c.id = b.category_id
	JOIN users u ON u.id = b.user_id`

// CreateBucket inserts a new bucket row and returns the assigned id.
func (r *repository) CreateBucket(ctx context.Context, b *Bucket) (int64, error) {
	query := `INSERT INTO buckets (bucket_name, description, category_id, user_id, created, updated)
	          VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		b.Name, b.Description, b.CategoryID, b.UserID, b.Created, b.Updated)
	if err != nil {
		if isDupEntry(err) {
			return 0, apperror.NewConflict("You already have a bucket with that name")
		}
		return 0, fmt.Errorf("inserting bucket: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted bucket id: %w", err)
	}
	return id, nil
}

// FindBucket retrieves one bucket scoped by (bucket id, owner id).
// An ownership mismatch and a missing row both come back as NotFound.
func (r *repository) FindBucket(ctx context.Context, bucketID, userID int64) (*Bucket, error) {
	query := `SELECT ` + bucketColumns + ` WHERE b.id = ? AND b.user_id = ?`

	b := &Bucket{}
	err := r.db.QueryRowContext(ctx, query, bucketID, userID).Scan(
		&b.ID, &b.Name, &b.Description, &b.CategoryID, &b.Category,
		&b.UserID, &b.UserEmail, &b.Created, &b.Updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Bucket not found!")
	}
	if err != nil {
		return nil, fmt.Errorf("querying bucket: %w", err)
	}
	return b, nil
}

// ListBuckets returns the owner's buckets ordered by creation, plus the
// total count for pagination. limit <= 0 returns everything.
func (r *repository) ListBuckets(ctx context.Context, userID int64, offset, limit int) ([]Bucket, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM buckets WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting buckets: %w", err)
	}

	query := `SELECT ` + bucketColumns + ` WHERE b.user_id = ? ORDER BY b.created, b.id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing buckets: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.CategoryID, &b.Category,
			&b.UserID, &b.UserEmail, &b.Created, &b.Updated,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning bucket row: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, total, rows.Err()
}

// UpdateBucket rewrites a bucket's fields in a single statement keyed on
// (id, user_id). The ownership check cannot go stale between a prior read
// and this write: the WHERE clause re-checks it in the same row operation.
func (r *repository) UpdateBucket(ctx context.Context, b *Bucket) error {
	query := `UPDATE buckets SET bucket_name = ?, description = ?, category_id = ?, updated = ?
	          WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		b.Name, b.Description, b.CategoryID, b.Updated, b.ID, b.UserID)
	if err != nil {
		if isDupEntry(err) {
			return apperror.NewConflict("You already have a bucket with that name")
		}
		return fmt.Errorf("updating bucket: %w", err)
	}

	// RowsAffected is zero when the row does not exist OR belongs to someone
	// else; both must look identical to the caller.
	n, _ := result.RowsAffected()
	if n == 0 {
		if _, findErr := r.FindBucket(ctx, b.ID, b.UserID); findErr != nil {
			return findErr
		}
		// Row exists and is owned; the update was a no-op (same values).
		return nil
	}
	return nil
}

// DeleteBucket removes a bucket scoped by (id, user_id). Activities inside
// it go with it via ON DELETE CASCADE. Deleting an absent or foreign bucket
// is NotFound, also on repeat calls.
func (r *repository) DeleteBucket(ctx context.Context, bucketID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM buckets WHERE id = ? AND user_id = ?`, bucketID, userID)
	if err != nil {
		return fmt.Errorf("deleting bucket: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("Bucket not found!")
	}
	return nil
}

// BucketNameExists reports whether the owner already has a bucket with this
// name, excluding the given id (0 to exclude nothing). Used for a friendly
// conflict before the unique index fires.
func (r *repository) BucketNameExists(ctx context.Context, userID int64, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM buckets WHERE user_id = ? AND bucket_name = ? AND id != ?)`,
		userID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking bucket name: %w", err)
	}
	return exists, nil
}

// EnsureCategory looks a category up by name and creates it if absent.
// The second return value reports Created (true) vs Found (false). A race
// between the lookup and the insert resolves through the unique index on
// category_name: the loser re-reads the winner's row.
func (r *repository) EnsureCategory(ctx context.Context, name string) (Category, bool, error) {
	cat, err := r.findCategory(ctx, name)
	if err == nil {
		return cat, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Category{}, false, fmt.Errorf("querying category: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (category_name) VALUES (?)`, name)
	if err != nil {
		if isDupEntry(err) {
			// Lost the race; the row exists now.
			cat, err := r.findCategory(ctx, name)
			if err != nil {
				return Category{}, false, fmt.Errorf("re-reading category: %w", err)
			}
			return cat, false, nil
		}
		return Category{}, false, fmt.Errorf("inserting category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, false, fmt.Errorf("reading inserted category id: %w", err)
	}
	return Category{ID: id, Name: name}, true, nil
}

// findCategory reads a category row by name. Returns sql.ErrNoRows untouched
// so EnsureCategory can branch on it.
func (r *repository) findCategory(ctx context.Context, name string) (Category, error) {
	var cat Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, category_name FROM categories WHERE category_name = ?`, name).
		Scan(&cat.ID, &cat.Name)
	return cat, err
}

// activityColumns is the select list shared by every activity query.
const activityColumns = `a.id, a.description, a.bucket_id, a.user_id, u.email, a.created, a.updated
	FROM activities a
	JOIN users u ON u.id = a.user_id`

// CreateActivity inserts a new activity row and returns the assigned id.
func (r *repository) CreateActivity(ctx context.Context, a *Activity) (int64, error) {
	query := `INSERT INTO activities (description, bucket_id, user_id, created, updated)
	          VALUES (?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		a.Description, a.BucketID, a.UserID, a.Created, a.Updated)
	if err != nil {
		if isDupEntry(err) {
			return 0, apperror.NewConflict("That activity is already in this bucket")
		}
		return 0, fmt.Errorf("inserting activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted activity id: %w", err)
	}
	return id, nil
}

// FindActivity retrieves one activity scoped by (bucket id, activity id,
// owner id) together.
func (r *repository) FindActivity(ctx context.Context, bucketID, activityID, userID int64) (*Activity, error) {
	query := `SELECT ` + activityColumns + ` WHERE a.id = ? AND a.bucket_id = ? AND a.user_id = ?`

	a := &Activity{}
	err := r.db.QueryRowContext(ctx, query, activityID, bucketID, userID).Scan(
		&a.ID, &a.Description, &a.BucketID, &a.UserID, &a.UserEmail, &a.Created, &a.Updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("Activity not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return a, nil
}

// ListActivities returns a bucket's activities for the owner, plus the
// total count. limit <= 0 returns everything.
func (r *repository) ListActivities(ctx context.Context, bucketID, userID int64, offset, limit int) ([]Activity, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities WHERE bucket_id = ? AND user_id = ?`,
		bucketID, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting activities: %w", err)
	}

	query := `SELECT ` + activityColumns + ` WHERE a.bucket_id = ? AND a.user_id = ? ORDER BY a.created, a.id`
	args := []any{bucketID, userID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.Description, &a.BucketID, &a.UserID, &a.UserEmail, &a.Created, &a.Updated,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning activity row: %w", err)
		}
		activities = append(activities, a)
	}

	return activities, total, rows.Err()
}

// UpdateActivity rewrites an activity's description in a single statement
// keyed on (id, bucket_id, user_id).
func (r *repository) UpdateActivity(ctx context.Context, a *Activity) error {
	query := `UPDATE activities SET description = ?, updated = ?
	          WHERE id = ? AND bucket_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		a.Description, a.Updated, a.ID, a.BucketID, a.UserID)
	if err != nil {
		if isDupEntry(err) {
			return apperror.NewConflict("That activity is already in this bucket")
		}
		return fmt.Errorf("updating activity: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		if _, findErr := r.FindActivity(ctx, a.BucketID, a.ID, a.UserID); findErr != nil {
			return findErr
		}
		return nil
	}
	return nil
}

// DeleteActivity removes an activity scoped by (id, bucket_id, user_id).
func (r *repository) DeleteActivity(ctx context.Context, bucketID, activityID, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM activities WHERE id = ? AND bucket_id = ? AND user_id = ?`,
		activityID, bucketID, userID)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("Activity not found")
	}
	return nil
}

// ActivityExists reports whether the bucket already holds an activity with
// this description for the owner, excluding the given id.
func (r *repository) ActivityExists(ctx context.Context, bucketID, userID int64, description string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM activities WHERE bucket_id = ? AND user_id = ? AND description = ? AND id != ?)`,
		bucketID, userID, description, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking activity: %w", err)
	}
	return exists, nil
}

// SearchBuckets returns the owner's buckets whose name contains the query.
func (r *repository) SearchBuckets(ctx context.Context, userID int64, query string) ([]Bucket, error) {
	q := `SELECT ` + bucketColumns + ` WHERE b.user_id = ? AND b.bucket_name LIKE ? ORDER BY b.created, b.id`

	rows, err := r.db.QueryContext(ctx, q, userID, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("searching buckets: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.CategoryID, &b.Category,
			&b.UserID, &b.UserEmail, &b.Created, &b.Updated,
		); err != nil {
			return nil, fmt.Errorf("scanning bucket row: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// SearchActivities returns the owner's activities whose description
// contains the query.
func (r *repository) SearchActivities(ctx context.Context, userID int64, query string) ([]Activity, error) {
	q := `SELECT ` + activityColumns + ` WHERE a.user_id = ? AND a.description LIKE ? ORDER BY a.created, a.id`

	rows, err := r.db.QueryContext(ctx, q, userID, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("searching activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.Description, &a.BucketID, &a.UserID, &a.UserEmail, &a.Created, &a.Updated,
		); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// isDupEntry reports whether err is a MariaDB unique key violation.
func isDupEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry
}
