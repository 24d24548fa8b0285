// Package buckets implements the owned resources of the service: buckets
// and the activities inside them, plus the shared category catalog.
//
// Every read and mutation is scoped by (resource id, owner id) jointly; a
// resource id alone is never a sufficient key. An ownership mismatch is
// indistinguishable from absence -- both are "not found".
package buckets

import "time"

// Bucket is a named collection of activities owned by exactly one user.
type Bucket struct {
	ID          int64     `json:"id"`
	Name        string    `json:"bucket_name"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"-"`
	Category    string    `json:"category"`
	UserID      int64     `json:"-"`
	UserEmail   string    `json:"user"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// Activity is a single item inside a bucket. It carries both the bucket id
// and the owner id; the pair is checked together on every access.
type Activity struct {
	ID          int64     `json:"activity_id"`
	Description string    `json:"description"`
	BucketID    int64     `json:"bucket_id"`
	UserID      int64     `json:"-"`
	UserEmail   string    `json:"user"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// Category labels buckets. Categories are global, not per-user, and are
// created on demand when a bucket first references them.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"category_name"`
}

// DefaultCategory is assigned when a bucket is created without one.
const DefaultCategory = "General"

// --- Request DTOs ---

// BucketRequest holds the data submitted when creating or updating a bucket.
type BucketRequest struct {
	Name        string `json:"bucket_name" form:"bucket_name"`
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
}

// ActivityRequest holds the data submitted when creating or updating an
// activity.
type ActivityRequest struct {
	Description string `json:"description" form:"description"`
}

// --- List results ---

// BucketPage is a paginated bucket listing. NextPage/PreviousPage are empty
// when there is no further page in that direction.
type BucketPage struct {
	Buckets      []Bucket `json:"buckets"`
	NextPage     string   `json:"next_page,omitempty"`
	PreviousPage string   `json:"previous_page,omitempty"`
}

// ActivityPage is a paginated activity listing.
type ActivityPage struct {
	Activities   []Activity `json:"activities"`
	NextPage     string     `json:"next_page,omitempty"`
	PreviousPage string     `json:"previous_page,omitempty"`
}
