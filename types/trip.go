package types

import "time"

// Trip is the persisted travel post entity. The owner email never changes
// after creation; Likes and Views are maintained atomically together with
// their ledgers (LikedBy, ViewedBy) by the store.
type Trip struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	OwnerEmail string     `bson:"owner_email" json:"ownerEmail"`
	Title      string     `bson:"title" json:"title"`
	Content    string     `bson:"content" json:"content"`
	Location   string     `bson:"location,omitempty" json:"location,omitempty"`
	Hashtag    string     `bson:"hashtag" json:"hashtag"`
	Images     []string   `bson:"images,omitempty" json:"images,omitempty"`
	StartedAt  time.Time  `bson:"started_at" json:"startedAt"`
	EndAt      time.Time  `bson:"end_at" json:"endAt"`
	Public     bool       `bson:"public" json:"public"`
	Hidden     bool       `bson:"hidden" json:"hidden"`
	Likes      int        `bson:"likes" json:"likes"`
	Views      int        `bson:"views" json:"views"`
	LikedBy    []string   `bson:"liked_by" json:"-"`
	ViewedBy   []string   `bson:"viewed_by" json:"-"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
	DeletedAt  *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
}

// IsOwnedBy reports whether the given identity owns the trip.
func (t *Trip) IsOwnedBy(email string) bool {
	return email != "" && t.OwnerEmail == email
}

// IsLikedBy reports membership in the like ledger.
func (t *Trip) IsLikedBy(email string) bool {
	for _, e := range t.LikedBy {
		if e == email {
			return true
		}
	}
	return false
}

// IsViewedBy reports membership in the viewer ledger.
func (t *Trip) IsViewedBy(email string) bool {
	for _, e := range t.ViewedBy {
		if e == email {
			return true
		}
	}
	return false
}

// TripCreate carries the fields accepted when creating a trip.
type TripCreate struct {
	Title     string     `json:"title" binding:"required"`
	Content   string     `json:"content" binding:"required"`
	Location  string     `json:"location"`
	Hashtag   string     `json:"hashtag" binding:"required"`
	StartedAt *time.Time `json:"startedAt" binding:"required"`
	EndAt     *time.Time `json:"endAt" binding:"required"`
	Public    *bool      `json:"public"`
	Images    []string   `json:"images"`
}

// TripUpdate carries the mutable fields of a trip. Nil date pointers keep the
// existing values.
type TripUpdate struct {
	Title     string     `json:"title" binding:"required"`
	Content   string     `json:"content" binding:"required"`
	Location  string     `json:"location"`
	Hashtag   string     `json:"hashtag" binding:"required"`
	StartedAt *time.Time `json:"startedAt"`
	EndAt     *time.Time `json:"endAt"`
	Public    *bool      `json:"public"`
	Images    []string   `json:"images"`
}

// TripResponse is the client-facing projection of a Trip. OwnerEmail is only
// populated for the owner-facing shape; the public shape elides it.
type TripResponse struct {
	ID         string     `json:"id"`
	OwnerEmail string     `json:"ownerEmail,omitempty"`
	Nickname   string     `json:"nickname"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Location   string     `json:"location,omitempty"`
	Hashtag    string     `json:"hashtag"`
	Images     []string   `json:"images,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	EndAt      time.Time  `json:"endAt"`
	Public     bool       `json:"public"`
	Hidden     bool       `json:"hidden"`
	Likes      int        `json:"likes"`
	Views      int        `json:"views"`
	IsLiked    bool       `json:"isLiked"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// TripListFilter selects which visibility scope a listing uses.
type TripListFilter struct {
	OwnerEmail string // restrict to one author; empty = all authors
	// IncludeHidden bypasses the public/hidden gate. Only the owner's own
	// listings and the admin listing set this.
	IncludeHidden bool
	Keyword       string // optional title/content/hashtag search
	Limit         int64
	Offset        int64
}
