package models

import "time"

// Post holds the counters of a single blog post or project page, keyed by its slug.
// Likes are never stored on the post; they are counted from the likes table.
type Post struct {
	Slug      string    `json:"slug" gorm:"primaryKey;size:255" bson:"_id"`
	Views     int64     `json:"views" gorm:"not null;default:0" bson:"views"`
	Likes     []Like    `json:"-" gorm:"foreignKey:PostSlug;references:Slug" bson:"-"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// PostStats is a post row joined with its derived like count
type PostStats struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
	Likes int64  `json:"likes"`
}

// RecordViewRequest defines the request body for counting a page view
type RecordViewRequest struct {
	Slug string `json:"slug" validate:"required,max=255"`
}

// ViewsQuery defines the query parameters for reading counters without a view
type ViewsQuery struct {
	Slug string `query:"slug" validate:"required,max=255"`
}

// ViewsResponse is returned by both views endpoints
type ViewsResponse struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}
