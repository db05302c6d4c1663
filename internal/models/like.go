package models

import "time"

// Like is a single like left on a post by a visitor. Likes are immutable.
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	UserIP    string    `json:"userIp" gorm:"not null;index:idx_likes_slug_ip,priority:2" bson:"user_ip"`
	PostSlug  string    `json:"postSlug" gorm:"not null;size:255;index:idx_likes_slug_ip,priority:1" bson:"post_slug"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostSlug;references:Slug" bson:"-"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// CreateLikeRequest defines the request body for liking a post.
// IP is optional; the handler falls back to the caller's address.
type CreateLikeRequest struct {
	Slug string `json:"slug" validate:"required,max=255"`
	IP   string `json:"ip" validate:"omitempty,ip"`
}

// LikesQuery defines the query parameters for reading like counts
type LikesQuery struct {
	Slug string `query:"slug" validate:"required,max=255"`
	IP   string `query:"ip" validate:"omitempty,ip"`
}

// LikeResponse wraps a created like
type LikeResponse struct {
	Like *Like `json:"like"`
}

// LikesResponse carries the derived like counts for a post
type LikesResponse struct {
	Likes   int64 `json:"likes"`
	MyLikes int64 `json:"myLikes"`
}
