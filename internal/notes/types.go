package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a short public post: text content attributed to an author name,
// with a like counter.
type Note struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Author    string             `bson:"author" json:"author"`
	Likes     int64              `bson:"likes" json:"likes"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CreateNoteInput is the input for creating a note
type CreateNoteInput struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// ListQuery represents list parameters. Page and Limit are 1-based and
// already validated by the time they reach the store.
type ListQuery struct {
	Page   int
	Limit  int
	Author string
}

// PageInfo is the pagination metadata returned alongside every list.
type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalNotes  int64 `json:"totalNotes"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	Limit       int   `json:"limit"`
}

// Envelope is the uniform response wrapper every endpoint produces.
// Data is a single note or a note slice; list responses always carry a
// slice, empty rather than null.
type Envelope struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Data       any       `json:"data,omitempty"`
	Pagination *PageInfo `json:"pagination,omitempty"`
	RetryAfter int       `json:"retryAfter,omitempty"`
}
