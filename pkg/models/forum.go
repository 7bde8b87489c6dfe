package models

// ForumThread is a discussion thread as returned by /api/forums/threads.
type ForumThread struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content,omitempty"`
	Category     string      `json:"category,omitempty"`
	Author       *User       `json:"author,omitempty"`
	Pinned       bool        `json:"pinned"`
	Locked       bool        `json:"locked"`
	Posts        []ForumPost `json:"posts,omitempty"`
	PostCount    int         `json:"postCount"`
	LastActivity string      `json:"lastActivity,omitempty"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
}

// ForumPost is a single reply inside a thread.
type ForumPost struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Author    *User  `json:"author,omitempty"`
	ThreadID  int64  `json:"threadId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// CreateThreadRequest is the body of POST /api/forums/threads.
type CreateThreadRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content,omitempty" validate:"max=10000"`
}

// CreatePostRequest is the body of POST /api/forums/threads/{id}/posts.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// PageResponse is the Spring Data page envelope used by list endpoints.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}
