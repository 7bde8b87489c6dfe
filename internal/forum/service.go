package forum

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gopkg.in/go-playground/validator.v9"

	"mdb/internal/api"
	"mdb/pkg/logging"
	"mdb/pkg/models"
)

const (
	// DefaultTimeout bounds each forum call.
	DefaultTimeout = 15 * time.Second

	// DefaultPageSize is used when the requested size is out of range.
	DefaultPageSize = 20

	// MaxPageSize is the largest page the backend serves.
	MaxPageSize = 100

	basePath = "/api/forums/threads"
)

const (
	messageLoadThreads  = "Could not load forum threads. Please try again later."
	messageLoadThread   = "Could not load thread. Please try again later."
	messageLoadPosts    = "Could not load thread posts. Please try again later."
	messageCreateThread = "Could not create thread. Please try again later."
	messageCreatePost   = "Could not create post. Please try again later."
)

var validate = validator.New()

// ThreadQuery selects a page of threads.
type ThreadQuery struct {
	Page     int
	Size     int
	Category string
}

// Service talks to the forum endpoints.
type Service struct {
	client *api.Client
}

// NewService creates a forum service. The client must have the session as
// header source and invalidator for writes to work.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// GetThreads lists threads. A negative page becomes 0, a size outside
// 1..100 becomes 20 and a blank category is omitted.
func (s *Service) GetThreads(ctx context.Context, q ThreadQuery) (*models.PageResponse[models.ForumThread], error) {
	query := pageQuery(q.Page, q.Size)
	if category := strings.TrimSpace(q.Category); category != "" {
		query.Set("category", category)
	}

	var page models.PageResponse[models.ForumThread]
	if err := s.client.Get(ctx, basePath, query, &page, api.Options{}); err != nil {
		logging.Error("Forum", err, "Error fetching forum threads")
		return nil, newActionError(messageLoadThreads, err)
	}
	return &page, nil
}

// GetThread fetches one thread.
func (s *Service) GetThread(ctx context.Context, threadID int64) (*models.ForumThread, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}

	var thread models.ForumThread
	if err := s.client.Get(ctx, threadPath(threadID), nil, &thread, api.Options{}); err != nil {
		logging.Error("Forum", err, "Error fetching thread %d", threadID)
		return nil, newActionError(messageLoadThread, err)
	}
	return &thread, nil
}

// GetThreadPosts lists the posts of a thread with the same paging rules as
// GetThreads.
func (s *Service) GetThreadPosts(ctx context.Context, threadID int64, page, size int) (*models.PageResponse[models.ForumPost], error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}

	var posts models.PageResponse[models.ForumPost]
	if err := s.client.Get(ctx, threadPath(threadID)+"/posts", pageQuery(page, size), &posts, api.Options{}); err != nil {
		logging.Error("Forum", err, "Error fetching posts for thread %d", threadID)
		return nil, newActionError(messageLoadPosts, err)
	}
	return &posts, nil
}

// CreateThread opens a thread. Title and content are trimmed; an empty
// content is left out of the request.
func (s *Service) CreateThread(ctx context.Context, req models.CreateThreadRequest) (*models.ForumThread, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var thread models.ForumThread
	if err := s.client.Post(ctx, basePath, req, &thread, api.Options{Authorized: true}); err != nil {
		logging.Error("Forum", err, "Error creating forum thread")
		return nil, newActionError(messageCreateThread, err)
	}

	logging.Info("Forum", "Created thread %d", thread.ID)
	return &thread, nil
}

// CreatePost replies to a thread. Content is trimmed and required.
func (s *Service) CreatePost(ctx context.Context, threadID int64, req models.CreatePostRequest) (*models.ForumPost, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var post models.ForumPost
	if err := s.client.Post(ctx, threadPath(threadID)+"/posts", req, &post, api.Options{Authorized: true}); err != nil {
		logging.Error("Forum", err, "Error creating post in thread %d", threadID)
		return nil, newActionError(messageCreatePost, err)
	}

	logging.Info("Forum", "Created post %d in thread %d", post.ID, threadID)
	return &post, nil
}

// NormalizePage applies the paging rules of the list endpoints.
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

func pageQuery(page, size int) url.Values {
	page, size = NormalizePage(page, size)
	return url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
}

func threadPath(threadID int64) string {
	return basePath + "/" + strconv.FormatInt(threadID, 10)
}

func validateThreadID(threadID int64) error {
	if threadID <= 0 {
		return &ValidationError{Field: "threadId", Message: "Invalid thread ID"}
	}
	return nil
}

// validateRequest runs the struct tags of a request and turns the first
// failure into a ValidationError.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: fieldMessage(req, fe)}
}

func fieldMessage(req interface{}, fe validator.FieldError) string {
	subject := fe.Field()
	switch req.(type) {
	case models.CreateThreadRequest:
		if fe.Field() == "Title" {
			subject = "Thread title"
		} else {
			subject = "Thread content"
		}
	case models.CreatePostRequest:
		subject = "Post content"
	}

	switch fe.Tag() {
	case "required":
		return subject + " is required"
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", subject, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", subject)
	}
}
