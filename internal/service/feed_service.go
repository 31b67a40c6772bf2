package service

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/repository"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// FeedService is the shared social feed.
type FeedService interface {
	CreatePost(ctx context.Context, authorID primitive.ObjectID, content, imageURL string) (*domain.Post, error)
	// List pages backwards from before (now when nil).
	List(ctx context.Context, before *time.Time, limit int64) ([]domain.Post, error)
	ToggleLike(ctx context.Context, userID, postID primitive.ObjectID) (*domain.Post, error)
	DeletePost(ctx context.Context, callerID, postID primitive.ObjectID) error
}

type feedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewFeedService creates a new FeedService.
func NewFeedService(postRepo repository.PostRepository, userRepo repository.UserRepository) FeedService {
	return &feedService{postRepo: postRepo, userRepo: userRepo, now: time.Now}
}

func (s *feedService) CreatePost(ctx context.Context, authorID primitive.ObjectID, content, imageURL string) (*domain.Post, error) {
	content = strings.TrimSpace(content)
	imageURL = strings.TrimSpace(imageURL)
	if content == "" && imageURL == "" {
		return nil, fmt.Errorf("%w: a post needs text or an image", ErrValidation)
	}
	author, err := getUser(ctx, s.userRepo, authorID)
	if err != nil {
		return nil, err
	}
	post := &domain.Post{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Content:    content,
		ImageURL:   imageURL,
	}
	id, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id
	return post, nil
}

func (s *feedService) List(ctx context.Context, before *time.Time, limit int64) ([]domain.Post, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	cursor := s.now()
	if before != nil {
		cursor = *before
	}
	return s.postRepo.List(ctx, cursor, limit)
}

// ToggleLike likes the post, or removes the like if userID already liked it.
func (s *feedService) ToggleLike(ctx context.Context, userID, postID primitive.ObjectID) (*domain.Post, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	liked := !slices.Contains(post.Likes, userID)
	if err := s.postRepo.SetLike(ctx, postID, userID, liked); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if liked {
		post.Likes = append(post.Likes, userID)
	} else {
		post.Likes = slices.DeleteFunc(post.Likes, func(id primitive.ObjectID) bool { return id == userID })
	}
	return post, nil
}

func (s *feedService) DeletePost(ctx context.Context, callerID, postID primitive.ObjectID) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		caller, err := getUser(ctx, s.userRepo, callerID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() {
			return ErrPostAccessDenied
		}
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *feedService) getPost(ctx context.Context, postID primitive.ObjectID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}
