package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFeedPostAndLikes(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	author := seedStudent(users, "sam", nil, false)
	fan := seedStudent(users, "fan", nil, false)
	svc := NewFeedService(posts, users)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, author.ID, " new PR on squat ", "")
	require.NoError(t, err)
	assert.Equal(t, "sam", post.AuthorName)
	assert.Equal(t, "new PR on squat", post.Content)

	liked, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{fan.ID}, liked.Likes)

	unliked, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.Likes)

	_, err = svc.CreatePost(ctx, author.ID, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.ToggleLike(ctx, fan.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestFeedPaging(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	author := seedStudent(users, "sam", nil, false)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := posts.Create(context.Background(), &domain.Post{
			AuthorID:  author.ID,
			Content:   "p",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	svc := NewFeedService(posts, users).(*feedService)
	svc.now = fixedClock(base.Add(time.Hour))

	page, err := svc.List(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, base.Add(4*time.Minute), page[0].CreatedAt)

	cursor := page[1].CreatedAt
	page, err = svc.List(context.Background(), &cursor, 10)
	require.NoError(t, err)
	assert.Len(t, page, 3)
}

func TestDeletePostPermissions(t *testing.T) {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	author := seedStudent(users, "sam", nil, false)
	other := seedStudent(users, "eve", nil, false)
	admin := users.add(domain.User{Name: "Ada", Email: "ada@example.com", Level: domain.LevelAdmin})
	svc := NewFeedService(posts, users)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, author.ID, "one", "")
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, author.ID, "", "https://cdn.example.com/a.jpg")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeletePost(ctx, other.ID, first.ID), ErrPostAccessDenied)
	assert.NoError(t, svc.DeletePost(ctx, author.ID, first.ID))
	assert.NoError(t, svc.DeletePost(ctx, admin.ID, second.ID))
	assert.ErrorIs(t, svc.DeletePost(ctx, author.ID, first.ID), ErrPostNotFound)
}
