package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type postFixture struct {
	svc   PostService
	users repository.UserRepository
	posts repository.PostRepository
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	repo := repository.NewMemoryRepository()
	return &postFixture{
		svc:   NewPostService(repo.Post, repo.User, nil),
		users: repo.User,
		posts: repo.Post,
	}
}

func (f *postFixture) addUser(t *testing.T, name string) string {
	t.Helper()
	user := &models.User{Email: name + "@example.com", Name: name, Avatar: "avatars/" + name}
	require.NoError(t, f.users.CreateUser(context.Background(), user, "pw"))
	return user.UserID
}

func TestPostService_CreatePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	post, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)
	assert.Equal(t, alice, post.AuthorID)
	assert.Equal(t, "alice", post.Name)
	assert.Equal(t, "avatars/alice", post.Avatar)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)

	_, err = f.svc.CreatePost(ctx, alice, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = f.svc.CreatePost(ctx, uuid.New().String(), "hello")
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestPostService_CreatePostResolvesAvatar(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewPostService(repo.Post, repo.User, stubAvatars{})
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", Name: "A", Avatar: "avatars/a.png"}
	require.NoError(t, repo.User.CreateUser(ctx, user, "pw"))

	post, err := svc.CreatePost(ctx, user.UserID, "hi")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", post.Avatar)

	comments, err := svc.AddComment(ctx, user.UserID, post.PostID, "me too")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", comments[0].Avatar)

	// Resolved URLs can expire, so the stored record keeps the reference.
	stored, err := repo.Post.GetByID(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/a.png", stored.Avatar)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, "avatars/a.png", stored.Comments[0].Avatar)

	got, err := svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", got.Avatar)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", got.Comments[0].Avatar)

	posts, err := svc.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", posts[0].Avatar)
}

func TestPostService_GetPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	created, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, created.PostID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	_, err = f.svc.GetPost(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetPost(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestPostService_GetPostsNewestFirst(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.svc.(*postService).now = func() time.Time { return base }
	first, err := f.svc.CreatePost(ctx, alice, "first")
	require.NoError(t, err)

	f.svc.(*postService).now = func() time.Time { return base.Add(time.Minute) }
	second, err := f.svc.CreatePost(ctx, alice, "second")
	require.NoError(t, err)

	posts, err := f.svc.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.PostID, posts[0].PostID)
	assert.Equal(t, first.PostID, posts[1].PostID)
}

func TestPostService_DeletePost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)

	err = f.svc.DeletePost(ctx, bob, post.PostID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err, "post must survive a rejected delete")

	require.NoError(t, f.svc.DeletePost(ctx, alice, post.PostID))

	_, err = f.svc.GetPost(ctx, post.PostID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.DeletePost(ctx, alice, post.PostID), ErrNotFound)
	assert.ErrorIs(t, f.svc.DeletePost(ctx, alice, "bad"), ErrInvalidID)
}

func TestPostService_LikeUnlike(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)

	likes, err := f.svc.LikePost(ctx, bob, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, models.Likes{{UserID: bob}}, likes)

	likes, err = f.svc.LikePost(ctx, alice, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, models.Likes{{UserID: alice}, {UserID: bob}}, likes)

	_, err = f.svc.LikePost(ctx, bob, post.PostID)
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	stored, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, 2)

	likes, err = f.svc.UnlikePost(ctx, bob, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, models.Likes{{UserID: alice}}, likes)

	before, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)

	_, err = f.svc.UnlikePost(ctx, bob, post.PostID)
	assert.ErrorIs(t, err, ErrNotLiked)

	after, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, before.Likes, after.Likes)

	_, err = f.svc.LikePost(ctx, bob, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostService_ConcurrentLikes(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	post, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)

	const users = 40
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.LikePost(ctx, fmt.Sprintf("user-%d", i), post.PostID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, users)
}

func TestPostService_ConcurrentSameUserLikes(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")

	post, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.LikePost(ctx, alice, post.PostID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrAlreadyLiked)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	stored, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Len(t, stored.Likes, 1)
}

func TestPostService_Comments(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	post, err := f.svc.CreatePost(ctx, alice, "hello")
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, bob, post.PostID, "")
	assert.ErrorIs(t, err, ErrEmptyText)

	comments, err := f.svc.AddComment(ctx, bob, post.PostID, "first")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Name)
	assert.Equal(t, post.PostID, comments[0].PostID)

	comments, err = f.svc.AddComment(ctx, alice, post.PostID, "second")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)

	bobComment := comments[1].CommentID
	aliceComment := comments[0].CommentID

	before, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)

	// The post author still cannot remove someone else's comment.
	_, err = f.svc.DeleteComment(ctx, alice, post.PostID, bobComment)
	assert.ErrorIs(t, err, ErrForbidden)

	after, err := f.svc.GetPost(ctx, post.PostID)
	require.NoError(t, err)
	assert.Equal(t, before.Comments, after.Comments)

	// Removal targets the comment id, not the requester's first comment.
	comments, err = f.svc.DeleteComment(ctx, bob, post.PostID, bobComment)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, aliceComment, comments[0].CommentID)

	_, err = f.svc.DeleteComment(ctx, bob, post.PostID, bobComment)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.DeleteComment(ctx, bob, post.PostID, "garbage")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AddComment(ctx, bob, uuid.New().String(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostService_StoreFailureIsWrapped(t *testing.T) {
	f := newPostFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.GetPosts(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
