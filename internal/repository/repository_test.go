package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListFilters(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	anna := testutil.CreateUser(t, db, "anna")
	cats := testutil.CreateGroup(t, db, "cats")
	dogs := testutil.CreateGroup(t, db, "dogs")

	catPost := testutil.CreatePost(t, db, leo, cats, "about cats")
	testutil.CreatePost(t, db, anna, nil, "no group")

	inCats, err := repo.List(ctx, PostQuery{GroupID: cats.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, inCats, 1)
	assert.Equal(t, catPost.ID, inCats[0].ID)
	assert.Equal(t, "cats", inCats[0].Group.Slug)
	assert.Equal(t, "leo", inCats[0].Author.Username)

	inDogs, err := repo.List(ctx, PostQuery{GroupID: dogs.ID}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, inDogs)

	byAnna, err := repo.Count(ctx, PostQuery{AuthorID: anna.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byAnna)
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	leo := testutil.CreateUser(t, db, "leo")

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	created := testutil.CreatePostsAt(t, db, leo, start, 13)

	page, err := repo.List(context.Background(), PostQuery{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, created[12].ID, page[0].ID)
	for i := 1; i < len(page); i++ {
		assert.False(t, page[i].PubDate.After(page[i-1].PubDate))
	}

	rest, err := repo.List(context.Background(), PostQuery{}, 10, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
	assert.Equal(t, created[0].ID, rest[2].ID)
}

func TestPostRepository_FollowingNoDuplicates(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	reader := testutil.CreateUser(t, db, "reader")
	leo := testutil.CreateUser(t, db, "leo")
	other := testutil.CreateUser(t, db, "other")
	testutil.CreatePost(t, db, leo, nil, "followed")
	testutil.CreatePost(t, db, other, nil, "not followed")

	testutil.CreateFollow(t, db, reader, leo)
	testutil.CreateFollow(t, db, reader, leo)

	posts, err := repo.List(ctx, PostQuery{FollowerID: reader.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "followed", posts[0].Text)

	none, err := repo.List(ctx, PostQuery{FollowerID: leo.ID}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_UpdateKeepsPubDate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	cats := testutil.CreateGroup(t, db, "cats")
	post := testutil.CreatePost(t, db, leo, cats, "original")

	before, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)

	edited := *before
	edited.Text = "edited"
	edited.GroupID = nil
	edited.PubDate = time.Now().Add(48 * time.Hour)
	require.NoError(t, repo.Update(ctx, &edited))

	after, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", after.Text)
	assert.Nil(t, after.GroupID)
	assert.True(t, before.PubDate.Equal(after.PubDate))
}

func TestCascadeRules(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	groups := NewGroupRepository(db)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	follows := NewFollowRepository(db)

	leo := testutil.CreateUser(t, db, "leo")
	anna := testutil.CreateUser(t, db, "anna")
	cats := testutil.CreateGroup(t, db, "cats")
	annaPost := testutil.CreatePost(t, db, anna, cats, "in cats")
	leoPost := testutil.CreatePost(t, db, leo, nil, "by leo")

	require.NoError(t, comments.Create(ctx, &models.Comment{PostID: annaPost.ID, AuthorID: leo.ID, Text: "hi"}))
	_, err := follows.Ensure(ctx, anna.ID, leo.ID)
	require.NoError(t, err)

	t.Run("deleting a group keeps its posts", func(t *testing.T) {
		require.NoError(t, groups.Delete(ctx, cats.ID))
		p, err := posts.GetByID(ctx, annaPost.ID)
		require.NoError(t, err)
		assert.Nil(t, p.GroupID)
	})

	t.Run("deleting a user cascades", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, leo.ID))

		_, err := posts.GetByID(ctx, leoPost.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))

		n, err := comments.CountByPost(ctx, annaPost.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		exists, err := follows.Exists(ctx, anna.ID, leo.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestFollowRepository_EnsureIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")

	created, err := repo.Ensure(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Ensure(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := repo.Count(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	removed, err := repo.Remove(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.Remove(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestGroupRepository_UpsertAndList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	g := &models.Group{Title: "Zebras", Slug: "zebras", Description: "stripes"}
	require.NoError(t, repo.Upsert(ctx, g))
	require.NotZero(t, g.ID)

	again := &models.Group{Title: "Zebras!", Slug: "zebras", Description: "more stripes"}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, g.ID, again.ID)

	require.NoError(t, repo.Upsert(ctx, &models.Group{Title: "Ants", Slug: "ants"}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ants", all[0].Title)
	assert.Equal(t, "Zebras!", all[1].Title)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	leo := testutil.CreateUser(t, db, "leo")
	post := testutil.CreatePost(t, db, leo, nil, "text")

	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "first"}))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: leo.ID, Text: "second"}))

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "leo", list[0].Author.Username)
}

func TestUserRepository_CreateDuplicateAndUpdatePassword(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	leo := testutil.CreateUser(t, db, "leo")

	err := repo.Create(ctx, &models.User{Username: "leo", Password: "x"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	require.NoError(t, repo.UpdatePassword(ctx, leo.ID, "new-hash"))
	got, err := repo.GetByID(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	err = repo.UpdatePassword(ctx, 9999, "hash")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
