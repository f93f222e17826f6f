package seed

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBuiltInGroups(t *testing.T) {
	groups, err := BuiltInGroups()
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	for _, g := range groups {
		assert.NotEmpty(t, g.Title)
		assert.NotEmpty(t, g.Slug)
	}
}

func TestLoadGroups_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "::: nope",
		"missing slug":   "- title: Cats\n",
		"duplicate slug": "- {title: A, slug: a}\n- {title: B, slug: a}\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadGroups([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestGroups_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	first, err := Groups(ctx, db)
	require.NoError(t, err)
	_, err = Groups(ctx, db)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Group{}).Count(&n).Error)
	assert.Equal(t, int64(len(first)), n)
	for _, g := range first {
		assert.NotZero(t, g.ID)
	}
}

func TestSeeder_RunAndClear(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	s := NewSeeder(db, Options{SkipBcrypt: true, MaxDays: 30})

	sum, err := s.Run(ctx, Plan{Users: 5, Posts: 20, CommentsPerPost: 2, FollowsPerUser: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Users)
	assert.Equal(t, 20, sum.Posts)

	counts := func() map[string]int64 {
		out := map[string]int64{}
		for name, model := range map[string]any{
			"users": &models.User{}, "posts": &models.Post{}, "comments": &models.Comment{},
			"follows": &models.Follow{}, "groups": &models.Group{},
		} {
			var n int64
			require.NoError(t, db.Model(model).Count(&n).Error)
			out[name] = n
		}
		return out
	}

	got := counts()
	assert.Equal(t, int64(5), got["users"])
	assert.Equal(t, int64(20), got["posts"])
	assert.Equal(t, int64(sum.Comments), got["comments"])
	assert.Equal(t, int64(sum.Follows), got["follows"])
	assert.Equal(t, int64(sum.Groups), got["groups"])

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("user_id = author_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))

	require.NoError(t, s.ClearAll(ctx))
	for name, n := range counts() {
		assert.Zero(t, n, name)
	}
}

func TestFactory_BuildPostWithinWindow(t *testing.T) {
	f := NewFactory(testutil.NewSQLiteDB(t), Options{MaxDays: 3})
	now := time.Now()
	author := &models.User{ID: 1}
	groups := []models.Group{{ID: 4, Slug: "cats"}}

	for i := 0; i < 20; i++ {
		p := f.BuildPost(author, groups)
		assert.NotEmpty(t, p.Text)
		assert.Equal(t, uint(1), p.AuthorID)
		if p.GroupID != nil {
			assert.Equal(t, uint(4), *p.GroupID)
		}
		assert.False(t, p.PubDate.After(now))
		assert.True(t, p.PubDate.After(now.AddDate(0, 0, -4)))
	}
}
