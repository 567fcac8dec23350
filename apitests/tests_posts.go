package apitests

import (
	"net/http"

	"github.com/akademiaqa/api-contract-tests/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoPostTests(t *T) {
	t.RunAll(
		Scenario{"get all posts", getAllPosts},
		Scenario{"get post by id", getPostByID},
		Scenario{"get post by any id in range", getPostsByRandomIDs},
		Scenario{"create post", createPost},
		Scenario{"update post", updatePost},
		Scenario{"partially update post", partiallyUpdatePost},
		Scenario{"delete post", deletePost},
		Scenario{"get posts by user id", getPostsByUserID},
	)
}

func getAllPosts(t *T) {
	expected := t.Config().Fixture.PostCount

	resp := t.GET("/posts").Expect().Status(http.StatusOK)
	resp.JSON().Array().Length().IsEqual(expected)

	posts := RequireDecoded(t, resp, model.DecodePosts)
	require.NotNil(t, posts)
	assert.Len(t, posts, expected)
}

func getPostByID(t *T) {
	resp := t.GET("/posts/{id}", existingPostID).Expect().Status(http.StatusOK)
	obj := resp.JSON().Object()
	obj.Value("id").Number().IsEqual(existingPostID)
	obj.Value("title").NotNull()
	obj.Value("body").NotNull()

	post := RequireDecoded(t, resp, model.DecodePost)
	assert.Equal(t, ldvalue.NewOptionalInt(existingPostID), post.ID)
	assert.NotEmpty(t, post.Title)
	assert.NotEmpty(t, post.Body)
	assert.Positive(t, post.UserID)
}

func getPostsByRandomIDs(t *T) {
	count := t.Config().Fixture.PostCount
	if count == 0 {
		t.SkipWithReason("the dataset has no posts")
	}
	for i := 0; i < sampledPostIDs; i++ {
		id := t.Random().IntBetween(1, count)
		t.Debug("sampled post id %d", id)

		resp := t.GET("/posts/{id}", id).Expect().Status(http.StatusOK)
		resp.JSON().Object().Value("id").Number().IsEqual(id)

		post := RequireDecoded(t, resp, model.DecodePost)
		assert.Equal(t, id, post.ID.IntValue())
		assert.NoError(t, model.ValidatePost(post))
	}
}

func createPost(t *T) {
	input := newPost(t.Random(), existingUserID)

	resp := t.POST("/posts", input).Expect().Status(http.StatusCreated)
	obj := resp.JSON().Object()
	obj.Value("id").NotNull()
	obj.Value("userId").Number().IsEqual(input.UserID)
	obj.Value("title").String().IsEqual(input.Title)
	obj.Value("body").String().IsEqual(input.Body)

	created := RequireDecoded(t, resp, model.DecodePost)
	assert.True(t, created.ID.IsDefined(), "created post has no id")
	assert.Equal(t, input.UserID, created.UserID)
	assert.Equal(t, input.Title, created.Title)
	assert.Equal(t, input.Body, created.Body)
}

func updatePost(t *T) {
	input := newPost(t.Random(), existingUserID)
	input.ID = ldvalue.NewOptionalInt(existingPostID)

	resp := t.PUT("/posts/{id}", input, existingPostID).Expect().Status(http.StatusOK)
	resp.JSON().Object().Value("id").Number().IsEqual(existingPostID)

	updated := RequireDecoded(t, resp, model.DecodePost)
	assert.Equal(t, existingPostID, updated.ID.IntValue())
	assert.Equal(t, input.Title, updated.Title)
	assert.Equal(t, input.Body, updated.Body)
}

func partiallyUpdatePost(t *T) {
	title := t.Random().Sentence(6)
	patch := ldvalue.ObjectBuild().Set("title", ldvalue.String(title)).Build()

	resp := t.PATCH("/posts/{id}", patch, existingPostID).Expect().Status(http.StatusOK)
	resp.JSON().Object().Value("title").String().IsEqual(title)

	updated := RequireDecoded(t, resp, model.DecodePost)
	assert.Equal(t, existingPostID, updated.ID.IntValue())
	assert.Equal(t, title, updated.Title)
}

func deletePost(t *T) {
	t.DELETE("/posts/{id}", existingPostID).Expect().Status(http.StatusOK)
}

func getPostsByUserID(t *T) {
	resp := t.GET("/posts").WithQuery("userId", existingUserID).Expect().Status(http.StatusOK)
	resp.JSON().Array().NotEmpty()

	posts := RequireDecoded(t, resp, model.DecodePosts)
	require.NotEmpty(t, posts)
	for _, p := range posts {
		assert.Equal(t, existingUserID, p.UserID, "post %d belongs to another user", p.ID.IntValue())
	}
}
