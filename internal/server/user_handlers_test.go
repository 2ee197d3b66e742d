package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchUsers(t *testing.T) {
	e := newTestEnv(t)
	e.register("alice")
	e.register("alicia")
	e.register("bob")

	tests := []struct {
		query string
		want  []string
	}{
		{"ALI", []string{"alice", "alicia"}},
		{"bob", []string{"bob"}},
		{"zzz", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := e.do(http.MethodGet, "/api/users/search?q="+tt.query, nil, "")
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.query, body["query"])

			users := body["users"].([]any)
			var names []string
			for _, u := range users {
				m := u.(map[string]any)
				names = append(names, m["username"].(string))
				assert.NotContains(t, m, "email")
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestGetUser(t *testing.T) {
	e := newTestEnv(t)
	aliceToken, aliceID := e.register("alice")
	_, bobID := e.register("bob")

	resp, body := e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "bob", user["username"])
	assert.NotContains(t, user, "email")
	assert.Equal(t, false, user["is_following"])

	resp, _ = e.do(http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), nil, aliceToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), nil, aliceToken)
	user = body["user"].(map[string]any)
	assert.Equal(t, true, user["is_following"])
	assert.EqualValues(t, 1, user["followers"])

	_, body = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), nil, "")
	assert.EqualValues(t, 1, body["user"].(map[string]any)["following"])

	resp, _ = e.do(http.MethodGet, "/api/users/98765", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFollowUnfollow(t *testing.T) {
	e := newTestEnv(t)
	aliceToken, aliceID := e.register("alice")
	_, bobID := e.register("bob")
	followPath := fmt.Sprintf("/api/users/%d/follow", bobID)

	resp, body := e.do(http.MethodPost, followPath, nil, aliceToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "You are now following bob", body["message"])
	assert.Equal(t, true, body["is_following"])

	resp, body = e.do(http.MethodPost, followPath, nil, aliceToken)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Already following this user", body["error"])

	_, body = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d/followers", bobID), nil, "")
	followers := body["users"].([]any)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].(map[string]any)["username"])

	_, body = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d/following", aliceID), nil, "")
	assert.Len(t, body["users"], 1)

	resp, body = e.do(http.MethodDelete, followPath, nil, aliceToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "You unfollowed bob", body["message"])
	assert.Equal(t, false, body["is_following"])

	resp, body = e.do(http.MethodDelete, followPath, nil, aliceToken)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Not following this user", body["error"])

	_, body = e.do(http.MethodGet, fmt.Sprintf("/api/users/%d/followers", bobID), nil, "")
	assert.Empty(t, body["users"])
}

func TestFollow_Rejections(t *testing.T) {
	e := newTestEnv(t)
	token, id := e.register("alice")

	resp, body := e.do(http.MethodPost, fmt.Sprintf("/api/users/%d/follow", id), nil, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot follow yourself", body["error"])

	resp, _ = e.do(http.MethodPost, "/api/users/4040/follow", nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(http.MethodPost, "/api/users/1/follow", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(http.MethodGet, "/api/users/4040/followers", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUserPostsAndFeed(t *testing.T) {
	e := newTestEnv(t)
	aliceToken, _ := e.register("alice")
	bobToken, bobID := e.register("bob")
	carolToken, _ := e.register("carol")

	e.do(http.MethodPost, "/api/posts", map[string]any{"content": "from alice"}, aliceToken)
	e.do(http.MethodPost, "/api/posts", map[string]any{"content": "from bob"}, bobToken)
	e.do(http.MethodPost, "/api/posts", map[string]any{"content": "from carol"}, carolToken)

	resp, body := e.do(http.MethodGet, fmt.Sprintf("/api/users/%d/posts", bobID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "bob", body["user"].(map[string]any)["username"])

	resp, _ = e.do(http.MethodGet, "/api/users/777/posts", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	_, body = e.do(http.MethodGet, "/api/users/me/feed", nil, aliceToken)
	assert.EqualValues(t, 1, body["total"])

	e.do(http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bobID), nil, aliceToken)

	resp, body = e.do(http.MethodGet, "/api/users/me/feed", nil, aliceToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])
	var contents []string
	for _, p := range body["posts"].([]any) {
		contents = append(contents, p.(map[string]any)["content"].(string))
	}
	assert.ElementsMatch(t, []string{"from alice", "from bob"}, contents)

	resp, _ = e.do(http.MethodGet, "/api/users/me/feed", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
