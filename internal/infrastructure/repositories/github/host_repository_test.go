//go:build unit

package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/infrastructure/repositories/github"
)

func newTestHost(t *testing.T, mux *http.ServeMux) *github.HostRepository {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := github.NewClient(github.ClientOptions{
		Token:     "test-token",
		RetryMax:  1,
		RetryWait: time.Millisecond,
		BaseURL:   server.URL,
	})
	require.NoError(t, err)
	return github.NewHostRepository(client)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestHostRepository(t *testing.T) {
	t.Parallel()

	upstream := entities.Repository{Owner: "acme", Name: "widget"}

	t.Run("should map a fork with its source repository", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/bot/widget", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"name":           "widget",
				"owner":          map[string]any{"login": "bot", "type": "User"},
				"fork":           true,
				"default_branch": "main",
				"source": map[string]any{
					"name":             "widget",
					"owner":            map[string]any{"login": "acme", "type": "Organization"},
					"stargazers_count": 42,
					"default_branch":   "develop",
				},
			})
		})
		host := newTestHost(t, mux)

		// when
		repo, err := host.GetRepository(context.Background(), "bot", "widget")

		// then
		require.NoError(t, err)
		assert.True(t, repo.IsFork)
		assert.Equal(t, entities.OwnerTypeUser, repo.OwnerType)
		require.NotNil(t, repo.Source)
		assert.Equal(t, "acme/widget", repo.Source.FullName())
		assert.Equal(t, entities.OwnerTypeOrganization, repo.Source.OwnerType)
		assert.Equal(t, 42, repo.Source.StarCount)
		assert.Equal(t, "develop", repo.Source.DefaultBranch)
	})

	t.Run("should translate a missing file into ErrNotFound", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/contents/yarn.lock", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "Not Found"})
		})
		host := newTestHost(t, mux)

		// when
		_, err := host.GetContent(context.Background(), upstream, "yarn.lock", "")

		// then
		require.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("should decode base64 content and keep its metadata", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/contents/package.json", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"type":     "file",
				"path":     "package.json",
				"sha":      "abc",
				"size":     15,
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString([]byte(`{"name":"demo"}`)),
			})
		})
		host := newTestHost(t, mux)

		// when
		file, err := host.GetContent(context.Background(), upstream, "package.json", "main")

		// then
		require.NoError(t, err)
		assert.Equal(t, `{"name":"demo"}`, file.Text())
		assert.Equal(t, "abc", file.SHA)
		assert.Equal(t, 15, file.Size)
	})

	t.Run("should return an empty body when the host omits large content", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/contents/package-lock.json", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"type":     "file",
				"path":     "package-lock.json",
				"size":     2 << 20,
				"encoding": "none",
				"content":  "",
			})
		})
		host := newTestHost(t, mux)

		// when
		file, err := host.GetContent(context.Background(), upstream, "package-lock.json", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.EncodingNone, file.Encoding)
		assert.Empty(t, file.Content)
		assert.Equal(t, 2<<20, file.Size)
	})

	t.Run("should list only files of a directory", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/contents/.github/workflows", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"type": "file", "name": "ci.yml", "path": ".github/workflows/ci.yml"},
				{"type": "dir", "name": "nested", "path": ".github/workflows/nested"},
			})
		})
		host := newTestHost(t, mux)

		// when
		paths, err := host.ListDirectory(context.Background(), upstream, ".github/workflows", "")

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{".github/workflows/ci.yml"}, paths)
	})

	t.Run("should read the committer date of the latest commit touching a path", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/commits", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "package-lock.json", r.URL.Query().Get("path"))
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"sha": "c1", "commit": map[string]any{"committer": map[string]any{"date": "2026-05-01T10:00:00Z"}}},
			})
		})
		host := newTestHost(t, mux)

		// when
		modified, err := host.GetLastModified(context.Background(), upstream, "package-lock.json")

		// then
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), modified.UTC())
	})

	t.Run("should report a contribution template from the community profile", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/community/profile", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"files": map[string]any{
					"pull_request_template": map[string]any{"url": "https://example.test/template"},
				},
			})
		})
		host := newTestHost(t, mux)

		// when
		hasTemplate, err := host.HasContributionTemplate(context.Background(), upstream)

		// then
		require.NoError(t, err)
		assert.True(t, hasTemplate)
	})

	t.Run("should deduplicate repositories referenced by organization events", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /orgs/acme/events", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"type": "PushEvent", "repo": map[string]any{"name": "acme/widget"}},
				{"type": "WatchEvent", "repo": map[string]any{"name": "acme/gadget"}},
				{"type": "PushEvent", "repo": map[string]any{"name": "acme/widget"}},
			})
		})
		host := newTestHost(t, mux)

		// when
		keys, err := host.ListEventRepositories(context.Background(), "acme", entities.OwnerTypeOrganization)

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.RepositoryKey{
			{Owner: "acme", Name: "widget"},
			{Owner: "acme", Name: "gadget"},
		}, keys)
	})

	t.Run("should treat an accepted fork as created", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("POST /repos/acme/widget/forks", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusAccepted, map[string]any{
				"name":  "widget",
				"owner": map[string]any{"login": "bot", "type": "User"},
				"fork":  true,
			})
		})
		host := newTestHost(t, mux)

		// when
		fork, err := host.CreateFork(context.Background(), upstream)

		// then
		require.NoError(t, err)
		assert.Equal(t, "bot/widget", fork.FullName())
		assert.True(t, fork.IsFork)
	})

	t.Run("should report an existing ref as a conflict", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("POST /repos/bot/widget/git/refs", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{"message": "Reference already exists"})
		})
		host := newTestHost(t, mux)

		// when
		err := host.CreateRef(
			context.Background(), entities.Repository{Owner: "bot", Name: "widget"}, "refs/heads/x", "sha",
		)

		// then
		require.ErrorIs(t, err, entities.ErrConflict)
	})

	t.Run("should send base64 blobs and layer entries on the base tree", func(t *testing.T) {
		t.Parallel()

		// given
		var blobBody, treeBody map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("POST /repos/bot/widget/git/blobs", func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&blobBody))
			writeJSON(t, w, http.StatusCreated, map[string]any{"sha": "blob1"})
		})
		mux.HandleFunc("POST /repos/bot/widget/git/trees", func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&treeBody))
			writeJSON(t, w, http.StatusCreated, map[string]any{"sha": "tree1"})
		})
		host := newTestHost(t, mux)
		fork := entities.Repository{Owner: "bot", Name: "widget"}

		// when
		blobSHA, blobErr := host.CreateBlob(context.Background(), fork, "{}\n")
		treeSHA, treeErr := host.CreateTree(context.Background(), fork, "base", []entities.TreeEntry{
			{Path: "package.json", BlobSHA: blobSHA},
		})

		// then
		require.NoError(t, blobErr)
		require.NoError(t, treeErr)
		assert.Equal(t, "base64", blobBody["encoding"])
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("{}\n")), blobBody["content"])
		assert.Equal(t, "base", treeBody["base_tree"])
		assert.Equal(t, "tree1", treeSHA)
	})

	t.Run("should report a merged pull request", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("GET /repos/acme/widget/pulls/7", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"number":   7,
				"state":    "closed",
				"merged":   true,
				"html_url": "https://github.com/acme/widget/pull/7",
			})
		})
		host := newTestHost(t, mux)

		// when
		pr, err := host.GetPullRequest(context.Background(), upstream, 7)

		// then
		require.NoError(t, err)
		assert.Equal(t, "closed", pr.State)
		assert.True(t, pr.Merged)
	})
}

func TestClientRetryPolicy(t *testing.T) {
	t.Parallel()

	t.Run("should retry server errors up to the configured count", func(t *testing.T) {
		t.Parallel()

		// given
		var calls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		})
		host := newTestHost(t, mux)

		// when
		_, err := host.GetAuthenticatedUser(context.Background())

		// then
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("should not retry forbidden requests", func(t *testing.T) {
		t.Parallel()

		// given
		var calls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = io.Copy(io.Discard, r.Body)
			writeJSON(t, w, http.StatusForbidden, map[string]any{"message": "Forbidden"})
		})
		host := newTestHost(t, mux)

		// when
		_, err := host.GetAuthenticatedUser(context.Background())

		// then
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})
}
