//go:build unit

package controllers_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
	"github.com/rios0rios0/forkfix/internal/infrastructure/controllers"
	"github.com/rios0rios0/forkfix/test/domain/commanddoubles"
)

const (
	webhookSecret = "s3cret"
	forkOwner     = "forkfix-account"
)

func signedRequest(t *testing.T, eventType, body, secret string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(body))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func newServer(stub *commanddoubles.StubProposeCommand) *controllers.WebhookServer {
	return controllers.NewWebhookServer(stub, []byte(webhookSecret), forkOwner, commands.ProposeOptions{})
}

func TestWebhookServer(t *testing.T) {
	t.Parallel()

	t.Run("should run the workflow for a fork created on the account", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{}
		server := newServer(stub)
		body := `{"action":"created","repository":{"name":"y","fork":true,"owner":{"login":"forkfix-account"}}}`
		rec := httptest.NewRecorder()

		// when
		server.ServeHTTP(rec, signedRequest(t, "repository", body, webhookSecret))
		server.Wait()

		// then
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"status":"accepted","repository":"forkfix-account/y"}`, rec.Body.String())
		assert.Equal(t, []entities.RepositoryKey{{Owner: forkOwner, Name: "y"}}, stub.ExecutedForks())
	})

	t.Run("should run the workflow for the forkee of a fork event", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{}
		server := newServer(stub)
		body := `{"forkee":{"name":"y","fork":true,"owner":{"login":"forkfix-account"}},"repository":{"name":"y","owner":{"login":"x"}}}`
		rec := httptest.NewRecorder()

		// when
		server.ServeHTTP(rec, signedRequest(t, "fork", body, webhookSecret))
		server.Wait()

		// then
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Len(t, stub.ExecutedForks(), 1)
	})

	t.Run("should ignore repositories that are not forks of the account", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{}
		server := newServer(stub)
		bodies := []string{
			`{"action":"created","repository":{"name":"y","fork":false,"owner":{"login":"forkfix-account"}}}`,
			`{"action":"deleted","repository":{"name":"y","fork":true,"owner":{"login":"forkfix-account"}}}`,
			`{"action":"created","repository":{"name":"y","fork":true,"owner":{"login":"someone-else"}}}`,
		}

		for _, body := range bodies {
			rec := httptest.NewRecorder()

			// when
			server.ServeHTTP(rec, signedRequest(t, "repository", body, webhookSecret))

			// then
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"ignored"}`, rec.Body.String())
		}
		server.Wait()
		assert.Empty(t, stub.ExecutedForks())
	})

	t.Run("should reject a payload signed with another secret", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubProposeCommand{}
		server := newServer(stub)
		body := `{"action":"created","repository":{"name":"y","fork":true,"owner":{"login":"forkfix-account"}}}`
		rec := httptest.NewRecorder()

		// when
		server.ServeHTTP(rec, signedRequest(t, "repository", body, "wrong"))

		// then
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, stub.ExecutedForks())
	})

	t.Run("should limit the request rate per client", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(&commanddoubles.StubProposeCommand{})
		codes := make([]int, 0, 11)

		// when
		for range 11 {
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, signedRequest(t, "ping", `{"zen":"hi"}`, webhookSecret))
			codes = append(codes, rec.Code)
		}

		// then
		assert.Equal(t, http.StatusOK, codes[0])
		assert.Equal(t, http.StatusTooManyRequests, codes[10])
	})

	t.Run("should reject a body over the size limit", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(&commanddoubles.StubProposeCommand{})
		body := `{"zen":"` + strings.Repeat("a", 2<<20) + `"}`
		rec := httptest.NewRecorder()

		// when
		server.ServeHTTP(rec, signedRequest(t, "ping", body, webhookSecret))

		// then
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("should serve health and metrics", func(t *testing.T) {
		t.Parallel()

		// given
		server := newServer(&commanddoubles.StubProposeCommand{})
		health := httptest.NewRecorder()
		metrics := httptest.NewRecorder()

		// when
		server.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
		server.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		// then
		assert.Equal(t, http.StatusOK, health.Code)
		assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())
		assert.Equal(t, http.StatusOK, metrics.Code)
	})
}
