package controllers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rios0rios0/forkfix/internal/domain/commands"
	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

const (
	webhookBodyLimit  = "1M"
	webhookRate       = rate.Limit(1)
	webhookBurst      = 10
	webhookLimiterTTL = 3 * time.Minute

	createdAction = "created"
)

// WebhookResponse is the body of every /webhook answer.
type WebhookResponse struct {
	Status     string `json:"status"`
	Repository string `json:"repository,omitempty"`
}

// WebhookServer receives the host's repository and fork events and runs the
// remediation workflow for new forks of the primary account.
type WebhookServer struct {
	echo    *echo.Echo
	propose commands.Propose
	secret  []byte
	owner   string
	opts    commands.ProposeOptions
	running sync.WaitGroup
}

// NewWebhookServer creates the server. Only forks owned by owner are handled.
func NewWebhookServer(
	propose commands.Propose,
	secret []byte,
	owner string,
	opts commands.ProposeOptions,
) *WebhookServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	server := &WebhookServer{echo: e, propose: propose, secret: secret, owner: owner, opts: opts}
	e.GET("/health", server.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/webhook", server.handleWebhook,
		middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      webhookRate,
				Burst:     webhookBurst,
				ExpiresIn: webhookLimiterTTL,
			}),
		}),
		middleware.BodyLimit(webhookBodyLimit),
	)
	return server
}

// ServeHTTP makes the server usable as a plain http.Handler.
func (it *WebhookServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	it.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown.
func (it *WebhookServer) Start(addr string) error {
	logger.Infof("[serve] Listening on %s", addr)
	return it.echo.Start(addr)
}

// Shutdown stops accepting events and waits for the running workflows.
func (it *WebhookServer) Shutdown(ctx context.Context) error {
	err := it.echo.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		it.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("[serve] Shutdown before every workflow finished")
	}
	return err
}

// Wait blocks until every dispatched workflow returned.
func (it *WebhookServer) Wait() {
	it.running.Wait()
}

func (it *WebhookServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, WebhookResponse{Status: "ok"})
}

func (it *WebhookServer) handleWebhook(c echo.Context) error {
	request := c.Request()
	payload, err := gh.ValidatePayload(request, it.secret)
	if err != nil {
		logger.Warnf("[serve] Invalid webhook signature: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	event, err := gh.ParseWebHook(gh.WebHookType(request), payload)
	if err != nil {
		logger.Warnf("[serve] Failed to parse webhook: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	fork, ok := it.forkOf(event)
	if !ok {
		logger.Debugf("[serve] Ignoring %s event", gh.WebHookType(request))
		return c.JSON(http.StatusOK, WebhookResponse{Status: "ignored"})
	}

	it.dispatch(request.Context(), fork)
	return c.JSON(http.StatusAccepted, WebhookResponse{Status: "accepted", Repository: fork.String()})
}

// forkOf extracts the new fork from a repository creation or a fork event.
func (it *WebhookServer) forkOf(event interface{}) (entities.RepositoryKey, bool) {
	var repo *gh.Repository
	switch e := event.(type) {
	case *gh.RepositoryEvent:
		if e.GetAction() != createdAction || !e.GetRepo().GetFork() {
			return entities.RepositoryKey{}, false
		}
		repo = e.GetRepo()
	case *gh.ForkEvent:
		repo = e.GetForkee()
	default:
		return entities.RepositoryKey{}, false
	}

	key := entities.RepositoryKey{Owner: repo.GetOwner().GetLogin(), Name: repo.GetName()}
	if key.Owner == "" || key.Name == "" || !strings.EqualFold(key.Owner, it.owner) {
		return entities.RepositoryKey{}, false
	}
	return key, true
}

// dispatch runs the workflow after the response is sent; the request context
// only lends its values.
func (it *WebhookServer) dispatch(parent context.Context, fork entities.RepositoryKey) {
	it.running.Add(1)
	go func() {
		defer it.running.Done()
		ctx := context.WithoutCancel(parent)
		if _, err := it.propose.Execute(ctx, fork, it.opts); err != nil {
			logger.WithField("repository", fork.String()).Errorf("[serve] %v", err)
		}
	}()
}
