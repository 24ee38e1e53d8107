package github

import (
	"context"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
)

// ClientOptions configures the HTTP client shared by one host identity.
type ClientOptions struct {
	Token     string
	RetryMax  int
	RetryWait time.Duration

	// BaseURL points the client at another API root, used for GitHub Enterprise and tests.
	BaseURL string
}

// NewClient builds a go-github client whose transport retries transient failures
// a bounded number of times with a fixed wait.
func NewClient(opts ClientOptions) (*gh.Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWait
	retryClient.RetryWaitMax = opts.RetryWait
	retryClient.Backoff = fixedBackoff
	retryClient.CheckRetry = checkRetry
	retryClient.Logger = leveledLogger{}

	client := gh.NewClient(retryClient.StandardClient()).WithAuthToken(opts.Token)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		if baseURL.Path == "" || baseURL.Path[len(baseURL.Path)-1] != '/' {
			baseURL.Path += "/"
		}
		client.BaseURL = baseURL
	}
	return client, nil
}

func fixedBackoff(minWait, _ time.Duration, _ int, _ *http.Response) time.Duration {
	return minWait
}

// checkRetry never retries client errors that a retry cannot fix.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
			return false, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// leveledLogger routes retryablehttp logs to logrus.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Error(msg)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Warn(msg)
}

func fields(keysAndValues []interface{}) logger.Fields {
	result := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			result[key] = keysAndValues[i+1]
		}
	}
	return result
}
