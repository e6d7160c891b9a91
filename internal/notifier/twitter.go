package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/academiagorila/bjj-schedule/internal/logger"
)

// DefaultTweetDelay spaces consecutive tweets.
const DefaultTweetDelay = 2 * time.Second

// TwitterCredentials are the OAuth 1.0a user-context keys.
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether every key is set.
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts messages as tweets
type TwitterNotifier struct {
	statuses statusUpdater
	delay    time.Duration
}

// NewTwitterNotifier creates a Twitter notifier from OAuth credentials
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, errors.New("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: client.Statuses, delay: DefaultTweetDelay}, nil
}

// Notify posts one tweet per message, pausing between tweets.
func (n *TwitterNotifier) Notify(ctx context.Context, messages []string) error {
	for i, msg := range messages {
		if _, _, err := n.statuses.Update(truncate(msg, TwitterLimit), nil); err != nil {
			return fmt.Errorf("failed to post tweet %d/%d: %w", i+1, len(messages), err)
		}
		logger.IncrCounter("notifier.twitter.sent")

		if i < len(messages)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}
	return nil
}
