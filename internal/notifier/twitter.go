package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/cgv-watch/internal/config"
)

const tweetLimit = 280

// TwitterNotifier posts a short digest of the report
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials
func NewTwitterNotifier(cfg config.TwitterConfig) (*TwitterNotifier, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.AccessToken == "" || cfg.AccessSecret == "" {
		return nil, fmt.Errorf("%w: twitter API key, API secret, access token and access secret", config.ErrMissingCredential)
	}

	oauthConfig := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Name returns "twitter"
func (n *TwitterNotifier) Name() string {
	return "twitter"
}

// Notify posts the digest tweet
func (n *TwitterNotifier) Notify(ctx context.Context, msg Message) error {
	if _, _, err := n.client.Statuses.Update(formatTweet(msg), nil); err != nil {
		return fmt.Errorf("posting tweet: %w", err)
	}
	return nil
}

// formatTweet joins subject and body and truncates to the weighted tweet limit
func formatTweet(msg Message) string {
	tweet := "🎬 " + msg.Subject + "\n\n" + strings.TrimSpace(msg.Body)
	if tweetWeight(tweet) <= tweetLimit {
		return tweet
	}

	var b strings.Builder
	weight := 0
	for _, r := range tweet {
		w := runeWeight(r)
		if weight+w > tweetLimit-3 {
			break
		}
		weight += w
		b.WriteRune(r)
	}
	return b.String() + "..."
}

// tweetWeight counts characters the way Twitter does: Latin-range runes count
// once, Hangul, CJK and emoji count twice
func tweetWeight(s string) int {
	total := 0
	for _, r := range s {
		total += runeWeight(r)
	}
	return total
}

func runeWeight(r rune) int {
	if r <= 0x10FF {
		return 1
	}
	return 2
}
