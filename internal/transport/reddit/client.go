// Package reddit is a narrow client for the post source: script-app OAuth,
// newest-post listing with gallery resolution, and comment replies. The
// upstream API surface used here is small enough that a hand-rolled client
// stays simpler than any general-purpose library.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skytagbot/skytag/internal/domain"
)

const (
	defaultAuthBaseURL = "https://www.reddit.com"
	defaultAPIBaseURL  = "https://oauth.reddit.com"
)

// Credentials holds script-app credentials. Reddit requires a descriptive
// User-Agent; generic agents get throttled aggressively.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Client talks to the post source.
type Client struct {
	creds       Credentials
	httpClient  *http.Client
	authBaseURL string
	apiBaseURL  string
	logger      *zap.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
	nowFunc  func() time.Time
}

// NewClient creates a reddit client. httpClient may be nil.
func NewClient(creds Credentials, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		creds:       creds,
		httpClient:  httpClient,
		authBaseURL: defaultAuthBaseURL,
		apiBaseURL:  defaultAPIBaseURL,
		logger:      logger,
		nowFunc:     time.Now,
	}
}

// WithBaseURLs overrides endpoints. Used by tests.
func (c *Client) WithBaseURLs(authBase, apiBase string) *Client {
	c.authBaseURL = strings.TrimRight(authBase, "/")
	c.apiBaseURL = strings.TrimRight(apiBase, "/")
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached token, refreshing via the password grant when
// the cached one is missing or close to expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.nowFunc().Before(c.tokenExp.Add(-time.Minute)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.creds.Username},
		"password":   {c.creds.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBaseURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token request: status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access_token")
	}

	c.token = tr.AccessToken
	c.tokenExp = c.nowFunc().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body url.Values) (*http.Response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiBaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", c.creds.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return c.httpClient.Do(req)
}

// Wire types for the listing endpoint. raw_json=1 keeps media URLs
// unescaped.

type listing struct {
	Data struct {
		Children []struct {
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	IsSelf      bool    `json:"is_self"`
	URL         string  `json:"url"`
	CreatedUTC  float64 `json:"created_utc"`
	IsGallery   bool    `json:"is_gallery"`
	GalleryData *struct {
		Items []struct {
			MediaID string `json:"media_id"`
		} `json:"items"`
	} `json:"gallery_data"`
	MediaMetadata map[string]struct {
		S *struct {
			U string `json:"u"`
		} `json:"s"`
	} `json:"media_metadata"`
}

// ListNew returns up to limit newest posts of the subreddit, in feed order.
func (c *Client) ListNew(ctx context.Context, subreddit string, limit int) ([]domain.Post, error) {
	path := "/r/" + url.PathEscape(subreddit) + "/new?raw_json=1&limit=" + strconv.Itoa(limit)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s/new: %w", subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s/new: status %d", subreddit, resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]domain.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		posts = append(posts, toPost(child.Data))
	}
	return posts, nil
}

// toPost maps the wire post to the domain post, resolving gallery items to
// their largest available image URL in gallery order. Items without a
// largest variant are dropped, matching how partially-processed galleries
// behave upstream.
func toPost(p postData) domain.Post {
	post := domain.Post{
		ID:       p.ID,
		Fullname: p.Name,
		Title:    p.Title,
		IsSelf:   p.IsSelf,
		URL:      p.URL,
		Created:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
	}

	if p.IsGallery && p.GalleryData != nil {
		for _, item := range p.GalleryData.Items {
			meta, ok := p.MediaMetadata[item.MediaID]
			if !ok || meta.S == nil || meta.S.U == "" {
				continue
			}
			post.GalleryURLs = append(post.GalleryURLs, meta.S.U)
		}
	}
	return post
}

type commentResponse struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Things []struct {
				Data struct {
					Permalink string `json:"permalink"`
				} `json:"data"`
			} `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

// Reply posts a markdown comment on the given thing (t3_ fullname) and
// returns its permalink. Rejections surface as domain.ErrPublishFailure.
func (c *Client) Reply(ctx context.Context, fullname, markdown string) (string, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {fullname},
		"text":     {markdown},
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/comment", form)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPublishFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrPublishFailure, resp.StatusCode)
	}

	var cr commentResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrPublishFailure, err)
	}
	if len(cr.JSON.Errors) > 0 {
		return "", fmt.Errorf("%w: api errors: %v", domain.ErrPublishFailure, cr.JSON.Errors)
	}
	if len(cr.JSON.Data.Things) == 0 {
		return "", fmt.Errorf("%w: no comment in response", domain.ErrPublishFailure)
	}
	return cr.JSON.Data.Things[0].Data.Permalink, nil
}
