package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/liveboard"
)

const (
	defaultTimeout      = 3 * time.Second
	listCacheExpiration = 2 * time.Second
)

// APIError is a non-2xx response decoded into the server's message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a liveboard server. List pages are cached briefly;
// snapshots are always fetched fresh so a joining viewer never starts from
// stale state.
type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(listCacheExpiration, time.Minute),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SetToken installs the bearer credential for subsequent requests. An
// empty token clears the session.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) request(ctx context.Context, method, path string, body any, response any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&msg)
		if resp.StatusCode == http.StatusUnauthorized {
			// expired or invalid credential: treat the user as logged out
			c.token = ""
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if response == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(response)
}

func (c *Client) Register(ctx context.Context, username, password string) (liveboard.AuthResponse, error) {
	var resp liveboard.AuthResponse
	err := c.request(ctx, http.MethodPost, "/auth/register", liveboard.Credentials{
		Username: username,
		Password: password,
	}, &resp)
	if err == nil {
		c.token = resp.Token
	}
	return resp, err
}

func (c *Client) Login(ctx context.Context, username, password string) (liveboard.AuthResponse, error) {
	var resp liveboard.AuthResponse
	err := c.request(ctx, http.MethodPost, "/auth/login", liveboard.Credentials{
		Username: username,
		Password: password,
	}, &resp)
	if err == nil {
		c.token = resp.Token
	}
	return resp, err
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.request(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.token = ""
	return err
}

func (c *Client) GetPost(ctx context.Context, postID string) (liveboard.Post, error) {
	var resp struct {
		Post liveboard.Post `json:"post"`
	}
	err := c.request(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil, &resp)
	return resp.Post, err
}

func (c *Client) ListPosts(ctx context.Context, page, limit int) (liveboard.PostListResponse, error) {
	key := fmt.Sprintf("posts:%d:%d", page, limit)
	if cached, found := c.cache.Get(key); found {
		return cached.(liveboard.PostListResponse), nil
	}

	var resp liveboard.PostListResponse
	path := fmt.Sprintf("/posts?page=%d&limit=%d", page, limit)
	err := c.request(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		return liveboard.PostListResponse{}, err
	}
	c.cache.Set(key, resp, cache.DefaultExpiration)
	return resp, nil
}

func (c *Client) CreatePost(ctx context.Context, title, content string) (liveboard.PostResponse, error) {
	var resp liveboard.PostResponse
	err := c.request(ctx, http.MethodPost, "/posts", liveboard.PostRequest{
		Title:   title,
		Content: content,
	}, &resp)
	return resp, err
}

func (c *Client) UpdatePost(ctx context.Context, postID, title, content string) (liveboard.PostResponse, error) {
	var resp liveboard.PostResponse
	err := c.request(ctx, http.MethodPut, "/posts/"+url.PathEscape(postID), liveboard.PostRequest{
		Title:   title,
		Content: content,
	}, &resp)
	return resp, err
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.request(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, nil)
}

func (c *Client) LikePost(ctx context.Context, postID string) (liveboard.PostResponse, error) {
	var resp liveboard.PostResponse
	err := c.request(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/like", nil, &resp)
	return resp, err
}

func (c *Client) AddComment(ctx context.Context, postID, text string) (liveboard.PostResponse, error) {
	var resp liveboard.PostResponse
	err := c.request(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comment", liveboard.CommentRequest{
		Text: text,
	}, &resp)
	return resp, err
}

func (c *Client) EditComment(ctx context.Context, postID, commentID, text string) (liveboard.PostResponse, error) {
	var resp liveboard.PostResponse
	path := "/posts/" + url.PathEscape(postID) + "/comment/" + url.PathEscape(commentID)
	err := c.request(ctx, http.MethodPut, path, liveboard.CommentRequest{Text: text}, &resp)
	return resp, err
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) (liveboard.PostResponse, error) {
	var resp liveboard.PostResponse
	path := "/posts/" + url.PathEscape(postID) + "/comment/" + url.PathEscape(commentID)
	err := c.request(ctx, http.MethodDelete, path, nil, &resp)
	return resp, err
}
