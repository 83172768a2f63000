package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL   = "http://localhost:8000"
	defaultUserAgent = "wishly/0.1"
	requestTimeout   = 10 * time.Second
)

// Client talks to the Wishly backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
}

// NewClient builds a Client for the given base URL. An empty token leaves
// requests unauthenticated (the backend serves a restricted projection).
func NewClient(rawURL, token string) (*Client, error) {
	base, err := parseBaseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		token:     token,
	}, nil
}

// SetToken replaces the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Wishlist retrieves the summary for a public wishlist slug.
func (c *Client) Wishlist(ctx context.Context, slug string) (*Wishlist, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("wishlist slug required")
	}
	var payload Wishlist
	if err := c.do(ctx, http.MethodGet, "/wishlist/"+url.PathEscape(slug), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Gifts retrieves the gift snapshot for a wishlist. This is the one-time
// baseline the reconciler merges push events into.
func (c *Client) Gifts(ctx context.Context, wishlistID int64) ([]Gift, error) {
	var payload []Gift
	path := fmt.Sprintf("/wishlists/%d/gifts", wishlistID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Wishlists retrieves the authenticated user's own wishlists.
func (c *Client) Wishlists(ctx context.Context) ([]Wishlist, error) {
	var payload []Wishlist
	if err := c.do(ctx, http.MethodGet, "/wishlists/", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateWishlist creates a new wishlist owned by the current user.
func (c *Client) CreateWishlist(ctx context.Context, title, description string) (*Wishlist, error) {
	body := map[string]string{"title": title, "description": description}
	var payload Wishlist
	if err := c.do(ctx, http.MethodPost, "/wishlists/", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateWishlist updates the title and description of an owned wishlist.
func (c *Client) UpdateWishlist(ctx context.Context, id int64, title, description string) (*Wishlist, error) {
	body := map[string]string{"title": title, "description": description}
	var payload Wishlist
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/wishlists/%d", id), body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteWishlist removes an owned wishlist and all its gifts.
func (c *Client) DeleteWishlist(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/wishlists/%d", id), nil, nil)
}

// CreateGift adds a gift to a wishlist. The backend takes the fields as
// query parameters rather than a body.
func (c *Client) CreateGift(ctx context.Context, draft DraftGift) (*Gift, error) {
	values := url.Values{}
	values.Set("title", strings.TrimSpace(draft.Title))
	values.Set("price", formatAmount(draft.Price))
	values.Set("wishlist_id", strconv.FormatInt(draft.WishlistID, 10))
	if u := strings.TrimSpace(draft.URL); u != "" {
		values.Set("url", u)
	}
	if img := strings.TrimSpace(draft.ImageURL); img != "" {
		values.Set("image_url", img)
	}
	rel := &url.URL{Path: "/gifts/", RawQuery: values.Encode()}
	var payload Gift
	if err := c.doURL(ctx, http.MethodPost, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// UpdateGift replaces the editable fields of an existing gift.
func (c *Client) UpdateGift(ctx context.Context, id int64, draft DraftGift) (*Gift, error) {
	values := url.Values{}
	values.Set("title", strings.TrimSpace(draft.Title))
	values.Set("price", formatAmount(draft.Price))
	values.Set("url", strings.TrimSpace(draft.URL))
	values.Set("image_url", strings.TrimSpace(draft.ImageURL))
	rel := &url.URL{Path: fmt.Sprintf("/gifts/%d", id), RawQuery: values.Encode()}
	var payload Gift
	if err := c.doURL(ctx, http.MethodPut, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteGift removes a gift.
func (c *Client) DeleteGift(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/gifts/%d", id), nil, nil)
}

// ReserveGift places an exclusive claim on a gift. The resulting state
// change arrives through the push channel, so no payload is returned.
func (c *Client) ReserveGift(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/gifts/%d/reserve", id), nil, nil)
}

// Contribute adds a partial payment toward a gift. Amount bounds are
// enforced by the backend; ValidateContribution covers the same rules
// client-side so forms can reject bad input without a round trip.
func (c *Client) Contribute(ctx context.Context, id int64, amount float64) error {
	values := url.Values{}
	values.Set("amount", formatAmount(amount))
	rel := &url.URL{Path: fmt.Sprintf("/gifts/%d/contribute", id), RawQuery: values.Encode()}
	return c.doURL(ctx, http.MethodPost, rel, nil, nil)
}

// Stats retrieves the aggregate totals shown on the landing view.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var payload Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ParseLink asks the backend to scrape title, image and price from an
// arbitrary product URL. A missing scheme defaults to https.
func (c *Client) ParseLink(ctx context.Context, raw string) (*LinkMetadata, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("url required")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	values := url.Values{}
	values.Set("url", trimmed)
	rel := &url.URL{Path: "/api/parse-url", RawQuery: values.Encode()}
	var payload LinkMetadata
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Login exchanges credentials for a bearer token. The token is also
// installed on the client for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &payload); err != nil {
		return nil, err
	}
	c.token = payload.AccessToken
	return &payload, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &payload); err != nil {
		return nil, err
	}
	c.token = payload.AccessToken
	return &payload, nil
}

// User retrieves a user profile by id.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	var payload User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(rel.Path, resp)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", rawURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// formatAmount renders a money amount the way the backend expects: integral
// values without a decimal point.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
