package content

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
	"golang.org/x/time/rate"

	"github.com/liaGregorio/GeoDUA-sub000/internal/errors"
)

// Client talks to the GeoDUA content API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
	limiter   *rate.Limiter
}

const (
	defaultAPIURL    = "127.0.0.1:8000"
	defaultUserAgent = "geodua/0.1"
	requestTimeout   = 30 * time.Second
	maxErrorBody     = 4 << 10
)

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithRateLimit throttles outbound requests. rps <= 0 disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the API at apiURL (host:port or full URL).
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListSections returns the sections of a chapter in server order.
func (c *Client) ListSections(ctx context.Context, chapterID int64) ([]Section, error) {
	var payload []Section
	if err := c.do(ctx, http.MethodGet, path("chapters", chapterID, "sections"), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateSection creates a section and returns it with its assigned id.
func (c *Client) CreateSection(ctx context.Context, in SectionInput) (Section, error) {
	var payload Section
	if err := c.do(ctx, http.MethodPost, "/api/sections", in, &payload); err != nil {
		return Section{}, err
	}
	return payload, nil
}

// UpdateSection applies a partial update.
func (c *Client) UpdateSection(ctx context.Context, id int64, patch SectionPatch) (Section, error) {
	var payload Section
	if err := c.do(ctx, http.MethodPatch, path("sections", id), patch, &payload); err != nil {
		return Section{}, err
	}
	return payload, nil
}

// DeleteSection removes a section.
func (c *Client) DeleteSection(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, path("sections", id), nil, nil)
}

// ListImages returns the images of a section.
func (c *Client) ListImages(ctx context.Context, sectionID int64) ([]Image, error) {
	var payload []Image
	if err := c.do(ctx, http.MethodGet, path("sections", sectionID, "images"), nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateImage uploads an image under a section.
func (c *Client) CreateImage(ctx context.Context, in ImageInput) (Image, error) {
	if in.SectionID <= 0 {
		return Image{}, errors.Validation("image section id required")
	}
	var payload Image
	if err := c.do(ctx, http.MethodPost, "/api/images", in, &payload); err != nil {
		return Image{}, err
	}
	return payload, nil
}

// UpdateImage applies a partial image update.
func (c *Client) UpdateImage(ctx context.Context, id int64, patch ImagePatch) (Image, error) {
	var payload Image
	if err := c.do(ctx, http.MethodPatch, path("images", id), patch, &payload); err != nil {
		return Image{}, err
	}
	return payload, nil
}

// DeleteImage removes an image.
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, path("images", id), nil, nil)
}

// SaveAsDraft stores composed sections as a new draft of chapterID.
func (c *Client) SaveAsDraft(ctx context.Context, chapterID int64, sections []DraftSection, userID int64) (DraftChapter, error) {
	var payload DraftChapter
	body := draftRequest{UserID: userID, Sections: sections}
	if err := c.do(ctx, http.MethodPost, path("chapters", chapterID, "drafts"), body, &payload); err != nil {
		return DraftChapter{}, err
	}
	return payload, nil
}

// PublishDraft replaces the destination chapter's content with the draft.
func (c *Client) PublishDraft(ctx context.Context, draftID, destinationChapterID int64) error {
	body := publishRequest{ChapterID: destinationChapterID}
	return c.do(ctx, http.MethodPost, path("drafts", draftID, "publish"), body, nil)
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var payload User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &payload); err != nil {
		return User{}, err
	}
	return payload, nil
}

// GetChapter returns chapter metadata.
func (c *Client) GetChapter(ctx context.Context, id int64) (Chapter, error) {
	var payload Chapter
	if err := c.do(ctx, http.MethodGet, path("chapters", id), nil, &payload); err != nil {
		return Chapter{}, err
	}
	return payload, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var payload loginResponse
	body := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", errors.Wrap(errors.New("empty token"), errors.CodeUnauthorized, "login")
	}
	return payload.Token, nil
}

// RecordVisit reports a navigation-history entry.
func (c *Client) RecordVisit(ctx context.Context, v Visit) error {
	return c.do(ctx, http.MethodPost, "/api/history", v, nil)
}

func path(parts ...any) string {
	var b strings.Builder
	b.WriteString("/api")
	for _, p := range parts {
		b.WriteByte('/')
		switch v := p.(type) {
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		default:
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, method, relPath string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, errors.CodeNetwork, "rate limit wait")
		}
	}

	rel := &url.URL{Path: relPath}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
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
		return errors.Wrapf(err, errors.CodeNetwork, "%s %s", method, rel.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp, method, rel.Path)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "decode response %s", rel.Path)
	}
	return nil
}

func decodeError(resp *http.Response, method, relPath string) error {
	code := errors.CodeForStatus(resp.StatusCode)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := fmt.Sprintf("api %s %s returned status %d", method, relPath, resp.StatusCode)
	var payload errorResponse
	if json.Unmarshal(raw, &payload) == nil {
		if detail := firstNonEmpty(payload.Message, payload.Error); detail != "" {
			msg += ": " + detail
		}
		e := &errors.Error{Code: code, Message: msg}
		if payload.Details != nil {
			return e.WithDetails(payload.Details)
		}
		return e
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		msg += ": " + text
	}
	return &errors.Error{Code: code, Message: msg}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
