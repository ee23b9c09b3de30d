// Package gitea implements repository.ContentRepository over the Gitea
// contents API.
package gitea

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"
	"github.com/sirupsen/logrus"

	"netintent/internal/domain"
	"netintent/internal/repository"
)

// DefaultTimeout bounds each request when the config does not set one
const DefaultTimeout = 30 * time.Second

// commitRefExpr selects the commit link from a write response, falling back
// to the bare commit id
var commitRefExpr = jmespath.MustCompile("commit.html_url || commit.sha")

// Config identifies the repository and how to authenticate
type Config struct {
	URL     string
	Repo    string
	Token   string
	Timeout time.Duration
}

// Client talks to one Gitea repository
type Client struct {
	baseURL string
	repo    string
	token   string
	http    *http.Client
	log     *logrus.Entry
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) {
		c.log = entry
	}
}

// New creates a client for cfg
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		repo:    strings.Trim(cfg.Repo, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "gitea"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ repository.ContentRepository = (*Client)(nil)

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type writeBody struct {
	Content string `json:"content"`
	Message string `json:"message"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

// Get fetches a file. 404 means the file does not exist yet.
func (c *Client) Get(ctx context.Context, path, ref string) (domain.RemoteFileState, error) {
	state := domain.RemoteFileState{Path: path}

	endpoint := c.contentsURL(path)
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}

	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return state, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		c.log.WithField("path", path).Debug("file not found")
		return state, nil
	default:
		return state, domain.NewRepositoryError(status, string(body))
	}

	var resp contentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return state, domain.NewSyncError(domain.KindRepositoryError, fmt.Errorf("decode contents: %w", err))
	}

	content, err := decodeContent(resp)
	if err != nil {
		return state, domain.NewSyncError(domain.KindRepositoryError, err)
	}

	state.Exists = true
	state.Content = content
	state.RevisionToken = resp.SHA
	return state, nil
}

// Write creates the file with POST, or updates it with PUT when the request
// carries a revision token
func (c *Client) Write(ctx context.Context, req repository.WriteRequest) (repository.WriteResult, error) {
	method := http.MethodPost
	if req.IsUpdate() {
		method = http.MethodPut
	}

	payload, err := json.Marshal(writeBody{
		Content: base64.StdEncoding.EncodeToString([]byte(req.Content)),
		Message: req.Message,
		Branch:  req.Branch,
		SHA:     req.RevisionToken,
	})
	if err != nil {
		return repository.WriteResult{}, fmt.Errorf("encode write body: %w", err)
	}

	status, body, err := c.do(ctx, method, c.contentsURL(req.Path), payload)
	if err != nil {
		return repository.WriteResult{}, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return repository.WriteResult{}, domain.NewRepositoryError(status, string(body))
	}

	return repository.WriteResult{
		Status:    status,
		CommitRef: commitRef(body, c.log),
	}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, domain.NewSyncError(domain.KindConnectionError, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	c.log.WithFields(logrus.Fields{"method": method, "url": endpoint}).Debug("repository request")

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, domain.NewSyncError(domain.KindConnectionError, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, domain.NewSyncError(domain.KindConnectionError, fmt.Errorf("read response: %w", err))
	}
	return res.StatusCode, body, nil
}

func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/api/v1/repos/%s/contents/%s", c.baseURL, c.repo, strings.Join(segments, "/"))
}

func decodeContent(resp contentsResponse) (string, error) {
	if resp.Encoding != "" && resp.Encoding != "base64" {
		return resp.Content, nil
	}
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(resp.Content)
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}
	return string(decoded), nil
}

// commitRef pulls the commit reference out of a write response. A response
// without one still counts as a successful write.
func commitRef(body []byte, log *logrus.Entry) string {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		log.WithError(err).Debug("write response is not JSON")
		return ""
	}
	ref, err := commitRefExpr.Search(data)
	if err != nil {
		return ""
	}
	s, _ := ref.(string)
	return s
}
