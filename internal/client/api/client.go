package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/gcontacts/pkg/api"
)

const (
	// DefaultBaseURL - адрес Google People API
	DefaultBaseURL = "https://people.googleapis.com"
	// DefaultPageSize - размер страницы connections.list
	DefaultPageSize = 100
	// DefaultTimeout - таймаут одного HTTP запроса
	DefaultTimeout = 30 * time.Second
	// DefaultMaxPages ограничивает пагинацию, чтобы не уйти в бесконечный цикл
	DefaultMaxPages = 50

	personFields   = "names,emailAddresses,phoneNumbers,metadata"
	identityFields = "metadata,emailAddresses"
	sortOrder      = "FIRST_NAME_ASCENDING"

	// FallbackIDPrefix marks locally generated identifiers used when the
	// profile exposes neither an email nor a source id.
	FallbackIDPrefix = "fallback_"
)

var (
	// ErrUnauthorized indicates that the access token was rejected
	ErrUnauthorized = errors.New("access token rejected by server")
	// ErrMissingToken indicates that no access token was supplied
	ErrMissingToken = errors.New("access token is required")
)

// Client представляет HTTP клиент для People API
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	pageSize   int
	maxPages   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPaging overrides page size and the maximum number of pages fetched.
func WithPaging(pageSize, maxPages int) ClientOption {
	return func(c *Client) {
		if pageSize > 0 {
			c.pageSize = pageSize
		}
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL, apiKey string, logger *slog.Logger, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		logger:   logger,
		pageSize: DefaultPageSize,
		maxPages: DefaultMaxPages,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: newLoggingTransport(http.DefaultTransport, logger),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetUserID returns a stable identifier of the signed-in account.
// Preference order: base64 of the primary email, the first profile source id,
// then a locally generated fallback token.
func (c *Client) GetUserID(ctx context.Context, accessToken string) (string, error) {
	var me api.Person
	query := url.Values{"personFields": {identityFields}}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/people/me", query, accessToken, &me); err != nil {
		return "", fmt.Errorf("get profile request failed: %w", err)
	}

	for _, email := range me.EmailAddresses {
		if email.Value != "" {
			return base64.StdEncoding.EncodeToString([]byte(email.Value)), nil
		}
	}

	if me.Metadata != nil {
		for _, src := range me.Metadata.Sources {
			if src.ID != "" {
				return src.ID, nil
			}
		}
	}

	// Последний вариант: локально сгенерированный идентификатор.
	// Кэш такого пользователя не переживет следующий вход.
	fallback := FallbackIDPrefix + uuid.NewString()
	c.logger.WarnContext(ctx, "Profile has no email or source id, using fallback user id")
	return fallback, nil
}

// ListConnections получает одну страницу контактов
func (c *Client) ListConnections(ctx context.Context, accessToken, pageToken string) (*api.ListConnectionsResponse, error) {
	query := url.Values{
		"pageSize":     {strconv.Itoa(c.pageSize)},
		"personFields": {personFields},
		"sortOrder":    {sortOrder},
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	var resp api.ListConnectionsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/v1/people/me/connections", query, accessToken, &resp); err != nil {
		return nil, fmt.Errorf("list connections request failed: %w", err)
	}
	return &resp, nil
}

// FetchAllContacts walks all connection pages. onProgress, if set, receives
// human-readable progress messages. When maxPages is reached while more
// pages remain, the partial result is returned and a warning is logged.
func (c *Client) FetchAllContacts(ctx context.Context, accessToken string, onProgress func(string)) ([]api.Person, error) {
	progress := func(format string, args ...any) {
		if onProgress != nil {
			onProgress(fmt.Sprintf(format, args...))
		}
	}

	var (
		people    []api.Person
		pageToken string
	)

	for page := 1; ; page++ {
		progress("Fetching contacts page %d...", page)

		resp, err := c.ListConnections(ctx, accessToken, pageToken)
		if err != nil {
			return nil, err
		}

		people = append(people, resp.Connections...)
		pageToken = resp.NextPageToken

		progress("Loaded %d contacts so far...", len(people))

		if pageToken == "" {
			break
		}
		if page >= c.maxPages {
			c.logger.WarnContext(ctx, "Reached maximum page count, some contacts may be missing",
				"max_pages", c.maxPages,
				"loaded", len(people))
			break
		}
	}

	progress("Completed loading %d contacts", len(people))
	return people, nil
}

// doRequest выполняет HTTP запрос к People API
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, accessToken string, result any) error {
	if accessToken == "" {
		return ErrMissingToken
	}

	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		msg := string(respBody)
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
