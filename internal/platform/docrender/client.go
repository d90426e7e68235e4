package docrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bookforge/bookforge-backend/internal/observability"
	"github.com/bookforge/bookforge-backend/internal/platform/ctxutil"
	"github.com/bookforge/bookforge-backend/internal/platform/envutil"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
)

// Client renders an HTML document to a hosted PDF through the external
// document-render proxy. There is no local fallback for actual PDF bytes;
// callers surface failures as 500s.
type Client interface {
	RenderPDF(ctx context.Context, req RenderRequest) (*RenderResult, error)
}

type RenderRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	HTML       string `json:"html"`
	CoverURL   string `json:"cover_url,omitempty"`
	PageFormat string `json:"page_format,omitempty"` // A4 | Letter | 6x9 | 5x8
}

type RenderResult struct {
	PDFURL     string  `json:"pdf_url"`
	TotalPages int     `json:"total_pages,omitempty"`
	WordCount  int     `json:"word_count,omitempty"`
	FileSizeMB float64 `json:"file_size_mb,omitempty"`
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:  strings.TrimSpace(os.Getenv("DOCRENDER_API_KEY")),
		BaseURL: envutil.String("DOCRENDER_BASE_URL", "https://api.docrender.io"),
		Timeout: time.Duration(envutil.Int("DOCRENDER_TIMEOUT_SECONDS", 120)) * time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing DOCRENDER_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &client{
		log:        log.With("client", "DocRenderClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type renderHTTPError struct {
	StatusCode int
	Body       string
}

func (e *renderHTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("docrender http %d: %s", e.StatusCode, msg)
}

func (e *renderHTTPError) HTTPStatusCode() int { return e.StatusCode }

func (c *client) RenderPDF(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, fmt.Errorf("docrender: HTML body required")
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctxutil.Default(ctx), "POST", c.cfg.BaseURL+"/v1/render/pdf", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if m := observability.Current(); m != nil {
			m.ObserveUpstreamRequest("docrender", "/v1/render/pdf", 0, time.Since(start))
		}
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if m := observability.Current(); m != nil {
		m.ObserveUpstreamRequest("docrender", "/v1/render/pdf", resp.StatusCode, time.Since(start))
	}
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &renderHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out RenderResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("docrender: malformed response: %w", err)
	}
	if strings.TrimSpace(out.PDFURL) == "" {
		return nil, fmt.Errorf("docrender: response missing pdf_url")
	}
	return &out, nil
}
