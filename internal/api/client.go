package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nsai-uio/IMF-AITool/internal/logger"
)

const (
	uploadPath = "/upload"
	chatPath   = "/chat"
	statusPath = "/status/"
)

// Client talks to the document question-answering backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	uploadURL string
	chatURL   string
	log       *logger.Logger
}

// ClientConfig holds the configuration for the client. A zero Timeout means
// requests never time out on their own.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(config ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", config.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		base:      base,
		http:      httpClient,
		uploadURL: base.JoinPath(uploadPath).String(),
		chatURL:   base.JoinPath(chatPath).String(),
		log:       logger.NewLogger("api client"),
	}, nil
}

// Upload sends file as the multipart part "file" with the given filename.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: create form file: %w", ErrTransport, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTransport, filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish multipart body: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: create upload request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Infof("uploading %s (%d bytes)", filename, body.Len())

	var result UploadResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat asks question about the previously uploaded filename.
func (c *Client) Chat(ctx context.Context, question, filename string) (*ChatResponse, error) {
	requestData, err := json.Marshal(ChatRequest{Question: question, Filename: filename})
	if err != nil {
		return nil, fmt.Errorf("%w: serialize request: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(requestData))
	if err != nil {
		return nil, fmt.Errorf("%w: create chat request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("Input question: ", question)
	c.log.Info("Input filename: ", filename)

	var result ChatResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TaskStatus fetches the progress of an asynchronous upload.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	requestURL := c.base.JoinPath(statusPath, url.PathEscape(taskID)).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create status request: %w", ErrTransport, err)
	}

	var result TaskStatus
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs req and decodes the JSON body into out on a 2xx status. Any
// other status becomes a *BackendError when the body is a JSON error object.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Errorf("Failed to send %s %s: %s", req.Method, req.URL.Path, err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Errorf("Failed to close response body: %s", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			c.log.Errorf("Failed to decode error response (%s): %s", resp.Status, err)
			return fmt.Errorf("%w: decode error response (%s): %w", ErrTransport, resp.Status, err)
		}
		message := errResp.Error
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		c.log.Warnf("%s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, message)
		return &BackendError{StatusCode: resp.StatusCode, Message: message}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.log.Errorf("Failed to decode response: %s", err)
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}
