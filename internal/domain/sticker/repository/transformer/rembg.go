package transformer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const rembgTimeout = 90 * time.Second

// httpDoer is satisfied by *fasthttp.Client
type httpDoer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// RembgClient calls a rembg HTTP server to cut out image backgrounds
type RembgClient struct {
	url    string
	client httpDoer
	logger zerolog.Logger
}

// NewRembgClient creates a new background-removal client
func NewRembgClient(url string, logger zerolog.Logger) *RembgClient {
	return &RembgClient{
		url: url,
		client: &fasthttp.Client{
			Name:                "sticker-bot",
			MaxResponseBodySize: 20 * 1024 * 1024,
		},
		logger: logger,
	}
}

// RemoveBackground uploads src with the given model and stores the PNG result at dst
func (c *RembgClient) RemoveBackground(ctx context.Context, src, dst, model string) error {
	body, contentType, err := rembgForm(src, model)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.SetBody(body)

	deadline := time.Now().Add(rembgTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("rembg request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("rembg request: status %d: %s", resp.StatusCode(), bytes.TrimSpace(resp.Body()))
	}

	if err := os.WriteFile(dst, resp.Body(), 0o644); err != nil {
		return fmt.Errorf("failed to write rembg result: %w", err)
	}

	c.logger.Debug().
		Str("model", model).
		Str("dst", dst).
		Dur("took", time.Since(start)).
		Msg("Background removed")

	return nil
}

func rembgForm(src, model string) ([]byte, string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", model); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", filepath.Base(src))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
