package email

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pizzashack/internal/domain"
)

// Client sends order confirmations through a Mailgun-style HTTPS endpoint.
type Client struct {
	baseURL string
	domain  string
	apiKey  string
	sender  string
	httpc   *http.Client
}

func NewClient(baseURL, mailDomain, apiKey, sender string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		domain:  mailDomain,
		apiKey:  apiKey,
		sender:  sender,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Send emails the checkout confirmation for one basket.
func (c *Client) Send(ctx context.Context, basketID, recipient, message string) error {
	form := url.Values{}
	form.Set("from", c.sender)
	form.Set("to", recipient)
	form.Set("subject", "Order confirmation "+basketID)
	form.Set("text", message)

	endpoint := c.baseURL + "/v3/" + c.domain + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &domain.UpstreamError{Gateway: "email", Retryable: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &domain.UpstreamError{Gateway: "email", Status: resp.StatusCode}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
