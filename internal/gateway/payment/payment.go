package payment

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pizzashack/internal/domain"
)

// Client charges cards through a Stripe-style HTTPS form endpoint.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Process charges the basket total. Amounts are converted to cents at this
// boundary only; full precision is kept everywhere else. Transport timeouts
// come back as retryable upstream errors, gateway declines as final ones.
func (c *Client) Process(ctx context.Context, amount decimal.Decimal, basketID string) error {
	form := url.Values{}
	form.Set("amount", amount.Mul(decimal.NewFromInt(100)).Round(0).String())
	form.Set("currency", "usd")
	form.Set("description", "basket "+basketID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &domain.UpstreamError{Gateway: "payment", Retryable: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &domain.UpstreamError{Gateway: "payment", Status: resp.StatusCode}
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
