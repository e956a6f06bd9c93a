package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shashiranjanraj/campusmart/pkg/http"
)

// HTTPCaptchaVerifier checks tokens against the captcha provider's
// siteverify endpoint.
type HTTPCaptchaVerifier struct {
	VerifyURL string
	Secret    string
}

func (v *HTTPCaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	endpoint := fmt.Sprintf("%s?secret=%s&response=%s",
		v.VerifyURL, url.QueryEscape(v.Secret), url.QueryEscape(token))

	resp, err := http.Post(endpoint).
		Timeout(10 * time.Second).
		Retry(2, time.Second).
		WithContext(ctx).
		Send()
	if err != nil {
		return false, fmt.Errorf("captcha: verify: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return false, fmt.Errorf("captcha: %w", err)
	}

	var payload struct {
		Success bool `json:"success"`
	}
	if err := resp.JSON(&payload); err != nil {
		return false, fmt.Errorf("captcha: decode response: %w", err)
	}
	return payload.Success, nil
}
