package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"booklister/internal/pkg/config"
	"booklister/internal/pkg/errs"
)

// TokenProvider supplies bearer tokens for upstream calls. Token
// acquisition and storage live behind this boundary.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
	// Refresh replaces the cached token after an auth failure and
	// returns the new one.
	Refresh(ctx context.Context) (string, error)
}

// StaticTokenProvider serves the token configured in the environment.
// Refresh exchanges the configured refresh token when OAuth credentials
// are present; otherwise it re-serves the static token.
type StaticTokenProvider struct {
	cfg        config.EbayConfig
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewStaticTokenProvider(cfg config.EbayConfig) *StaticTokenProvider {
	return &StaticTokenProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		token:      cfg.AccessToken,
	}
}

func (p *StaticTokenProvider) AccessToken(_ context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.token == "" {
		return "", errs.Mark(errs.New("no access token configured"), errs.ErrNoValidToken)
	}
	return p.token, nil
}

func (p *StaticTokenProvider) Refresh(ctx context.Context) (string, error) {
	if p.cfg.RefreshToken == "" || p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		// No OAuth credentials; nothing to exchange.
		return p.AccessToken(ctx)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.cfg.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL()+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Wrap(err, "failed to build token refresh request")
	}
	basic := base64.StdEncoding.EncodeToString([]byte(p.cfg.ClientID + ":" + p.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", errs.Wrap(err, "token refresh request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(err, "failed to read token refresh response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.Mark(&APIError{StatusCode: resp.StatusCode, Message: firstErrorMessage(body), Body: body}, errs.ErrNoValidToken)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errs.Wrap(err, "failed to decode token refresh response")
	}
	if parsed.AccessToken == "" {
		return "", errs.Mark(errs.New("token refresh returned no access token"), errs.ErrNoValidToken)
	}

	p.mu.Lock()
	p.token = parsed.AccessToken
	p.mu.Unlock()
	return parsed.AccessToken, nil
}
