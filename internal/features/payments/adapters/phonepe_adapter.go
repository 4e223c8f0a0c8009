package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/core/config"
	"storefront-api/internal/core/httpclient"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	"storefront-api/internal/features/payments/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tokenCacheKey = "phonepe:access_token"
	tokenSkew     = 60 * time.Second
	// fallbackTokenLifetime applies when the provider omits expires_at.
	fallbackTokenLifetime = 15 * time.Minute
	maxErrorBody          = 2048
)

var hundred = decimal.NewFromInt(100)

// PhonePeAdapter talks to the PhonePe Checkout v2 API.
type PhonePeAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the credentials and endpoints.
	config config.PhonePeConfig
	// tokens caches the OAuth token across instances when backed by Redis.
	tokens cache.Cache
	// refresh serializes token fetches inside this process.
	refresh sync.Mutex
	now     func() time.Time
}

// NewPhonePeAdapter creates a new PhonePeAdapter. m may be nil.
func NewPhonePeAdapter(cfg config.PhonePeConfig, tokens cache.Cache, m *metrics.Metrics) *PhonePeAdapter {
	return &PhonePeAdapter{
		client: httpclient.NewInstrumentedClient(cfg.Timeout, m),
		config: cfg,
		tokens: tokens,
		now:    time.Now,
	}
}

// AcquireAccessToken returns a cached token or fetches a new one.
func (a *PhonePeAdapter) AcquireAccessToken(ctx context.Context) (*domain.Token, error) {
	if tok := a.cachedToken(ctx); tok != nil {
		return tok, nil
	}

	a.refresh.Lock()
	defer a.refresh.Unlock()

	if tok := a.cachedToken(ctx); tok != nil {
		return tok, nil
	}

	tok, err := a.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tok); err == nil {
		ttl := tok.ExpiresAt.Sub(a.now()) - tokenSkew
		if ttl > 0 {
			if err := a.tokens.Set(ctx, tokenCacheKey, data, ttl); err != nil {
				logger.FromContext(ctx).Warn("Failed to cache PhonePe token", zap.Error(err))
			}
		}
	}
	return tok, nil
}

func (a *PhonePeAdapter) cachedToken(ctx context.Context) *domain.Token {
	data, err := a.tokens.Get(ctx, tokenCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			logger.FromContext(ctx).Warn("Failed to read PhonePe token from cache", zap.Error(err))
		}
		return nil
	}
	var tok domain.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil
	}
	if !tok.Valid(a.now(), tokenSkew) {
		return nil
	}
	return &tok
}

func (a *PhonePeAdapter) fetchToken(ctx context.Context) (*domain.Token, error) {
	form := url.Values{}
	form.Set("client_id", a.config.ClientID)
	form.Set("client_version", a.config.ClientVersion)
	form.Set("client_secret", a.config.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.AuthURL+"/v1/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create token request: %v", domain.ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token request failed: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		a.logRejection(ctx, "token", resp)
		return nil, domain.ErrAuth
	case resp.StatusCode != http.StatusOK:
		a.logRejection(ctx, "token", resp)
		return nil, fmt.Errorf("%w: token endpoint returned status %d", domain.ErrGateway, resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", domain.ErrGateway, err)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response without access_token", domain.ErrGateway)
	}

	expiresAt := a.now().Add(fallbackTokenLifetime)
	if body.ExpiresAt > 0 {
		expiresAt = time.Unix(body.ExpiresAt, 0)
	}
	return &domain.Token{AccessToken: body.AccessToken, ExpiresAt: expiresAt}, nil
}

// Initiate creates a checkout session. amount is in rupees and is sent in paise.
func (a *PhonePeAdapter) Initiate(ctx context.Context, merchantOrderID string, amount decimal.Decimal, redirectURL string) (*domain.Checkout, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrGateway)
	}

	payload := payRequest{
		MerchantOrderID: merchantOrderID,
		Amount:          amount.Mul(hundred).Round(0).IntPart(),
		ExpireAfter:     a.config.ExpireAfter,
		PaymentFlow: paymentFlow{
			Type:         "PG_CHECKOUT",
			MerchantUrls: merchantUrls{RedirectURL: redirectURL},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode pay request: %v", domain.ErrGateway, err)
	}

	resp, err := a.do(ctx, http.MethodPost, a.config.APIURL+"/checkout/v2/pay", raw)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := a.checkStatusCode(ctx, "pay", resp); err != nil {
		return nil, err
	}

	var body payResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode pay response: %v", domain.ErrGateway, err)
	}
	if body.RedirectURL == "" {
		return nil, fmt.Errorf("%w: pay response without redirectUrl", domain.ErrGateway)
	}

	return &domain.Checkout{RedirectURL: body.RedirectURL, ProviderOrderID: body.OrderID}, nil
}

// CheckStatus polls the order status endpoint. A FAILED business state is a
// result, not an error.
func (a *PhonePeAdapter) CheckStatus(ctx context.Context, merchantOrderID string) (*domain.Status, error) {
	endpoint := fmt.Sprintf("%s/checkout/v2/order/%s/status", a.config.APIURL, url.PathEscape(merchantOrderID))

	resp, err := a.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := a.checkStatusCode(ctx, "status", resp); err != nil {
		return nil, err
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode status response: %v", domain.ErrGateway, err)
	}
	if body.State == "" {
		return nil, fmt.Errorf("%w: status response without state", domain.ErrGateway)
	}

	return &domain.Status{
		State:         mapState(body.State),
		TransactionID: body.transactionID(),
	}, nil
}

func (a *PhonePeAdapter) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	tok, err := a.AcquireAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "O-Bearer "+tok.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrGateway, err)
	}
	return resp, nil
}

func (a *PhonePeAdapter) checkStatusCode(ctx context.Context, op string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		if err := a.tokens.Delete(ctx, tokenCacheKey); err != nil {
			logger.FromContext(ctx).Warn("Failed to evict PhonePe token", zap.Error(err))
		}
		a.logRejection(ctx, op, resp)
		return domain.ErrAuth
	default:
		a.logRejection(ctx, op, resp)
		return fmt.Errorf("%w: %s returned status %d", domain.ErrGateway, op, resp.StatusCode)
	}
}

// logRejection keeps the raw provider payload in the logs only.
func (a *PhonePeAdapter) logRejection(ctx context.Context, op string, resp *http.Response) {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	logger.FromContext(ctx).Warn("PhonePe request rejected",
		zap.String("operation", op),
		zap.Int("status_code", resp.StatusCode),
		zap.ByteString("body", raw),
	)
}

func mapState(s string) domain.State {
	switch strings.ToUpper(s) {
	case "COMPLETED":
		return domain.StateCompleted
	case "PENDING":
		return domain.StatePending
	default:
		return domain.StateFailed
	}
}

// internal structs for mapping

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	TokenType   string `json:"token_type"`
}

type payRequest struct {
	MerchantOrderID string      `json:"merchantOrderId"`
	// Amount is in paise.
	Amount      int64       `json:"amount"`
	ExpireAfter int         `json:"expireAfter"`
	PaymentFlow paymentFlow `json:"paymentFlow"`
}

type paymentFlow struct {
	Type         string       `json:"type"`
	MerchantUrls merchantUrls `json:"merchantUrls"`
}

type merchantUrls struct {
	RedirectURL string `json:"redirectUrl"`
}

type payResponse struct {
	OrderID     string `json:"orderId"`
	State       string `json:"state"`
	RedirectURL string `json:"redirectUrl"`
}

type statusResponse struct {
	OrderID        string          `json:"orderId"`
	State          string          `json:"state"`
	TransactionID  string          `json:"transactionId"`
	PaymentDetails []paymentDetail `json:"paymentDetails"`
}

type paymentDetail struct {
	TransactionID string `json:"transactionId"`
	State         string `json:"state"`
}

// transactionID prefers the completed attempt, then any attempt, then the top-level field.
func (s *statusResponse) transactionID() string {
	for i := len(s.PaymentDetails) - 1; i >= 0; i-- {
		if strings.EqualFold(s.PaymentDetails[i].State, "COMPLETED") && s.PaymentDetails[i].TransactionID != "" {
			return s.PaymentDetails[i].TransactionID
		}
	}
	for _, d := range s.PaymentDetails {
		if d.TransactionID != "" {
			return d.TransactionID
		}
	}
	return s.TransactionID
}
