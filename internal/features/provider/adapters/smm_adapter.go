package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"dropship-reconciler/internal/core/config"
	"dropship-reconciler/internal/core/httpclient"
	"dropship-reconciler/internal/features/reconciliation/domain"
	"dropship-reconciler/internal/features/reconciliation/ports"

	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 512

var _ ports.ProviderClient = (*SMMAdapter)(nil)

// SMMAdapter implements ports.ProviderClient against an SMM panel "v2" API.
// Every call is a single form POST; retries are left to the caller.
type SMMAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the API key and endpoint.
	config config.ProviderConfig
	// limiter paces requests; nil when no rate limit is configured.
	limiter *rate.Limiter
}

// NewSMMAdapter creates a new instance of SMMAdapter.
func NewSMMAdapter(cfg config.ProviderConfig) *SMMAdapter {
	a := &SMMAdapter{
		client: httpclient.NewClient("provider", cfg.Timeout),
		config: cfg,
	}
	if cfg.RateLimit > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return a
}

// GetStatus fetches the status of one provider order.
func (a *SMMAdapter) GetStatus(ctx context.Context, orderID string) (*domain.ProviderStatus, error) {
	var status domain.ProviderStatus
	if err := a.call(ctx, "status", url.Values{"order": {orderID}}, &status); err != nil {
		return nil, fmt.Errorf("status of order %s: %w", orderID, err)
	}
	return &status, nil
}

// GetStatuses fetches several orders in one request. Duplicate IDs are sent once.
func (a *SMMAdapter) GetStatuses(ctx context.Context, orderIDs []string) (map[string]domain.ProviderStatus, error) {
	ids := dedupe(orderIDs)
	if len(ids) == 0 {
		return map[string]domain.ProviderStatus{}, nil
	}

	statuses := make(map[string]domain.ProviderStatus, len(ids))
	if err := a.call(ctx, "status", url.Values{"orders": {strings.Join(ids, ",")}}, &statuses); err != nil {
		return nil, fmt.Errorf("status of %d orders: %w", len(ids), err)
	}
	return statuses, nil
}

// GetBalance fetches the account balance.
func (a *SMMAdapter) GetBalance(ctx context.Context) (*domain.Balance, error) {
	var resp balanceResponse
	if err := a.call(ctx, "balance", url.Values{}, &resp); err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("balance: %w: %s", domain.ErrProviderRejected, resp.Error)
	}

	amount, err := resp.Balance.Float()
	if err != nil {
		return nil, fmt.Errorf("balance: invalid amount %q: %w", resp.Balance, err)
	}
	return &domain.Balance{Amount: amount, Currency: resp.Currency}, nil
}

// CreateOrder places an order and returns the provider order ID.
func (a *SMMAdapter) CreateOrder(ctx context.Context, req domain.PlacementRequest) (string, error) {
	form := url.Values{
		"service":  {req.ServiceNum},
		"link":     {req.Link},
		"quantity": {strconv.Itoa(req.Quantity)},
	}

	var resp addResponse
	if err := a.call(ctx, "add", form, &resp); err != nil {
		return "", fmt.Errorf("add order for %s: %w", req.MarketOrderNum, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("add order for %s: %w: %s", req.MarketOrderNum, domain.ErrProviderRejected, resp.Error)
	}
	if resp.Order == "" {
		return "", fmt.Errorf("add order for %s: response carried no order id", req.MarketOrderNum)
	}
	return string(resp.Order), nil
}

// call posts one action and decodes the JSON answer into out.
func (a *SMMAdapter) call(ctx context.Context, action string, form url.Values, out any) error {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	form.Set("key", a.config.APIKey)
	form.Set("action", action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: provider API returned status %d: %s",
			domain.ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// dedupe drops blank and repeated IDs and sorts the rest for a stable request body.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// internal structs for mapping

// balanceResponse is the answer to action=balance. Panels send balance as a string.
type balanceResponse struct {
	Balance  domain.FlexString `json:"balance"`
	Currency string            `json:"currency"`
	Error    string            `json:"error"`
}

// addResponse is the answer to action=add.
type addResponse struct {
	Order domain.FlexString `json:"order"`
	Error string            `json:"error"`
}
