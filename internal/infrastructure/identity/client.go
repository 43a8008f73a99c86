package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/domain/ledger"
	"github.com/hamkkebu/transaction-service/internal/infrastructure/config"
)

// Client calls the identity service over HTTP to enrich thin user
// events and answer existence checks. All calls run behind a circuit
// breaker; when the circuit is open or a call fails, the client falls
// back to "temporarily unknown" (nil user / false) instead of failing
// the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an identity client from configuration
func NewClient(cfg config.IdentityConfig, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: NewCircuitBreaker("identity-service", cfg.BreakerFailures, cfg.BreakerCooldown, logger),
		logger:  logger,
	}
}

// userResponse is the identity service's user representation
type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Nickname  string `json:"nickname"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

// existsResponse is the identity service's existence check result
type existsResponse struct {
	Exists bool `json:"exists"`
}

// GetUser fetches a user's profile. Returns (nil, nil) when the user
// does not exist upstream, and also when the dependency is unavailable;
// callers must treat nil as "temporarily unknown", not as proof of
// absence.
func (c *Client) GetUser(ctx context.Context, userID int64) (*ledger.SyncedUser, error) {
	if !c.breaker.Allow() {
		c.logger.Warn("identity lookup skipped, circuit open",
			zap.Int64("user_id", userID))
		return nil, nil
	}

	url := fmt.Sprintf("%s/internal/users/%d", c.baseURL, userID)
	resp, err := c.get(ctx, url)
	if err != nil {
		c.breaker.RecordFailure()
		c.logger.Warn("identity lookup failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var user userResponse
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			c.breaker.RecordFailure()
			c.logger.Warn("identity response undecodable",
				zap.Int64("user_id", userID),
				zap.Error(err))
			return nil, nil
		}
		c.breaker.RecordSuccess()
		return ledger.NewSyncedUser(user.ID, user.Username, user.Email,
			user.FirstName, user.LastName, user.Nickname, user.Role, user.Active), nil
	case http.StatusNotFound:
		// A definitive answer, the dependency is healthy
		c.breaker.RecordSuccess()
		return nil, nil
	default:
		c.breaker.RecordFailure()
		c.logger.Warn("identity service returned unexpected status",
			zap.Int64("user_id", userID),
			zap.Int("status", resp.StatusCode))
		return nil, nil
	}
}

// UserExists reports whether the user exists upstream. Falls back to
// false when the dependency is unavailable.
func (c *Client) UserExists(ctx context.Context, userID int64) (bool, error) {
	if !c.breaker.Allow() {
		c.logger.Warn("identity existence check skipped, circuit open",
			zap.Int64("user_id", userID))
		return false, nil
	}

	url := fmt.Sprintf("%s/internal/users/%d/exists", c.baseURL, userID)
	resp, err := c.get(ctx, url)
	if err != nil {
		c.breaker.RecordFailure()
		c.logger.Warn("identity existence check failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.breaker.RecordFailure()
		c.logger.Warn("identity service returned unexpected status",
			zap.Int64("user_id", userID),
			zap.Int("status", resp.StatusCode))
		return false, nil
	}

	var result existsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.breaker.RecordFailure()
		return false, nil
	}
	c.breaker.RecordSuccess()
	return result.Exists, nil
}

// Breaker exposes the circuit breaker state for health reporting
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// Ensure Client implements the domain port
var _ ledger.UserDirectory = (*Client)(nil)
