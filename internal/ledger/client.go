// internal/ledger/client.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-console/internal/models"
)

// Client is the remote ledger API consumed by the command layer.
type Client interface {
	GetAuthenticatedUser(ctx context.Context) (*models.AuthenticatedUser, error)

	ListAppInstallRequests(ctx context.Context) ([]models.AppInstallRequest, error)
	AcceptAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestAccept) (*models.AppInstall, error)
	RejectAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestReject) error
	CancelAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestCancel) error

	ListAppInstalls(ctx context.Context) ([]models.AppInstall, error)
	CancelAppInstall(ctx context.Context, contractID, commandID string, body models.AppInstallCancel) error
	CreateLicense(ctx context.Context, contractID, commandID string, body models.AppInstallCreateLicenseRequest) (*models.AppInstallCreateLicenseResult, error)

	ListLicenses(ctx context.Context) ([]models.License, error)
	RenewLicense(ctx context.Context, contractID, commandID string, body models.RenewRequest) (*models.RenewResponse, error)
	ExpireLicense(ctx context.Context, contractID, commandID string, body models.LicenseExpireRequest) (string, error)
	CompleteLicenseRenewal(ctx context.Context, contractID, commandID string, body models.LicenseRenewalComplete) (*models.LicenseRenewalCompleteResult, error)

	ListLicenseRenewalRequests(ctx context.Context) ([]models.LicenseRenewalRequest, error)
	WithdrawLicenseRenewalRequest(ctx context.Context, contractID, commandID string) error
}

type ClientConfig struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
}

// HTTPClient talks JSON to the ledger backend's REST API.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		userAgent:  cfg.UserAgent,
	}
}

func (c *HTTPClient) GetAuthenticatedUser(ctx context.Context) (*models.AuthenticatedUser, error) {
	var user models.AuthenticatedUser
	if err := c.do(ctx, http.MethodGet, "/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListAppInstallRequests(ctx context.Context) ([]models.AppInstallRequest, error) {
	var requests []models.AppInstallRequest
	if err := c.do(ctx, http.MethodGet, "/app-install-requests", nil, nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *HTTPClient) AcceptAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestAccept) (*models.AppInstall, error) {
	var install models.AppInstall
	if err := c.do(ctx, http.MethodPost, choicePath("/app-install-requests", contractID, "accept"), commandQuery(commandID), body, &install); err != nil {
		return nil, err
	}
	return &install, nil
}

func (c *HTTPClient) RejectAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestReject) error {
	return c.do(ctx, http.MethodPost, choicePath("/app-install-requests", contractID, "reject"), commandQuery(commandID), body, nil)
}

func (c *HTTPClient) CancelAppInstallRequest(ctx context.Context, contractID, commandID string, body models.AppInstallRequestCancel) error {
	return c.do(ctx, http.MethodPost, choicePath("/app-install-requests", contractID, "cancel"), commandQuery(commandID), body, nil)
}

func (c *HTTPClient) ListAppInstalls(ctx context.Context) ([]models.AppInstall, error) {
	var installs []models.AppInstall
	if err := c.do(ctx, http.MethodGet, "/app-installs", nil, nil, &installs); err != nil {
		return nil, err
	}
	return installs, nil
}

func (c *HTTPClient) CancelAppInstall(ctx context.Context, contractID, commandID string, body models.AppInstallCancel) error {
	return c.do(ctx, http.MethodPost, choicePath("/app-installs", contractID, "cancel"), commandQuery(commandID), body, nil)
}

func (c *HTTPClient) CreateLicense(ctx context.Context, contractID, commandID string, body models.AppInstallCreateLicenseRequest) (*models.AppInstallCreateLicenseResult, error) {
	var result models.AppInstallCreateLicenseResult
	if err := c.do(ctx, http.MethodPost, choicePath("/app-installs", contractID, "create-license"), commandQuery(commandID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListLicenses(ctx context.Context) ([]models.License, error) {
	var licenses []models.License
	if err := c.do(ctx, http.MethodGet, "/licenses", nil, nil, &licenses); err != nil {
		return nil, err
	}
	return licenses, nil
}

func (c *HTTPClient) RenewLicense(ctx context.Context, contractID, commandID string, body models.RenewRequest) (*models.RenewResponse, error) {
	var resp models.RenewResponse
	if err := c.do(ctx, http.MethodPost, choicePath("/licenses", contractID, "renew"), commandQuery(commandID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExpireLicense returns the server's confirmation text.
func (c *HTTPClient) ExpireLicense(ctx context.Context, contractID, commandID string, body models.LicenseExpireRequest) (string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, choicePath("/licenses", contractID, "expire"), commandQuery(commandID), body, &raw); err != nil {
		return "", err
	}

	var message string
	if err := json.Unmarshal(raw, &message); err != nil {
		return strings.TrimSpace(string(raw)), nil
	}
	return message, nil
}

func (c *HTTPClient) CompleteLicenseRenewal(ctx context.Context, contractID, commandID string, body models.LicenseRenewalComplete) (*models.LicenseRenewalCompleteResult, error) {
	var result models.LicenseRenewalCompleteResult
	if err := c.do(ctx, http.MethodPost, choicePath("/licenses", contractID, "complete-renewal"), commandQuery(commandID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListLicenseRenewalRequests(ctx context.Context) ([]models.LicenseRenewalRequest, error) {
	var renewals []models.LicenseRenewalRequest
	if err := c.do(ctx, http.MethodGet, "/license-renewal-requests", nil, nil, &renewals); err != nil {
		return nil, err
	}
	return renewals, nil
}

func (c *HTTPClient) WithdrawLicenseRenewalRequest(ctx context.Context, contractID, commandID string) error {
	return c.do(ctx, http.MethodPost, choicePath("/license-renewal-requests", contractID, "withdraw"), commandQuery(commandID), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body interface{}, target interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Milliseconds(),
	}).Debug("Ledger API call")

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, payload)
	}

	if target == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}

	if raw, ok := target.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], payload...)
		return nil
	}

	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{Status: status}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(payload))
	return apiErr
}

func choicePath(collection, contractID, choice string) string {
	return fmt.Sprintf("%s/%s:%s", collection, url.PathEscape(contractID), choice)
}

func commandQuery(commandID string) url.Values {
	return url.Values{"commandId": []string{commandID}}
}
