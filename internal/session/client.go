package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"innersignature/internal/domain"
)

// SessionData es el triple {user, token, refreshToken} que devuelven login
// y cambio de compania.
type SessionData struct {
	User         domain.Identity `json:"user"`
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
}

// API define las operaciones remotas que consume la capa de sesion.
type API interface {
	Login(ctx context.Context, email, password string) (SessionData, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	FetchCompanies(ctx context.Context, accessToken string) ([]domain.CompanyMembership, error)
	SwitchCompany(ctx context.Context, accessToken, refreshToken, companyID string) (SessionData, error)
}

// APIError transporta el status HTTP y el message del envelope de error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status=%d", e.Status)
}

// Client implementa API contra el backend por HTTP. Toda respuesta del
// backend viene en el envelope {success, data, message}.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient construye un cliente apuntando al backend de sesiones.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (SessionData, error) {
	body := map[string]string{"email": email, "password": password}
	var data SessionData
	if err := c.post(ctx, "/auth/login", "", body, &data); err != nil {
		return SessionData{}, err
	}
	return data, nil
}

func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	body := map[string]string{}
	if refreshToken != "" {
		body["refreshToken"] = refreshToken
	}
	return c.post(ctx, "/logout", accessToken, body, nil)
}

func (c *Client) FetchCompanies(ctx context.Context, accessToken string) ([]domain.CompanyMembership, error) {
	var data struct {
		Companies []domain.CompanyMembership `json:"companies"`
	}
	if err := c.get(ctx, "/companies", accessToken, &data); err != nil {
		return nil, err
	}
	return data.Companies, nil
}

func (c *Client) SwitchCompany(ctx context.Context, accessToken, refreshToken, companyID string) (SessionData, error) {
	body := map[string]string{"companyId": companyID}
	if refreshToken != "" {
		body["refreshToken"] = refreshToken
	}
	var data SessionData
	if err := c.post(ctx, "/companies/switch", accessToken, body, &data); err != nil {
		return SessionData{}, err
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path, accessToken string, body, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, accessToken, out)
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, accessToken, out)
}

func (c *Client) do(req *http.Request, accessToken string, out any) error {
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("unmarshal response data: %w", err)
		}
	}
	return nil
}
