package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"go.uber.org/zap"

	authdto "github.com/radieske/wisebet-storefront-poc/internal/auth/dto"
	"github.com/radieske/wisebet-storefront-poc/internal/faults"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/metrics"
)

// Client fala com os endpoints /auth/* da API externa. Não guarda estado
// de sessão; isso é papel do session manager.
//
// O cookie jar carrega o cookie de refresh que o servidor seta no login,
// então refresh e logout saem "credentialed" como no navegador.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	log *zap.Logger
}

func New(base string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout, Jar: jar},
		log:     log,
	}, nil
}

func (c *Client) Login(ctx context.Context, req authdto.LoginRequest) (*authdto.LoginResponse, error) {
	var out authdto.LoginResponse
	if err := c.post(ctx, "/auth/login", req, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req authdto.RegisterRequest) (*authdto.RegisterResponse, error) {
	var out authdto.RegisterResponse
	if err := c.post(ctx, "/auth/register", req, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken renova o access token usando só o cookie de refresh.
func (c *Client) RefreshToken(ctx context.Context) (*authdto.RefreshResponse, error) {
	var out authdto.RefreshResponse
	if err := c.post(ctx, "/auth/refresh-token", nil, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout avisa o servidor; o bearer vai junto quando disponível.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/auth/logout", nil, nil, token)
}

// ForgotPassword é fire-and-forget: o servidor não confirma entrega.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/forgot-password", authdto.ForgotPasswordRequest{Email: email}, nil, "")
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/verify-email/"+token, nil)
	if err != nil {
		return "", err
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues("/auth/verify-email", "error").Inc()
		return "", faults.Network(err)
	}
	metrics.APIRequests.WithLabelValues("/auth/verify-email", strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode >= 300 {
		return "", decodeError(res)
	}

	defer res.Body.Close()
	var out authdto.VerifyEmailResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", faults.Network(fmt.Errorf("decode response: %w", err))
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any, bearer string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(path, "error").Inc()
		return faults.Network(err)
	}
	metrics.APIRequests.WithLabelValues(path, strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode >= 300 {
		return decodeError(res)
	}

	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return faults.Network(fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// decodeError mapeia respostas de erro dos endpoints de auth. Esse
// backend devolve credencial inválida como 400 ou 401, com a mensagem em
// {"error"} ou {"message"}.
func decodeError(res *http.Response) error {
	defer res.Body.Close()

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	_ = json.Unmarshal(b, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("http %d", res.StatusCode)
	}

	if res.StatusCode >= 400 && res.StatusCode < 500 {
		return &faults.AuthError{Message: msg}
	}
	return faults.Network(fmt.Errorf("http %d: %s", res.StatusCode, msg))
}
