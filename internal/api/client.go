package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/faults"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/metrics"
)

// TokenSource fornece o bearer token corrente e o refresh silencioso.
// O session manager é injetado aqui em vez de viver como estado global;
// isso permite múltiplas sessões isoladas em teste.
type TokenSource interface {
	// Token retorna o bearer corrente, vazio quando não autenticado.
	Token() string
	// Refresh tenta renovar o token. Implementações devem garantir um
	// único refresh em voo por vez.
	Refresh(ctx context.Context) error
	// Invalidate limpa a sessão local sem chamada de rede. Usado quando
	// o retry pós-refresh ainda recebe 401.
	Invalidate()
}

// Client fala com a API externa do WiseBet. Toda chamada anexa o bearer
// quando presente; um único 401 dispara exatamente um refresh seguido de
// exatamente um retry. Nunca há segundo retry.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	log    *zap.Logger
	tokens TokenSource
}

func New(base string, timeout time.Duration, log *zap.Logger, tokens TokenSource) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout},
		log:     log,
		tokens:  tokens,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}

	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}

	res, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return faults.Network(err)
	}

	if res.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		origErr := decodeError(res)

		if rerr := c.tokens.Refresh(ctx); rerr != nil {
			// refresh falhou: a sessão local já foi limpa pelo TokenSource;
			// o erro original da requisição é o que volta pro chamador
			c.log.Debug("refresh after 401 failed", zap.String("path", path), zap.Error(rerr))
			return origErr
		}

		res, err = c.send(ctx, method, path, payload, c.tokens.Token())
		if err != nil {
			return faults.Network(err)
		}
		if res.StatusCode == http.StatusUnauthorized {
			// o retry também levou 401: derruba a sessão e não repete de novo
			c.tokens.Invalidate()
			return decodeError(res)
		}
	}

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

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	res, err := c.HTTP.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(path, "error").Inc()
		return nil, err
	}
	metrics.APIRequests.WithLabelValues(path, strconv.Itoa(res.StatusCode)).Inc()
	return res, nil
}

// decodeError consome o corpo e mapeia a resposta na taxonomia local.
// O backend responde ora {"error": ...} ora {"message": ...}.
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

	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &faults.AuthError{Message: msg}
	default:
		return faults.Network(fmt.Errorf("http %d: %s", res.StatusCode, msg))
	}
}
