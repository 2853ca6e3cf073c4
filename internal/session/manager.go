package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/radieske/wisebet-storefront-poc/internal/auth"
	authdto "github.com/radieske/wisebet-storefront-poc/internal/auth/dto"
	"github.com/radieske/wisebet-storefront-poc/internal/faults"
	"github.com/radieske/wisebet-storefront-poc/internal/prefs"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/metrics"
	capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"
)

type State int

const (
	StateUnauthenticated State = iota
	StatePendingTwoFactor
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StatePendingTwoFactor:
		return "pending-2fa"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

type LoginStatus int

const (
	LoginAuthenticated LoginStatus = iota
	LoginTwoFactorRequired
	LoginVerificationRequired
)

// LoginResult é um registro etiquetado: User só é preenchido quando
// Status == LoginAuthenticated. Estados ilegais ficam irrepresentáveis.
type LoginResult struct {
	Status LoginStatus
	User   *capi.User
}

type Credentials struct {
	Username      string
	Password      string
	TwoFactorCode string
}

type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Enable2FA       bool
}

type RegisterResult struct {
	RequiresVerification bool
	TwoFactorQR          string
}

// Manager é dono do ciclo de vida da autenticação: token, perfil e a
// máquina de estados Unauthenticated -> PendingTwoFactor -> Authenticated.
// Invariante: token e user são setados e limpos juntos.
type Manager struct {
	auth  *auth.Client
	prefs *prefs.Store
	log   *zap.Logger

	mu    sync.Mutex
	state State
	token string
	user  *capi.User

	// serializa refreshes concorrentes: N chamadas com 401 simultâneo
	// compartilham um único refresh em voo
	sf singleflight.Group
}

func NewManager(authClient *auth.Client, store *prefs.Store, log *zap.Logger) *Manager {
	m := &Manager{
		auth:  authClient,
		prefs: store,
		log:   log,
		state: StateUnauthenticated,
	}
	// token da sessão anterior, se houver; o Bootstrap confirma ou
	// descarta via refresh antes de considerar a sessão autenticada
	if store != nil {
		m.token = store.Token()
	}
	return m
}

// Bootstrap resolve o estado inicial com um refresh silencioso, antes do
// primeiro render. Falha aqui é só um começo não autenticado.
func (m *Manager) Bootstrap(ctx context.Context) bool {
	if err := m.Refresh(ctx); err != nil {
		m.log.Info("starting unauthenticated", zap.Error(err))
		return false
	}
	return true
}

// Login autentica contra a API. Com requires2FA a sessão continua sem
// token nem user e o chamador precisa repetir com o código.
func (m *Manager) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if err := validateLogin(creds); err != nil {
		return LoginResult{}, err
	}

	res, err := m.auth.Login(ctx, authdto.LoginRequest{
		Username:      creds.Username,
		Password:      creds.Password,
		TwoFactorCode: creds.TwoFactorCode,
	})
	if err != nil {
		return LoginResult{}, err
	}

	if res.Requires2FA {
		m.mu.Lock()
		m.state = StatePendingTwoFactor
		m.token = ""
		m.user = nil
		m.mu.Unlock()
		return LoginResult{Status: LoginTwoFactorRequired}, nil
	}

	if res.RequiresVerification {
		return LoginResult{Status: LoginVerificationRequired}, nil
	}

	m.setSession(res.AccessToken, res.User)
	m.log.Info("logged in", zap.String("username", res.User.Username))
	return LoginResult{Status: LoginAuthenticated, User: res.User}, nil
}

// Register cria a conta mas não autentica: o servidor pode exigir
// verificação de e-mail antes do primeiro login.
func (m *Manager) Register(ctx context.Context, reg Registration) (RegisterResult, error) {
	if err := validateRegistration(reg); err != nil {
		return RegisterResult{}, err
	}

	res, err := m.auth.Register(ctx, authdto.RegisterRequest{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  reg.Password,
		Enable2FA: reg.Enable2FA,
	})
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{
		RequiresVerification: res.RequiresVerification,
		TwoFactorQR:          res.TwoFactorQR,
	}, nil
}

// Refresh renova o token via cookie, sem interação do usuário. Na falha
// a sessão é limpa e o chamador recebe ErrSessionExpired.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.sf.Do("refresh", func() (any, error) {
		res, err := m.auth.RefreshToken(ctx)
		if err != nil {
			metrics.TokenRefreshes.WithLabelValues("failed").Inc()
			m.clear()
			m.log.Debug("token refresh failed", zap.Error(err))
			return nil, faults.ErrSessionExpired
		}

		metrics.TokenRefreshes.WithLabelValues("ok").Inc()
		m.setSession(res.AccessToken, res.User)
		return nil, nil
	})
	return err
}

// Logout avisa o servidor (best-effort) e limpa o estado local
// incondicionalmente. Logout nunca falha do lado de cá.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.auth.Logout(ctx, m.Token()); err != nil {
		// sessão local é limpa mesmo assim
		m.log.Warn("logout request failed", zap.Error(err))
	}
	m.clear()
	m.log.Info("logged out")
}

// ForgotPassword repassa o pedido; fire-and-forget como no original.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return &faults.ValidationError{Field: "email", Message: "required"}
	}
	return m.auth.ForgotPassword(ctx, email)
}

func (m *Manager) VerifyEmail(ctx context.Context, token string) (string, error) {
	return m.auth.VerifyEmail(ctx, token)
}

// Token implementa api.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Invalidate implementa api.TokenSource: limpa a sessão sem rede,
// usado quando o retry pós-refresh ainda volta 401.
func (m *Manager) Invalidate() {
	m.clear()
}

func (m *Manager) User() *capi.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.user != nil
}

func (m *Manager) setSession(token string, user *capi.User) {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.state = StateAuthenticated
	m.mu.Unlock()

	if m.prefs != nil {
		m.prefs.SaveToken(token)
	}
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if m.prefs != nil {
		m.prefs.ClearToken()
	}
}
