package storefront

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/bets"
	"github.com/radieske/wisebet-storefront-poc/internal/faults"
	"github.com/radieske/wisebet-storefront-poc/internal/markets"
	"github.com/radieske/wisebet-storefront-poc/internal/prefs"
	"github.com/radieske/wisebet-storefront-poc/internal/session"
	"github.com/radieske/wisebet-storefront-poc/internal/slip"
	capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"
)

// App é a casca do storefront: um loop de comandos em texto puro sobre
// os containers de estado. Apresentação fica aqui; regra de negócio não.
type App struct {
	session *session.Manager
	slip    *slip.Slip
	markets *markets.Client
	bets    *bets.Client
	prefs   *prefs.Store
	log     *zap.Logger

	// última listagem de mercados, pra resolver "pick <n>"
	listed []capi.MatchData

	// credenciais aguardando o código 2FA
	pending *session.Credentials

	out io.Writer
}

func New(sess *session.Manager, betSlip *slip.Slip, marketCli *markets.Client, betCli *bets.Client, store *prefs.Store, log *zap.Logger) *App {
	return &App{
		session: sess,
		slip:    betSlip,
		markets: marketCli,
		bets:    betCli,
		prefs:   store,
		log:     log,
	}
}

func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	a.out = out
	a.printf("wisebet storefront (theme: %s) — 'help' lista os comandos", a.prefs.Theme())
	a.prompt()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			a.prompt()
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		a.dispatch(ctx, fields[0], fields[1:])
		a.prompt()
	}
	return sc.Err()
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		a.help()
	case "markets":
		a.showMarkets(ctx)
	case "teams":
		a.showTeams(ctx)
	case "pick":
		a.pick(args)
	case "remove":
		a.remove(args)
	case "slip":
		a.showSlip()
	case "stake":
		a.setStake(args)
	case "submit":
		a.submit(ctx)
	case "login":
		a.login(ctx, args)
	case "2fa":
		a.twoFactor(ctx, args)
	case "register":
		a.register(ctx, args)
	case "forgot":
		a.forgot(ctx, args)
	case "verify":
		a.verify(ctx, args)
	case "history":
		a.history(ctx)
	case "whoami":
		a.whoami()
	case "theme":
		a.theme(args)
	case "logout":
		a.session.Logout(ctx)
		a.slip.Clear()
		a.printf("logged out")
	default:
		a.printf("unknown command %q, try 'help'", cmd)
	}
}

func (a *App) help() {
	a.printf(`markets                         lista as partidas em destaque
teams                           lista os times
pick <n> <win|draw|lose>        alterna a seleção da partida n
remove <n>                      remove a seleção n do slip
slip                            mostra o slip
stake <valor>                   define o valor da aposta
submit                          envia a múltipla
login <usuario> <senha>         autentica
2fa <codigo>                    completa o login com 2FA
register <usuario> <email> <senha> <confirmacao> [2fa]
forgot <email>                  pede reset de senha
verify <token>                  confirma o e-mail
history                         histórico de apostas
whoami                          perfil e saldo
theme [dark|light]              tema
logout | quit`)
}

func (a *App) showMarkets(ctx context.Context) {
	list, err := a.markets.Matches(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	a.listed = list
	for i, m := range list {
		a.printf("%2d. [%s] %s — %s vs %s (%s)  win %.2f / draw %.2f / lose %.2f",
			i+1, m.Sport, m.Competition, m.HomeTeam, m.AwayTeam, m.MatchTime,
			m.Odds.Win, m.Odds.Draw, m.Odds.Lose)
	}
	if len(list) == 0 {
		a.printf("no matches available")
	}
}

func (a *App) showTeams(ctx context.Context) {
	list, err := a.markets.Teams(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	for _, t := range list {
		a.printf("- %s (%s)", t.Name, t.Sport)
	}
}

func (a *App) pick(args []string) {
	if len(args) != 2 {
		a.printf("usage: pick <n> <win|draw|lose>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.listed) {
		a.printf("run 'markets' first and pick a listed match number")
		return
	}
	outcome := capi.Outcome(args[1])
	if !outcome.Valid() {
		a.printf("outcome must be win, draw or lose")
		return
	}
	a.slip.Toggle(a.listed[n-1], outcome)
	a.showSlip()
}

func (a *App) remove(args []string) {
	sels := a.slip.Selections()
	if len(args) != 1 {
		a.printf("usage: remove <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(sels) {
		a.printf("no selection %s on the slip", args[0])
		return
	}
	a.slip.Remove(sels[n-1].MatchID)
	a.showSlip()
}

func (a *App) showSlip() {
	sels := a.slip.Selections()
	if len(sels) == 0 {
		a.printf("no bets added yet")
		return
	}
	for i, sel := range sels {
		a.printf("%2d. %s vs %s — %s @ %.2f", i+1, sel.HomeTeam, sel.AwayTeam, sel.Outcome, sel.Odds)
	}
	a.printf("stake %.2f | total odds %.2f | potential payout $%s",
		a.slip.Stake(), a.slip.AggregateOdds(), a.slip.FormatPayout())
}

func (a *App) setStake(args []string) {
	if len(args) != 1 {
		a.printf("usage: stake <valor>")
		return
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		a.printf("invalid amount %q", args[0])
		return
	}
	if err := a.slip.SetStake(v); err != nil {
		a.fail(err)
		return
	}
	a.printf("stake set to %.2f (potential payout $%s)", v, a.slip.FormatPayout())
}

func (a *App) submit(ctx context.Context) {
	placed, err := a.slip.Submit(ctx)
	if errors.Is(err, faults.ErrNotAuthenticated) {
		// redireciona pra autenticação em vez de chamar o endpoint
		a.printf("please login first")
		return
	}
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("bet placed: %s (%s)", placed.BetID, placed.Status)
}

func (a *App) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		a.printf("usage: login <usuario> <senha>")
		return
	}
	creds := session.Credentials{Username: args[0], Password: args[1]}
	res, err := a.session.Login(ctx, creds)
	if err != nil {
		a.fail(err)
		return
	}
	switch res.Status {
	case session.LoginTwoFactorRequired:
		a.pending = &creds
		a.printf("two-factor code required, use '2fa <codigo>'")
	case session.LoginVerificationRequired:
		a.printf("verify your email before logging in")
	default:
		a.pending = nil
		a.printf("welcome back, %s (balance $%.2f)", res.User.Username, res.User.Balance)
	}
}

func (a *App) twoFactor(ctx context.Context, args []string) {
	if a.pending == nil {
		a.printf("no login waiting for a code")
		return
	}
	if len(args) != 1 {
		a.printf("usage: 2fa <codigo>")
		return
	}
	creds := *a.pending
	creds.TwoFactorCode = args[0]
	res, err := a.session.Login(ctx, creds)
	if err != nil {
		a.fail(err)
		return
	}
	if res.Status == session.LoginAuthenticated {
		a.pending = nil
		a.printf("welcome back, %s (balance $%.2f)", res.User.Username, res.User.Balance)
	} else {
		a.printf("login still pending")
	}
}

func (a *App) register(ctx context.Context, args []string) {
	if len(args) < 4 {
		a.printf("usage: register <usuario> <email> <senha> <confirmacao> [2fa]")
		return
	}
	reg := session.Registration{
		Username:        args[0],
		Email:           args[1],
		Password:        args[2],
		ConfirmPassword: args[3],
		Enable2FA:       len(args) > 4 && args[4] == "2fa",
	}
	res, err := a.session.Register(ctx, reg)
	if err != nil {
		a.fail(err)
		return
	}
	if res.TwoFactorQR != "" {
		a.printf("scan this QR in your authenticator: %s", res.TwoFactorQR)
	}
	if res.RequiresVerification {
		a.printf("account created, check your email to verify it")
	} else {
		a.printf("account created, you can login now")
	}
}

func (a *App) forgot(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.printf("usage: forgot <email>")
		return
	}
	if err := a.session.ForgotPassword(ctx, args[0]); err != nil {
		a.fail(err)
		return
	}
	a.printf("if the address exists, a reset email is on the way")
}

func (a *App) verify(ctx context.Context, args []string) {
	if len(args) != 1 {
		a.printf("usage: verify <token>")
		return
	}
	msg, err := a.session.VerifyEmail(ctx, args[0])
	if err != nil {
		a.fail(err)
		return
	}
	a.printf("%s", msg)
}

func (a *App) history(ctx context.Context) {
	if !a.session.Authenticated() {
		a.printf("please login to view your bet history")
		return
	}
	list, err := a.bets.History(ctx)
	if err != nil {
		a.fail(err)
		return
	}
	if len(list) == 0 {
		a.printf("no bets found in your history")
		return
	}
	for _, b := range list {
		a.printf("%s — %d selections, stake $%.2f @ %.2f → $%.2f [%s]",
			b.CreatedAt, len(b.IndividualBets), b.TotalAmount, b.EstimatedTotalOdds,
			b.TotalAmount*b.EstimatedTotalOdds, strings.ReplaceAll(b.Status, "_", " "))
	}
}

func (a *App) whoami() {
	u := a.session.User()
	if u == nil {
		a.printf("not logged in (%s)", a.session.State())
		return
	}
	a.printf("%s <%s> — balance $%.2f, verified=%v, 2fa=%v",
		u.Username, u.Email, u.Balance, u.IsVerified, u.Has2FAEnabled)
}

func (a *App) theme(args []string) {
	if len(args) == 1 {
		a.prefs.SaveTheme(args[0])
	}
	a.printf("theme: %s", a.prefs.Theme())
}

func (a *App) fail(err error) {
	var v *faults.ValidationError
	var ae *faults.AuthError
	switch {
	case errors.As(err, &v):
		a.printf("invalid %s: %s", v.Field, v.Message)
	case errors.As(err, &ae):
		a.printf("auth failed: %s", ae.Message)
	case errors.Is(err, faults.ErrSessionExpired):
		a.printf("session expired, please login again")
	case errors.Is(err, faults.ErrEmptySlip), errors.Is(err, faults.ErrZeroStake),
		errors.Is(err, faults.ErrSubmitInFlight):
		a.printf("%s", err)
	default:
		a.printf("request failed: %v", err)
		a.log.Warn("request failed", zap.Error(err))
	}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *App) prompt() {
	fmt.Fprint(a.out, "> ")
}
