package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/galionhq/nexus/internal/adapter"
	"github.com/galionhq/nexus/models"
)

const (
	qrPollInterval   = 2 * time.Second
	statusClearDelay = 2 * time.Second
)

type screen int

const (
	screenWelcome screen = iota
	screenLogin
	screenRegister
	screenTwoFAPrompt
	screenQRLogin
	screenQRApprove
	screenHome
	screenPlans
	screenTwoFASetup
)

// appModel is the root bubbletea model. It owns every screen's sub-model,
// the signed-in session, and the error/confirm overlays; async work runs in
// tea.Cmd closures that report back with the typed messages in messages.go.
type appModel struct {
	ctx    context.Context
	server adapter.ServerAdapter

	currentScreen screen
	deviceName    string

	welcome     welcomeModel
	login       loginModel
	register    registerModel
	twoFAPrompt twoFAPromptModel
	qrLogin     qrLoginModel
	qrApprove   qrApproveModel
	home        homeModel
	plans       plansModel
	twoFASetup  twoFASetupModel

	// pair is the session credential set. The access token also lives
	// inside the adapter; the refresh token is needed here for transparent
	// session refresh and for logout.
	pair models.TokenPair

	// refreshTried guards the refresh-and-retry path so an expired refresh
	// token cannot loop.
	refreshTried bool

	err           error
	showError     bool
	errorOverlay  errorOverlayModel
	showConfirm   bool
	confirm       confirmModel
	pendingCancel bool
}

func newAppModel(ctx context.Context, server adapter.ServerAdapter, version, deviceName string) appModel {
	return appModel{
		ctx:           ctx,
		server:        server,
		currentScreen: screenWelcome,
		deviceName:    deviceName,
		welcome:       newWelcomeModel(version),
		login:         newLoginModel(),
		register:      newRegisterModel(),
		twoFAPrompt:   newTwoFAPromptModel(),
		qrLogin:       newQRLoginModel(),
		qrApprove:     newQRApproveModel(),
		home:          newHomeModel(),
		plans:         newPlansModel(),
		twoFASetup:    newTwoFASetupModel(),
	}
}

func (m appModel) Init() tea.Cmd {
	if m.currentScreen == screenQRLogin {
		return tea.Batch(m.qrLogin.spinner.Tick, m.cmdQRCreate())
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showError {
			if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
				m.showError = false
				m.errorOverlay.message = ""
			}
			return m, nil
		}
		if m.showConfirm {
			if key.Matches(msg, keys.yes) {
				m.showConfirm = false
				if m.pendingCancel {
					m.pendingCancel = false
					return m, m.cmdCancelSubscription()
				}
				return m, nil
			}
			if key.Matches(msg, keys.no) || key.Matches(msg, keys.esc) {
				m.showConfirm = false
				m.pendingCancel = false
			}
			return m, nil
		}

	case loginDoneMsg:
		m.login.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		if msg.result.TwoFARequired {
			m.twoFAPrompt = newTwoFAPromptModel()
			m.twoFAPrompt.ticket = msg.result.TwoFATicket
			m.currentScreen = screenTwoFAPrompt
			return m, nil
		}
		if msg.result.TokenPair != nil {
			m.pair = *msg.result.TokenPair
		}
		return m.enterHome()

	case twoFADoneMsg:
		m.twoFAPrompt.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.pair = msg.pair
		return m.enterHome()

	case registerDoneMsg:
		m.register.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.login = newLoginModel()
		m.login.inputs[0].SetValue(msg.user.Email)
		m.login = focusNext(m.login)
		m.login.status = "Account created — sign in to continue"
		m.currentScreen = screenLogin
		return m, nil

	case logoutDoneMsg:
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
		}
		return m.endSession("Signed out"), nil

	case sessionRefreshedMsg:
		if msg.err != nil {
			m = m.endSession("")
			m.showErrorf("Your session has expired — sign in again")
			return m, nil
		}
		m.pair = msg.pair
		return m, m.cmdLoadHome()

	case homeLoadedMsg:
		m.home.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, adapter.ErrUnauthorized) {
				if m.pair.RefreshToken != "" && !m.refreshTried {
					m.refreshTried = true
					m.home.loading = true
					return m, m.cmdRefreshSession()
				}
				m = m.endSession("")
				m.showErrorf("Your session has expired — sign in again")
				return m, nil
			}
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			m.currentScreen = screenWelcome
			return m, nil
		}
		m.refreshTried = false
		m.home.me = msg.me
		m.home.twoFA = msg.twoFA
		return m, nil

	case plansLoadedMsg:
		m.plans.loading = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.plans.items = msg.plans
		if m.plans.idx >= len(m.plans.items) {
			m.plans.idx = len(m.plans.items) - 1
		}
		if m.plans.idx < 0 {
			m.plans.idx = 0
		}
		return m, nil

	case subscriptionChangedMsg:
		m.plans.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		view := msg.view
		m.home.me.Subscription = &view
		m.plans.currentCode = view.Plan.Code
		m.home.status = "Subscription updated"
		m.plans.status = "Subscription updated"
		return m, cmdClearStatus()

	case qrCreatedMsg:
		m.qrLogin.loading = false
		if msg.err != nil {
			m.qrLogin.expired = true
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.qrLogin.sessionID = msg.created.SessionID
		m.qrLogin.secret = msg.created.Secret
		m.qrLogin.qrArt = qrAsciiArt(msg.created.QRContent)
		m.qrLogin.expiresAt = time.Now().Add(time.Duration(msg.created.ExpiresIn) * time.Second)
		m.qrLogin.polling = true
		return m, tea.Batch(m.qrLogin.spinner.Tick, cmdQRPollTick())

	case qrPollTickMsg:
		if m.currentScreen != screenQRLogin || !m.qrLogin.polling {
			return m, nil
		}
		return m, m.cmdQRPoll()

	case qrPolledMsg:
		if m.currentScreen != screenQRLogin || !m.qrLogin.polling {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, adapter.ErrNotFound) {
				m.qrLogin.polling = false
				m.qrLogin.expired = true
				return m, nil
			}
			// Transient failures keep the loop alive until the session TTL
			// runs out server-side.
			return m, cmdQRPollTick()
		}
		switch msg.result.State {
		case models.QRStateClaimed:
			m.qrLogin.claimed = true
			return m, cmdQRPollTick()
		case models.QRStateApproved:
			m.qrLogin.polling = false
			if msg.result.Tokens != nil {
				m.pair = *msg.result.Tokens
			}
			return m.enterHome()
		case models.QRStateDenied:
			m.qrLogin.polling = false
			m.qrLogin.denied = true
			return m, nil
		default:
			return m, cmdQRPollTick()
		}

	case qrClaimedMsg:
		m.qrApprove.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.qrApprove.claimed = true
		m.qrApprove.info = msg.info
		return m, nil

	case qrResolvedMsg:
		m.qrApprove.resolving = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.currentScreen = screenHome
		if msg.approved {
			m.home.status = "Device approved"
		} else {
			m.home.status = "Device denied"
		}
		return m, cmdClearStatus()

	case twoFASetupMsg:
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			m.currentScreen = screenHome
			return m, nil
		}
		m.twoFASetup.stage = twoFAStageConfirm
		m.twoFASetup.setup = msg.setup
		m.twoFASetup.qrArt = qrAsciiArt(msg.setup.OTPAuthURL)
		return m, nil

	case twoFAActivatedMsg:
		m.twoFASetup.submitting = false
		if msg.err != nil {
			m.showErrorf(humanizeServerUnavailableError(msg.err))
			return m, nil
		}
		m.twoFASetup.stage = twoFAStageCodes
		m.twoFASetup.codes = msg.activated.BackupCodes
		m.home.twoFA.Enabled = msg.activated.Enabled
		m.home.twoFA.BackupCodesRemaining = len(msg.activated.BackupCodes)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.home.status = "Copied!"
		m.twoFASetup.status = "Copied!"
		return m, cmdClearStatus()

	case clearStatusMsg:
		m.home.status = ""
		m.plans.status = ""
		m.twoFASetup.status = ""
		return m, nil

	case tea.WindowSizeMsg:
		return m, nil
	}

	switch m.currentScreen {
	case screenWelcome:
		return m.updateWelcome(msg)
	case screenLogin:
		return m.updateLogin(msg)
	case screenRegister:
		return m.updateRegister(msg)
	case screenTwoFAPrompt:
		return m.updateTwoFAPrompt(msg)
	case screenQRLogin:
		return m.updateQRLogin(msg)
	case screenQRApprove:
		return m.updateQRApprove(msg)
	case screenHome:
		return m.updateHome(msg)
	case screenPlans:
		return m.updatePlans(msg)
	case screenTwoFASetup:
		return m.updateTwoFASetup(msg)
	}

	return m, nil
}

func (m appModel) View() string {
	var body string
	switch m.currentScreen {
	case screenWelcome:
		body = m.welcome.View()
	case screenLogin:
		body = m.login.View()
	case screenRegister:
		body = m.register.View()
	case screenTwoFAPrompt:
		body = m.twoFAPrompt.View()
	case screenQRLogin:
		body = m.qrLogin.View()
	case screenQRApprove:
		body = m.qrApprove.View()
	case screenHome:
		body = m.home.View()
	case screenPlans:
		body = m.plans.View()
	case screenTwoFASetup:
		body = m.twoFASetup.View()
	}

	if m.showConfirm {
		body += "\n\n" + m.confirm.View()
	}
	if m.showError {
		body += "\n\n" + m.errorOverlay.View()
	}

	return appStyle.Render(body)
}

func (m *appModel) showErrorf(message string) {
	m.showError = true
	m.errorOverlay.message = message
}

func (m appModel) signedIn() bool {
	return m.server.Token() != ""
}

// enterHome switches to the account screen and reloads it from the server.
func (m appModel) enterHome() (tea.Model, tea.Cmd) {
	m.home = newHomeModel()
	m.currentScreen = screenHome
	return m, tea.Batch(m.home.spinner.Tick, m.cmdLoadHome())
}

// endSession drops all credentials and returns to the welcome screen.
func (m appModel) endSession(status string) appModel {
	m.server.SetToken("")
	m.pair = models.TokenPair{}
	m.refreshTried = false
	version := m.welcome.version
	m.welcome = newWelcomeModel(version)
	m.welcome.status = status
	m.currentScreen = screenWelcome
	return m
}

func (m appModel) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.up):
		if m.welcome.idx > 0 {
			m.welcome.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.welcome.idx < len(m.welcome.items)-1 {
			m.welcome.idx++
		}
	case key.Matches(keyMsg, keys.enter):
		switch m.welcome.idx {
		case 0:
			m.login = newLoginModel()
			m.currentScreen = screenLogin
		case 1:
			m.qrLogin = m.qrLogin.reset()
			m.currentScreen = screenQRLogin
			return m, tea.Batch(m.qrLogin.spinner.Tick, m.cmdQRCreate())
		case 2:
			m.register = newRegisterModel()
			m.currentScreen = screenRegister
		case 3:
			m.plans = newPlansModel()
			m.currentScreen = screenPlans
			return m, tea.Batch(m.plans.spinner.Tick, m.cmdLoadPlans())
		}
	case key.Matches(keyMsg, keys.quit):
		m.err = ErrUserQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.forceQuit):
			m.err = ErrUserQuit
			return m, tea.Quit
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenWelcome
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			m.login = focusNext(m.login)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.login = focusPrev(m.login)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			email := strings.TrimSpace(m.login.inputs[0].Value())
			pass := m.login.inputs[1].Value()
			if email == "" || pass == "" {
				m.showErrorf("Email and password are required")
				return m, nil
			}
			m.login.submitting = true
			return m, m.cmdLogin(models.LoginRequest{Email: email, Password: pass})
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m appModel) updateRegister(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.forceQuit):
			m.err = ErrUserQuit
			return m, tea.Quit
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenWelcome
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			m.register = focusNextRegister(m.register)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.register = focusPrevRegister(m.register)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			name := strings.TrimSpace(m.register.inputs[0].Value())
			email := strings.TrimSpace(m.register.inputs[1].Value())
			pass := m.register.inputs[2].Value()
			repeat := m.register.inputs[3].Value()
			if name == "" || email == "" || pass == "" {
				m.showErrorf("Name, email and password are required")
				return m, nil
			}
			if pass != repeat {
				m.showErrorf("Passwords do not match")
				return m, nil
			}
			if len(pass) < 10 {
				m.showErrorf("The password must be at least 10 characters long")
				return m, nil
			}
			m.register.submitting = true
			return m, m.cmdRegister(models.RegisterRequest{Name: name, Email: email, Password: pass})
		}
	}

	var cmd tea.Cmd
	m.register.inputs[m.register.focus], cmd = m.register.inputs[m.register.focus].Update(msg)
	return m, cmd
}

func (m appModel) updateTwoFAPrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.forceQuit):
			m.err = ErrUserQuit
			return m, tea.Quit
		case key.Matches(keyMsg, keys.esc):
			m.login = newLoginModel()
			m.currentScreen = screenLogin
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			code := strings.TrimSpace(m.twoFAPrompt.input.Value())
			if code == "" {
				m.showErrorf("A verification code is required")
				return m, nil
			}
			m.twoFAPrompt.submitting = true
			return m, m.cmdLoginTwoFA(m.twoFAPrompt.ticket, code)
		}
	}

	var cmd tea.Cmd
	m.twoFAPrompt.input, cmd = m.twoFAPrompt.input.Update(msg)
	return m, cmd
}

func (m appModel) updateQRLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.esc):
			m.qrLogin.polling = false
			m.currentScreen = screenWelcome
		case key.Matches(msg, keys.refresh):
			m.qrLogin = m.qrLogin.reset()
			return m, tea.Batch(m.qrLogin.spinner.Tick, m.cmdQRCreate())
		case key.Matches(msg, keys.quit):
			m.err = ErrUserQuit
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.qrLogin.loading || m.qrLogin.polling {
			var cmd tea.Cmd
			m.qrLogin.spinner, cmd = m.qrLogin.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m appModel) updateQRApprove(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		if m.qrApprove.claimed {
			switch {
			case key.Matches(keyMsg, keys.yes):
				if m.qrApprove.resolving {
					return m, nil
				}
				m.qrApprove.resolving = true
				return m, m.cmdQRResolve(m.qrApprove.sessionID, true)
			case key.Matches(keyMsg, keys.no):
				if m.qrApprove.resolving {
					return m, nil
				}
				m.qrApprove.resolving = true
				return m, m.cmdQRResolve(m.qrApprove.sessionID, false)
			case key.Matches(keyMsg, keys.esc):
				m.currentScreen = screenHome
			case key.Matches(keyMsg, keys.quit):
				m.err = ErrUserQuit
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(keyMsg, keys.forceQuit):
			m.err = ErrUserQuit
			return m, tea.Quit
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenHome
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			sessionID, scanToken, err := parseQRContent(m.qrApprove.input.Value())
			if err != nil {
				m.showErrorf(err.Error())
				return m, nil
			}
			m.qrApprove.sessionID = sessionID
			m.qrApprove.submitting = true
			return m, m.cmdQRClaim(sessionID, scanToken)
		}
	}

	var cmd tea.Cmd
	m.qrApprove.input, cmd = m.qrApprove.input.Update(msg)
	return m, cmd
}

func (m appModel) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.plans):
			m.plans = newPlansModel()
			if sub := m.home.me.Subscription; sub != nil {
				m.plans.currentCode = sub.Plan.Code
			}
			m.currentScreen = screenPlans
			return m, tea.Batch(m.plans.spinner.Tick, m.cmdLoadPlans())
		case key.Matches(msg, keys.twoFA):
			if m.home.twoFA.Enabled {
				m.showErrorf("Two-factor authentication is already enabled on this account")
				return m, nil
			}
			m.twoFASetup = newTwoFASetupModel()
			m.currentScreen = screenTwoFASetup
			return m, tea.Batch(m.twoFASetup.spinner.Tick, m.cmdTwoFASetup())
		case key.Matches(msg, keys.approve):
			m.qrApprove = newQRApproveModel()
			m.currentScreen = screenQRApprove
			return m, nil
		case key.Matches(msg, keys.copyItem):
			if m.pair.AccessToken == "" {
				return m, nil
			}
			return m, cmdCopyToClipboard(m.pair.AccessToken)
		case key.Matches(msg, keys.cancelSub):
			sub := m.home.me.Subscription
			if sub == nil || !sub.Live() {
				m.showErrorf("There is no active subscription to cancel")
				return m, nil
			}
			if sub.CancelAtPeriodEnd {
				m.showErrorf("The subscription is already set to lapse at the period end")
				return m, nil
			}
			m.showConfirm = true
			m.pendingCancel = true
			m.confirm.message = fmt.Sprintf("Cancel the %s plan at the end of the period?", sub.Plan.Name)
			return m, nil
		case key.Matches(msg, keys.resumeSub):
			sub := m.home.me.Subscription
			if sub == nil || !sub.CancelAtPeriodEnd {
				m.showErrorf("The subscription is not scheduled to cancel")
				return m, nil
			}
			return m, m.cmdResumeSubscription()
		case key.Matches(msg, keys.logout):
			return m, m.cmdLogout()
		case key.Matches(msg, keys.quit):
			m.err = ErrUserQuit
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.home.loading {
			var cmd tea.Cmd
			m.home.spinner, cmd = m.home.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m appModel) updatePlans(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.up):
			if m.plans.idx > 0 {
				m.plans.idx--
			}
		case key.Matches(msg, keys.down):
			if m.plans.idx < len(m.plans.items)-1 {
				m.plans.idx++
			}
		case key.Matches(msg, keys.esc):
			if m.signedIn() {
				return m.enterHome()
			}
			m.currentScreen = screenWelcome
		case key.Matches(msg, keys.enter):
			plan, ok := m.plans.selected()
			if !ok || m.plans.submitting {
				return m, nil
			}
			if !m.signedIn() {
				m.showErrorf("Sign in to subscribe to a plan")
				return m, nil
			}
			if plan.Code == m.plans.currentCode {
				m.showErrorf("This is already your plan")
				return m, nil
			}
			m.plans.submitting = true
			if sub := m.home.me.Subscription; sub != nil && sub.Live() {
				return m, m.cmdChangePlan(plan.Code)
			}
			return m, m.cmdSubscribe(plan.Code)
		case key.Matches(msg, keys.quit):
			m.err = ErrUserQuit
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.plans.loading {
			var cmd tea.Cmd
			m.plans.spinner, cmd = m.plans.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m appModel) updateTwoFASetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.twoFASetup.stage {
		case twoFAStageLoading:
			switch {
			case key.Matches(msg, keys.esc):
				m.currentScreen = screenHome
			case key.Matches(msg, keys.quit):
				m.err = ErrUserQuit
				return m, tea.Quit
			}
			return m, nil

		case twoFAStageCodes:
			switch {
			case key.Matches(msg, keys.copyItem):
				return m, cmdCopyToClipboard(strings.Join(m.twoFASetup.codes, "\n"))
			case key.Matches(msg, keys.enter), key.Matches(msg, keys.esc):
				return m.enterHome()
			case key.Matches(msg, keys.quit):
				m.err = ErrUserQuit
				return m, tea.Quit
			}
			return m, nil

		default:
			switch {
			case key.Matches(msg, keys.forceQuit):
				m.err = ErrUserQuit
				return m, tea.Quit
			case key.Matches(msg, keys.esc):
				m.currentScreen = screenHome
				return m, nil
			case key.Matches(msg, keys.copyItem):
				return m, cmdCopyToClipboard(m.twoFASetup.setup.Secret)
			case key.Matches(msg, keys.enter):
				code := strings.TrimSpace(m.twoFASetup.input.Value())
				if code == "" {
					m.showErrorf("Enter the 6-digit code from your authenticator app")
					return m, nil
				}
				m.twoFASetup.submitting = true
				return m, m.cmdTwoFAActivate(code)
			}

			var cmd tea.Cmd
			m.twoFASetup.input, cmd = m.twoFASetup.input.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		if m.twoFASetup.stage == twoFAStageLoading {
			var cmd tea.Cmd
			m.twoFASetup.spinner, cmd = m.twoFASetup.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m appModel) cmdLogin(req models.LoginRequest) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		result, err := server.Login(ctx, req)
		return loginDoneMsg{result: result, err: err}
	}
}

func (m appModel) cmdRegister(req models.RegisterRequest) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		user, err := server.Register(ctx, req)
		return registerDoneMsg{user: user, err: err}
	}
}

func (m appModel) cmdLoginTwoFA(ticket, code string) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		pair, err := server.LoginTwoFA(ctx, ticket, code)
		return twoFADoneMsg{pair: pair, err: err}
	}
}

func (m appModel) cmdRefreshSession() tea.Cmd {
	ctx := m.ctx
	server := m.server
	refreshToken := m.pair.RefreshToken
	return func() tea.Msg {
		pair, err := server.Refresh(ctx, refreshToken)
		return sessionRefreshedMsg{pair: pair, err: err}
	}
}

func (m appModel) cmdLogout() tea.Cmd {
	ctx := m.ctx
	server := m.server
	refreshToken := m.pair.RefreshToken
	return func() tea.Msg {
		err := server.Logout(ctx, refreshToken)
		return logoutDoneMsg{err: err}
	}
}

func (m appModel) cmdLoadHome() tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		me, err := server.Me(ctx)
		if err != nil {
			return homeLoadedMsg{err: err}
		}
		status, err := server.TwoFAStatus(ctx)
		if err != nil {
			return homeLoadedMsg{err: err}
		}
		return homeLoadedMsg{me: me, twoFA: status}
	}
}

func (m appModel) cmdLoadPlans() tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		plans, err := server.ListPlans(ctx)
		return plansLoadedMsg{plans: plans, err: err}
	}
}

func (m appModel) cmdSubscribe(planCode string) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		view, err := server.Subscribe(ctx, planCode)
		return subscriptionChangedMsg{view: view, err: err}
	}
}

func (m appModel) cmdChangePlan(planCode string) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		view, err := server.ChangePlan(ctx, planCode)
		return subscriptionChangedMsg{view: view, err: err}
	}
}

func (m appModel) cmdCancelSubscription() tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		view, err := server.CancelSubscription(ctx, false)
		return subscriptionChangedMsg{view: view, err: err}
	}
}

func (m appModel) cmdResumeSubscription() tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		view, err := server.ResumeSubscription(ctx)
		return subscriptionChangedMsg{view: view, err: err}
	}
}

func (m appModel) cmdQRCreate() tea.Cmd {
	ctx := m.ctx
	server := m.server
	deviceName := m.deviceName
	return func() tea.Msg {
		created, err := server.QRCreate(ctx, deviceName)
		return qrCreatedMsg{created: created, err: err}
	}
}

func (m appModel) cmdQRPoll() tea.Cmd {
	ctx := m.ctx
	server := m.server
	sessionID := m.qrLogin.sessionID
	secret := m.qrLogin.secret
	return func() tea.Msg {
		result, err := server.QRPoll(ctx, sessionID, secret)
		return qrPolledMsg{result: result, err: err}
	}
}

func (m appModel) cmdQRClaim(sessionID, scanToken string) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		info, err := server.QRClaim(ctx, sessionID, scanToken)
		return qrClaimedMsg{info: info, err: err}
	}
}

func (m appModel) cmdQRResolve(sessionID string, approve bool) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		var err error
		if approve {
			err = server.QRApprove(ctx, sessionID)
		} else {
			err = server.QRDeny(ctx, sessionID)
		}
		return qrResolvedMsg{approved: approve, err: err}
	}
}

func (m appModel) cmdTwoFASetup() tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		setup, err := server.TwoFASetup(ctx)
		return twoFASetupMsg{setup: setup, err: err}
	}
}

func (m appModel) cmdTwoFAActivate(code string) tea.Cmd {
	ctx := m.ctx
	server := m.server
	return func() tea.Msg {
		activated, err := server.TwoFAActivate(ctx, code)
		return twoFAActivatedMsg{activated: activated, err: err}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return copiedMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(statusClearDelay, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func cmdQRPollTick() tea.Cmd {
	return tea.Tick(qrPollInterval, func(time.Time) tea.Msg {
		return qrPollTickMsg{}
	})
}

func focusNext(m loginModel) loginModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func focusPrev(m loginModel) loginModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func focusNextRegister(m registerModel) registerModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func focusPrevRegister(m registerModel) registerModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}
