package tui

import (
	"github.com/galionhq/nexus/models"
)

type loginDoneMsg struct {
	result models.LoginResponse
	err    error
}

type twoFADoneMsg struct {
	pair models.TokenPair
	err  error
}

type registerDoneMsg struct {
	user models.User
	err  error
}

type logoutDoneMsg struct {
	err error
}

type sessionRefreshedMsg struct {
	pair models.TokenPair
	err  error
}

type homeLoadedMsg struct {
	me    models.MeResponse
	twoFA models.TwoFAStatus
	err   error
}

type plansLoadedMsg struct {
	plans []models.Plan
	err   error
}

type subscriptionChangedMsg struct {
	view models.SubscriptionView
	err  error
}

type qrCreatedMsg struct {
	created models.QRCreated
	err     error
}

type qrPollTickMsg struct{}

type qrPolledMsg struct {
	result models.QRPollResult
	err    error
}

type qrClaimedMsg struct {
	info models.QRSessionInfo
	err  error
}

type qrResolvedMsg struct {
	approved bool
	err      error
}

type twoFASetupMsg struct {
	setup models.TwoFASetup
	err   error
}

type twoFAActivatedMsg struct {
	activated models.ActivateResponse
	err       error
}

type copiedMsg struct {
	err error
}

type clearStatusMsg struct{}
