package email

import (
	"fmt"
	"html"

	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// WelcomeMailer greets newly created accounts. It satisfies
// oauth.WelcomeNotifier; delivery failures are logged, never propagated.
type WelcomeMailer struct {
	Sender  Sender
	AppName string
}

func NewWelcomeMailer(s Sender, appName string) *WelcomeMailer {
	if appName == "" {
		appName = "demoapp"
	}
	return &WelcomeMailer{Sender: s, AppName: appName}
}

func (w *WelcomeMailer) SendWelcome(to, name string) {
	if name == "" {
		name = "there"
	}
	subject := fmt.Sprintf("Welcome to %s", w.AppName)
	text := fmt.Sprintf("Hi %s,\n\nYour %s account is ready. You can sign in with your social account at any time.\n", name, w.AppName)
	htmlBody := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your <strong>%s</strong> account is ready. You can sign in with your social account at any time.</p>",
		html.EscapeString(name), html.EscapeString(w.AppName),
	)

	if err := w.Sender.Send(to, subject, htmlBody, text); err != nil {
		logger.L().Warn("welcome email not delivered",
			logger.Component("email.welcome"),
			logger.Email(to),
			logger.Err(err),
		)
	}
}
