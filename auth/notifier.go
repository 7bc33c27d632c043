package auth

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
)

// Email is a rendered outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers rendered emails. Transport lives outside this package;
// delivery errors must never fail the request that triggered the send.
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// VerificationEmailSubject is the product copy for the signup email.
const VerificationEmailSubject = "Bienvenido a Directory App - Valida tu cuenta"

// VerificationMailer renders the account verification email and hands it to
// a Notifier.
type VerificationMailer struct {
	engine   *django.Engine
	notifier Notifier
	host     string
}

// NewVerificationMailer builds a mailer rendering the embedded templates.
// host is the externally reachable base URL used in the confirmation link.
func NewVerificationMailer(notifier Notifier, host string) (*VerificationMailer, error) {
	templates, err := fs.Sub(GetTemplatesFS(), "resources/templates")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to scope embedded templates")
	}

	engine := django.NewFileSystem(http.FS(templates), ".html")
	if err := engine.Load(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to load email templates")
	}

	return &VerificationMailer{
		engine:   engine,
		notifier: notifier,
		host:     host,
	}, nil
}

// VerificationURL builds the confirmation link mailed to the user.
func (m *VerificationMailer) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/v1/tokenVerifications?token=%s", m.host, url.QueryEscape(token))
}

// SendVerification renders and dispatches the signup verification email.
func (m *VerificationMailer) SendVerification(ctx context.Context, user *User, token string) error {
	var body bytes.Buffer
	err := m.engine.Render(&body, "verify_email", map[string]any{
		"name": user.FirstName,
		"url":  m.VerificationURL(token),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render verification email")
	}

	return m.notifier.Send(ctx, Email{
		To:      user.Email,
		Subject: VerificationEmailSubject,
		HTML:    body.String(),
	})
}

// LogNotifier writes outbound emails to the logger instead of delivering
// them. It is the default wiring when no transport is configured.
type LogNotifier struct {
	Logger Logger
}

func (n LogNotifier) Send(_ context.Context, email Email) error {
	logger := n.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("outbound email", "to", email.To, "subject", email.Subject, "bytes", len(email.HTML))
	return nil
}
