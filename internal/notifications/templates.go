package notifications

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mail is a rendered subject and body.
type Mail struct {
	Subject string
	Body    string
}

// Links builds the client URLs embedded in emails.
type Links struct {
	BaseURL  string
	ResetTTL time.Duration
}

// VerifyURL is the client page that submits a verification token.
func (l Links) VerifyURL(accountRef, token string) string {
	return l.build("/verify-email", accountRef, token)
}

// ResetURL is the client page that submits a new password.
func (l Links) ResetURL(accountRef, token string) string {
	return l.build("/reset-password", accountRef, token)
}

func (l Links) build(path, accountRef, token string) string {
	q := url.Values{}
	q.Set("uid", accountRef)
	q.Set("token", token)
	return strings.TrimRight(l.BaseURL, "/") + path + "?" + q.Encode()
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

// VerificationMail asks the user to confirm their address.
func VerificationMail(name, link string) Mail {
	return Mail{
		Subject: "Verify your email address",
		Body: fmt.Sprintf("%s\n\nThanks for signing up. Use the link below to verify your email address:\n\n%s\n",
			greeting(name), link),
	}
}

// VerifiedMail confirms a successful verification.
func VerifiedMail(name string) Mail {
	return Mail{
		Subject: "Your email address is verified",
		Body: fmt.Sprintf("%s\n\nYour email address has been verified. You can now log in.\n",
			greeting(name)),
	}
}

// ResetMail carries a password reset link valid for ttl.
func ResetMail(name, link string, ttl time.Duration) Mail {
	return Mail{
		Subject: "Reset your password",
		Body: fmt.Sprintf("%s\n\nUse the link below to reset your password. It is valid for %d minutes.\n\n%s\n\nIf you did not request a reset you can ignore this email.\n",
			greeting(name), int(ttl.Minutes()), link),
	}
}

// PasswordChangedMail confirms a completed reset.
func PasswordChangedMail(name string) Mail {
	return Mail{
		Subject: "Your password was changed",
		Body: fmt.Sprintf("%s\n\nYour password has been changed. If this was not you, reset it immediately.\n",
			greeting(name)),
	}
}
