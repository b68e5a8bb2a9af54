package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
)

// ResetStep is where a password reset stands.
//
//	Start --Request ok--> RequestSent --Submit--> Submitted --> Succeeded
//	                           ^                      |
//	                           +------ Rejected <-----+
//
// A rejected reset may be submitted again with corrected input.
type ResetStep int

const (
	ResetStart ResetStep = iota
	ResetRequestSent
	ResetSubmitted
	ResetSucceeded
	ResetRejected
)

func (s ResetStep) String() string {
	switch s {
	case ResetStart:
		return "start"
	case ResetRequestSent:
		return "request-sent"
	case ResetSubmitted:
		return "code-and-password-submitted"
	case ResetSucceeded:
		return "success"
	case ResetRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RejectReason explains a rejected reset.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonInvalidCode
	ReasonEmailNotFound
	ReasonPasswordPolicy
	ReasonOther
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidCode:
		return "invalid or expired code"
	case ReasonEmailNotFound:
		return "email not found"
	case ReasonPasswordPolicy:
		return "password does not meet the policy"
	default:
		return "other"
	}
}

var ErrResetNotRequested = errors.New("no reset code has been requested")

// ResetError is returned by PasswordReset when a step is rejected.
type ResetError struct {
	Reason RejectReason
	Err    error
}

func (e *ResetError) Error() string { return e.Err.Error() }
func (e *ResetError) Unwrap() error { return e.Err }

// PasswordReset drives the two-step reset: request a code for an email, then
// submit the code with a new password. Submit runs the local checks before
// any network call.
type PasswordReset struct {
	auth AuthService

	mu     sync.Mutex
	email  string
	step   ResetStep
	reason RejectReason
}

func NewPasswordReset(auth AuthService) *PasswordReset {
	return &PasswordReset{auth: auth}
}

// Step returns the current step and, when rejected, the reason.
func (p *PasswordReset) Step() (ResetStep, RejectReason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step, p.reason
}

// Email is the address the code was requested for.
func (p *PasswordReset) Email() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.email
}

// Request asks the server to mail a reset code to email. It may be called
// again at any point to restart with a fresh code.
func (p *PasswordReset) Request(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := p.auth.RequestResetCode(ctx, email); err != nil {
		return &ResetError{Reason: classifyReset(err), Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.email = email
	p.step = ResetRequestSent
	p.reason = ReasonNone
	return nil
}

// Submit completes the reset.
func (p *PasswordReset) Submit(ctx context.Context, code, newPassword, confirmPassword string) error {
	p.mu.Lock()
	if p.step != ResetRequestSent && p.step != ResetRejected {
		p.mu.Unlock()
		return ErrResetNotRequested
	}
	email := p.email
	p.mu.Unlock()

	if blank(code) {
		return p.reject(ReasonInvalidCode, invalid("code", "reset code is required"))
	}
	if newPassword != confirmPassword {
		return p.reject(ReasonPasswordPolicy, invalid("confirmPassword", "passwords do not match"))
	}
	if err := checkPassword("newPassword", newPassword); err != nil {
		return p.reject(ReasonPasswordPolicy, err)
	}

	p.setStep(ResetSubmitted)

	if err := p.auth.ResetPassword(ctx, code, newPassword, email); err != nil {
		return p.reject(classifyReset(err), err)
	}

	p.setStep(ResetSucceeded)
	return nil
}

func (p *PasswordReset) setStep(s ResetStep) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step = s
	p.reason = ReasonNone
}

func (p *PasswordReset) reject(reason RejectReason, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step = ResetRejected
	p.reason = reason
	return &ResetError{Reason: reason, Err: err}
}

// classifyReset maps a failure onto a reject reason. The backend reports
// reset failures as free text in English or Portuguese.
func classifyReset(err error) RejectReason {
	var verr *ValidationError
	if errors.As(err, &verr) {
		switch verr.Field {
		case "code":
			return ReasonInvalidCode
		case "email":
			return ReasonEmailNotFound
		case "newPassword", "confirmPassword", "password":
			return ReasonPasswordPolicy
		}
		return ReasonOther
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return ReasonOther
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(msg, "código") || strings.Contains(msg, "codigo") || strings.Contains(msg, "code"):
		return ReasonInvalidCode
	case strings.Contains(msg, "senha") || strings.Contains(msg, "password"):
		return ReasonPasswordPolicy
	case strings.Contains(msg, "email") || apiErr.Status == http.StatusNotFound:
		return ReasonEmailNotFound
	default:
		return ReasonOther
	}
}
