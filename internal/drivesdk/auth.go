package drivesdk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	epSignIn     = "/auth/signin"
	epVerifyCode = "/auth/verify/trusteddevice/securitycode"
	epTrust      = "/auth/2sv/trust"

	headerSessionToken = "X-Drive-Session-Token"
)

// Session is an authenticated drive session. The deployer consumes it as an
// opaque capability; only the login command cares about the 2FA dance.
type Session struct {
	sdk *DriveSDK

	appleID      string
	sessionToken string
	trustToken   string
	requires2FA  bool
	trusted      bool
}

// Login signs in and installs the session on the client. A previously saved
// trust token (state may be nil) usually skips the interactive verification.
// Login failure is fatal for callers; there is no degraded mode.
func (s *DriveSDK) Login(ctx context.Context, appleID string, state *SessionState) (*Session, error) {
	body := &signInRequest{
		AccountName: appleID,
		RememberMe:  true,
	}
	if state != nil && state.AppleID == appleID && state.TrustToken != "" {
		body.TrustTokens = []string{state.TrustToken}
	}

	var signIn signInResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetSuccessResult(&signIn).
		Post(epSignIn)
	if err := handleAPIError(resp, err, "signin"); err != nil {
		return nil, err
	}

	session := &Session{
		sdk:          s,
		appleID:      appleID,
		sessionToken: signIn.SessionToken,
		requires2FA:  signIn.Requires2FA,
		trusted:      signIn.Trusted,
	}
	if state != nil {
		session.trustToken = state.TrustToken
	}

	s.client.SetCommonHeader(headerSessionToken, signIn.SessionToken)
	s.session = session

	slog.Debug("drive signin", "appleID", appleID, "requires2fa", session.requires2FA, "trusted", session.trusted)
	return session, nil
}

// Requires2FA reports whether the service demands an interactive security
// code before the session is usable.
func (s *Session) Requires2FA() bool { return s.requires2FA }

// Authenticated reports whether the session can issue drive calls.
func (s *Session) Authenticated() bool { return s.sessionToken != "" && !s.requires2FA }

// Validate2FA submits the security code from an approved device.
func (s *Session) Validate2FA(ctx context.Context, code string) error {
	resp, err := s.sdk.client.R().
		SetContext(ctx).
		SetBody(&verifyCodeRequest{SecurityCode: code}).
		Post(epVerifyCode)
	if err := handleAPIError(resp, err, "verify security code"); err != nil {
		return err
	}

	s.requires2FA = false
	return nil
}

// Trust asks the service to trust this session so future logins skip 2FA.
func (s *Session) Trust(ctx context.Context) error {
	var trust trustResponse
	resp, err := s.sdk.client.R().
		SetContext(ctx).
		SetSuccessResult(&trust).
		Get(epTrust)
	if err := handleAPIError(resp, err, "trust session"); err != nil {
		return err
	}

	s.trustToken = trust.TrustToken
	s.trusted = true
	return nil
}

// State returns the persistable part of the session.
func (s *Session) State() *SessionState {
	return &SessionState{
		AppleID:    s.appleID,
		TrustToken: s.trustToken,
	}
}

// SaveState writes the session state to path, creating parent directories.
func SaveState(path string, state *SessionState) error {
	data, err := jsonMarshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadState reads a previously saved session state. A missing file returns
// (nil, nil).
func LoadState(path string) (*SessionState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state SessionState
	if err := jsonUnmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse session state %s: %w", path, err)
	}
	return &state, nil
}
