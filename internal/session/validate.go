package session

import (
	"errors"
	"net/url"
	"strings"

	"github.com/hay-kot/criterio"
)

// ErrMissingVerificationToken is returned when a link carries no token.
var ErrMissingVerificationToken = errors.New("invalid or missing verification token")

func validateLogin(email, password string) error {
	return criterio.ValidateStruct(
		criterio.Run("email", email, required),
		criterio.Run("password", password, required),
	)
}

func validateSignup(fullName, email, password string) error {
	return criterio.ValidateStruct(
		criterio.Run("fullName", fullName, required),
		criterio.Run("email", email, emailAddress),
		criterio.Run("password", password, required),
	)
}

func required(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("is required")
	}
	return nil
}

func emailAddress(v string) error {
	if err := required(v); err != nil {
		return err
	}
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 {
		return errors.New("must be an email address")
	}
	return nil
}

// ExtractVerificationToken returns the token from a verification link's
// "token" query parameter, or s itself when s is not a link.
func ExtractVerificationToken(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrMissingVerificationToken
	}
	if !strings.Contains(s, "://") && !strings.Contains(s, "?") {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", ErrMissingVerificationToken
	}
	token := strings.TrimSpace(u.Query().Get("token"))
	if token == "" {
		return "", ErrMissingVerificationToken
	}
	return token, nil
}
