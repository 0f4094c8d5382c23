package admin

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// MintToken issues a bearer token for the given username. The token is the
// base64 encoding of "username:unix-timestamp". The timestamp records when
// the token was minted; verification does not check it, so tokens stay
// valid until the admin user is removed.
func MintToken(username string, issuedAt time.Time) string {
	raw := username + ":" + strconv.FormatInt(issuedAt.Unix(), 10)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// ParseToken decodes a bearer token back into its username and mint time.
func ParseToken(token string) (string, time.Time, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}

	username, ts, found := strings.Cut(string(raw), ":")
	if !found || username == "" {
		return "", time.Time{}, ErrInvalidToken
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}

	return username, time.Unix(unix, 0), nil
}
