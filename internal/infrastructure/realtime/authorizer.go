package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"teamline/pkg/errors"
)

// Authorizer signs channel subscriptions. A grant proves that the holder
// passed the membership check for one (socket, channel) pair; the hub
// re-verifies the signature before binding the socket, so the auth endpoint
// stays the single access-control boundary for the realtime layer.
type Authorizer struct {
	appKey string
	secret []byte
}

func NewAuthorizer(appKey, secret string) *Authorizer {
	return &Authorizer{appKey: appKey, secret: []byte(secret)}
}

type Grant struct {
	Auth string `json:"auth"`
}

// Authorize checks that callerUserID participates in the channel and, if so,
// returns a signed grant for this socket. Callers must already hold a valid
// session; an empty caller id is treated as no session at all.
func (a *Authorizer) Authorize(socketID, channel, callerUserID string) (*Grant, error) {
	if callerUserID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}
	if socketID == "" || channel == "" {
		return nil, errors.BadRequest("Missing socket_id or channel_name", nil)
	}

	if _, _, err := ParseChannel(channel); err != nil {
		return nil, err
	}
	if !IsParticipant(channel, callerUserID) {
		return nil, errors.Forbidden("Not a participant of this channel", nil)
	}

	return &Grant{Auth: a.appKey + ":" + a.signature(socketID, channel)}, nil
}

// Verify checks a grant string produced by Authorize for the same socket and
// channel. Comparison is constant-time.
func (a *Authorizer) Verify(socketID, channel, auth string) bool {
	expected := a.appKey + ":" + a.signature(socketID, channel)
	return hmac.Equal([]byte(expected), []byte(auth))
}

func (a *Authorizer) signature(socketID, channel string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(socketID + ":" + channel))
	return hex.EncodeToString(mac.Sum(nil))
}
