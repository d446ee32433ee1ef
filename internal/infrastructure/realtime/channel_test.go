package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamline/pkg/errors"
)

func TestChannelNameForIsSymmetric(t *testing.T) {
	ab, err := ChannelNameFor("alice", "bob")
	require.NoError(t, err)
	ba, err := ChannelNameFor("bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, "private-chat-alice-bob", ab)
}

func TestChannelNameForSelfChat(t *testing.T) {
	// Degenerate but permitted.
	name, err := ChannelNameFor("alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, "private-chat-alice-alice", name)
}

func TestChannelNameForEmptyID(t *testing.T) {
	_, err := ChannelNameFor("", "bob")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = ChannelNameFor("alice", "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestChannelNameForRejectsSeparatorInID(t *testing.T) {
	// An id carrying the separator would produce a name no one can ever
	// parse or subscribe to; it must fail at send time instead.
	_, err := ChannelNameFor("u-1", "u2")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = ChannelNameFor("u1", "u-2")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestParseChannelRoundTrip(t *testing.T) {
	name, err := ChannelNameFor("u2", "u1")
	require.NoError(t, err)

	a, b, err := ParseChannel(name)
	require.NoError(t, err)
	assert.Equal(t, "u1", a)
	assert.Equal(t, "u2", b)
}

func TestParseChannelRejectsMalformed(t *testing.T) {
	for _, channel := range []string{
		"chat-u1-u2",
		"private-chat-",
		"private-chat-u1",
		"private-chat--u2",
		"presence-chat-u1-u2",
	} {
		_, _, err := ParseChannel(channel)
		assert.Error(t, err, "channel %q should not parse", channel)
	}
}

func TestAuthorizeGrantsParticipantsOnly(t *testing.T) {
	authorizer := NewAuthorizer("app-key", "app-secret")
	channel := "private-chat-u1-u2"

	for _, caller := range []string{"u1", "u2"} {
		grant, err := authorizer.Authorize("socket-1", channel, caller)
		require.NoError(t, err, "participant %s must be granted", caller)
		assert.NotEmpty(t, grant.Auth)
	}

	_, err := authorizer.Authorize("socket-1", channel, "u3")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestAuthorizeFailureModes(t *testing.T) {
	authorizer := NewAuthorizer("app-key", "app-secret")

	_, err := authorizer.Authorize("socket-1", "private-chat-u1-u2", "")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"), "missing session short-circuits")

	_, err = authorizer.Authorize("", "private-chat-u1-u2", "u1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = authorizer.Authorize("socket-1", "", "u1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = authorizer.Authorize("socket-1", "not-a-channel", "u1")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestGrantVerifyRoundTrip(t *testing.T) {
	authorizer := NewAuthorizer("app-key", "app-secret")
	channel := "private-chat-u1-u2"

	grant, err := authorizer.Authorize("socket-1", channel, "u1")
	require.NoError(t, err)

	assert.True(t, authorizer.Verify("socket-1", channel, grant.Auth))
	assert.False(t, authorizer.Verify("socket-2", channel, grant.Auth), "grant is bound to the socket")
	assert.False(t, authorizer.Verify("socket-1", "private-chat-u1-u3", grant.Auth), "grant is bound to the channel")
	assert.False(t, authorizer.Verify("socket-1", channel, grant.Auth+"x"))

	other := NewAuthorizer("app-key", "different-secret")
	assert.False(t, other.Verify("socket-1", channel, grant.Auth))
}
