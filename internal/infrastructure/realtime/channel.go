package realtime

import (
	"fmt"
	"strings"

	"teamline/pkg/errors"
)

// Direct-message channels are named private-chat-{a}-{b} with the two user
// ids sorted lexicographically, so both participants derive the same name.
// The "private-" prefix marks the channel as requiring a signed grant before
// the hub will bind a socket to it.
const channelPrefix = "private-chat-"

const channelSeparator = "-"

// ChannelNameFor returns the conversation channel for an unordered user pair.
// Symmetric: ChannelNameFor(a, b) == ChannelNameFor(b, a). Ids containing the
// separator are rejected here, at send time, because the name they would
// produce can never be parsed back and no one could ever subscribe to it.
func ChannelNameFor(userA, userB string) (string, error) {
	if userA == "" || userB == "" {
		return "", errors.BadRequest("user id must not be empty", nil)
	}
	if strings.Contains(userA, channelSeparator) || strings.Contains(userB, channelSeparator) {
		return "", errors.BadRequest("user id must not contain "+channelSeparator, nil)
	}
	first, second := userA, userB
	if second < first {
		first, second = second, first
	}
	return channelPrefix + first + channelSeparator + second, nil
}

// ParseChannel decodes a channel name back into its two participant ids.
// User ids are opaque but must not contain the separator; anything that does
// not decode to exactly two non-empty ids is rejected.
func ParseChannel(channel string) (string, string, error) {
	rest, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return "", "", errors.BadRequest(fmt.Sprintf("unrecognized channel %q", channel), nil)
	}
	parts := strings.Split(rest, channelSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.BadRequest(fmt.Sprintf("malformed channel %q", channel), nil)
	}
	return parts[0], parts[1], nil
}

// IsParticipant reports whether userID is one of the two ids encoded in the
// channel name. The name alone is not a secret; this check is what stands
// between a valid session and someone else's conversation.
func IsParticipant(channel, userID string) bool {
	a, b, err := ParseChannel(channel)
	if err != nil {
		return false
	}
	return userID == a || userID == b
}
