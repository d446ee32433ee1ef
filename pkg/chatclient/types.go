package chatclient

import "teamline/internal/domain/entity"

// Message and Attachment are the wire types shared with the server,
// re-exported so importers of this package can name them and implement
// Fetcher, Subscriber, and Uploader without reaching into internal packages.
type (
	Message    = entity.Message
	Attachment = entity.Attachment
)

// UserSummary is the sender projection embedded in pushed messages.
type UserSummary = entity.UserSummary
