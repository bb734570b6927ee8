package config

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxProjectTitleLength = 255

	// MaxDescriptionLength is the maximum length for project descriptions.
	MaxDescriptionLength = 2000

	// MaxGenres is the maximum number of genres a project can carry.
	MaxGenres = 10

	// MaxLabelLength is the maximum length for folder and file labels.
	MaxLabelLength = 255

	// MaxMessageLength is the maximum length of one chat message.
	MaxMessageLength = 4000

	// MaxContentBytes caps a single content snapshot (5MB).
	MaxContentBytes = 5 << 20

	// DefaultChatHistoryLimit is how many of the newest messages a list call returns.
	// The client renders only the newest 100 of them.
	DefaultChatHistoryLimit = 500
)
