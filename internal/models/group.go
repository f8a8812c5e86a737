package models

// Group represents a chat that collects weekly reports.
type Group struct {
	// ID is the chat id assigned by the chat platform.
	ID int64 `json:"id"`

	// Name is the chat title at registration time.
	Name string `json:"name"`

	// CreatedAt is the Unix timestamp when the group was registered.
	CreatedAt int64 `json:"created_at"`
}

// Member is a participant expected to submit a report.
type Member struct {
	// ID is the user id assigned by the chat platform.
	ID int64 `json:"id"`

	// Name is the display name echoed in rosters and mentions.
	Name string `json:"name"`
}

// PendingMember is a roster member that has not submitted for a period.
type PendingMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
