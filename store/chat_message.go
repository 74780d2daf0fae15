package store

// Role is the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one persisted turn of an admin chat session.
// Turns are ordered by CreatedTs and soft-deleted via DeletedTs;
// rows are never physically removed.
type ChatMessage struct {
	ID        int32
	SessionID string
	Role      Role
	Content   string
	// SQLQuery is set only on assistant turns produced in admin mode.
	// Rejected and failed queries are stored too, for audit.
	SQLQuery  *string
	CreatedTs int64
	DeletedTs *int64
}

type FindChatMessage struct {
	SessionID *string
	// Limit returns only the most recent N visible turns,
	// still in chronological order.
	Limit *int
}
