package store

// ConversationState is the in-memory sidecar for one conversation: what the
// pipeline last did, kept hot for follow-up requests without a DB round trip.
type ConversationState struct {
	ID         string `json:"id"` // ChatSessionID
	LastRoute  int    `json:"last_route"`
	LastQuery  string `json:"last_query"`
	LastAnswer string `json:"last_answer"`
	Turns      int    `json:"turns"`
}
