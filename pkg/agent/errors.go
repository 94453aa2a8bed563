package agent

import "errors"

// ErrProtocol marks a model reply that violates the agent contract: valid
// JSON whose content is inconsistent, such as a passing verdict that still
// carries a rejection message. Protocol violations abort the request instead
// of being coerced into a guess.
var ErrProtocol = errors.New("agent protocol violation")
