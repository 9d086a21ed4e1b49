// Package access implements the operator allow-list gate.
package access

// Gate admits users against a statically configured allow-list.
type Gate struct {
	allowed map[int64]struct{}
}

// NewGate builds a gate from the configured user ids.
func NewGate(userIDs []int64) *Gate {
	allowed := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = struct{}{}
	}
	return &Gate{allowed: allowed}
}

// Allowed reports whether the user may interact with the bot.
func (g *Gate) Allowed(userID int64) bool {
	if g == nil {
		return false
	}
	_, ok := g.allowed[userID]
	return ok
}
