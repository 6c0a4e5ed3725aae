// Package convo bounds per-user conversation context for generation requests.
//
// Older turns are compressed into cached one-line summaries while the most
// recent turns are kept verbatim, so context stays small no matter how long a
// user's history grows.
package convo

import (
	"github.com/petalhealth/petal/pkg/history"
)

// Interaction pairs one user turn with the assistant turn that answered it.
// Either slot may be nil: a user turn with no reply is a solo Interaction, and
// an assistant turn with no preceding unpaired user turn is an orphan. Orphans
// signal a data-ordering inconsistency and are kept, not discarded.
type Interaction struct {
	User      *history.Turn
	Assistant *history.Turn
}

// Pair groups an oldest-first turn sequence into Interactions with a single
// left-to-right scan.
func Pair(turns []history.Turn) []Interaction {
	var (
		interactions []Interaction
		pending      *history.Turn
	)

	flush := func() {
		if pending != nil {
			interactions = append(interactions, Interaction{User: pending})
			pending = nil
		}
	}

	for i := range turns {
		turn := &turns[i]
		switch turn.Role {
		case history.RoleUser:
			flush()
			pending = turn
		case history.RoleAssistant:
			if pending != nil {
				interactions = append(interactions, Interaction{User: pending, Assistant: turn})
				pending = nil
			} else {
				interactions = append(interactions, Interaction{Assistant: turn})
			}
		default:
			// System turns are not part of the user/assistant exchange.
		}
	}
	flush()

	return interactions
}
