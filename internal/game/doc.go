// Package game models the table snapshot an agent polls from the game
// authority.
//
// The main type is SharedState, a complete view of one table at one instant:
// the phase of the current hand, every seated participant, whose turn it is,
// the pot and the community cards. Snapshots are fetched whole on every poll
// and replaced, never patched:
//
//	state, err := source.FetchState(ctx)
//	if err != nil {
//	    return // transient, try again next tick
//	}
//	if state.TurnPlayerID() == me {
//	    p, _ := state.Player(me)
//	    owed := state.CallAmount(p)
//	    // decide...
//	}
//
// Hole cards of other participants are reported as deck.Hidden until the
// authority reveals them at showdown.
package game
