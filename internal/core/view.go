package core

// ViewStat is a named stat value as shown to a viewer.
type ViewStat struct {
	Name  StatName `json:"name"`
	Value int      `json:"value"`
}

// ViewPlayer is one side of the match as exposed to a specific viewer.
// Selected is populated for the viewer's own side only; Challenged carries
// the other side's pick name valued against this side's creature, so a client
// can resolve the battle without ever seeing the opponent's raw pick.
type ViewPlayer struct {
	MatchID    int           `json:"matchId"`
	Name       string        `json:"name"`
	Points     int           `json:"points"`
	Creature   *CreatureData `json:"creature,omitempty"`
	Selected   *ViewStat     `json:"selectedStat,omitempty"`
	Challenged *ViewStat     `json:"challengedStat,omitempty"`
}

// ViewGame is the active match as exposed to one viewer.
type ViewGame struct {
	Phase       string     `json:"phase"`
	LockedStats []StatName `json:"lockedStats"`
	Winner      string     `json:"winner,omitempty"`
	FirstMove   int        `json:"firstMove"`
	Round       int        `json:"round"`
	You         ViewPlayer `json:"you"`
	Opponent    ViewPlayer `json:"opponent"`
}

// ViewParticipant is a room occupant in the lobby listing.
type ViewParticipant struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// ViewRoom is the per-recipient, privacy-filtered snapshot of a room.
type ViewRoom struct {
	RoomID       RoomID            `json:"roomId"`
	Participants []ViewParticipant `json:"participants"`
	Game         *ViewGame         `json:"game,omitempty"`
}

// Snapshot builds the snapshot of a room for one viewing client. The mapping
// is pure: it reads room and game state and touches nothing.
func Snapshot(r *Room, viewerID string) *ViewRoom {
	view := &ViewRoom{
		RoomID:       r.id,
		Participants: make([]ViewParticipant, 0, len(r.slots)),
	}
	for _, slot := range r.slots {
		view.Participants = append(view.Participants, ViewParticipant{
			Name:  slot.client.Name,
			Ready: slot.ready,
		})
	}

	g := r.game
	if g == nil {
		return view
	}

	you, opponent := g.players[0], g.players[1]
	if opponent.ID == viewerID {
		you, opponent = opponent, you
	}

	view.Game = &ViewGame{
		Phase:       g.phase.String(),
		LockedStats: g.LockedStats(),
		Winner:      g.winner,
		FirstMove:   g.firstMove,
		Round:       g.round,
		You:         viewPlayer(you),
		Opponent:    viewPlayer(opponent),
	}

	if you.Selected != nil {
		view.Game.You.Selected = &ViewStat{Name: you.Selected.Name, Value: you.Selected.Value}
	}

	// Picks cross sides only once the round is resolvable, so a mid-selection
	// snapshot (e.g. on reconnect) leaks nothing.
	if you.Selected != nil && opponent.Selected != nil {
		view.Game.You.Challenged = &ViewStat{
			Name:  opponent.Selected.Name,
			Value: g.statValue(you, opponent.Selected.Name),
		}
		view.Game.Opponent.Challenged = &ViewStat{
			Name:  you.Selected.Name,
			Value: g.statValue(opponent, you.Selected.Name),
		}
	}

	return view
}

func viewPlayer(p *Player) ViewPlayer {
	return ViewPlayer{
		MatchID:  p.MatchID,
		Name:     p.Name,
		Points:   p.Points,
		Creature: p.Creature,
	}
}
