package core

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
)

// Phase is the game's state-machine state.
type Phase int

const (
	// PhaseSelectingStat waits for both players to pick a stat.
	PhaseSelectingStat Phase = iota
	// PhaseReveal shows the assigned creatures before selection opens.
	PhaseReveal
	// PhaseBattle resolves the round once both picks are in.
	PhaseBattle
	// PhaseFinished means a winner was decided; the game takes no more commands
	// that change the outcome.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseSelectingStat:
		return "selecting-stat"
	case PhaseReveal:
		return "pokemon-reveal"
	case PhaseBattle:
		return "battle"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PickedStat is one player's stat selection for the current round.
type PickedStat struct {
	Name  StatName
	Value int
}

// Player is one side of a match.
type Player struct {
	Name     string
	ID       string
	MatchID  int // 1 or 2
	Points   int
	Creature *CreatureData
	Selected *PickedStat
}

// Participant is the name+identifier pair a room hands to a new game.
type Participant struct {
	Name string
	ID   string
}

// Game is the pure state machine for one match. It does no I/O, knows nothing
// about rooms or transport, and is mutated exclusively through Apply.
type Game struct {
	players      [2]*Player
	phase        Phase
	locked       map[StatName]struct{}
	firstMove    int // 1 or 2, who picks first this round
	winner       string
	round        int
	winThreshold int
	log          *zerolog.Logger
}

// NewGame builds a match between two participants in slot order. The first
// mover is chosen uniformly at random.
func NewGame(a, b Participant, winThreshold int, logger *zerolog.Logger) *Game {
	return &Game{
		players: [2]*Player{
			{Name: a.Name, ID: a.ID, MatchID: 1},
			{Name: b.Name, ID: b.ID, MatchID: 2},
		},
		phase:        PhaseSelectingStat,
		locked:       make(map[StatName]struct{}),
		firstMove:    1 + rand.Intn(2),
		round:        1,
		winThreshold: winThreshold,
		log:          logger,
	}
}

// Phase returns the current state-machine state.
func (g *Game) Phase() Phase { return g.phase }

// Round returns the current round number, starting at 1.
func (g *Game) Round() int { return g.round }

// Winner returns the winner's display name, or "" while undecided.
func (g *Game) Winner() string { return g.winner }

// FirstMove returns the in-match id (1 or 2) of the player who picks first.
func (g *Game) FirstMove() int { return g.firstMove }

// LockedStats returns the stats already used this match, in display order.
func (g *Game) LockedStats() []StatName {
	out := make([]StatName, 0, len(g.locked))
	for _, s := range AllStats {
		if _, ok := g.locked[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Apply executes one command and returns the domain events it produced.
// Commands with an unrecognized kind are logged and ignored. A stat selection
// attributed to an identifier outside the game returns ErrUnknownPlayer; that
// can only happen on a routing bug upstream and is fatal for the room.
func (g *Game) Apply(cmd Command) ([]Event, error) {
	switch cmd.Kind {
	case CommandAssignCreatures:
		g.assignCreatures(cmd.Creatures)
		return nil, nil
	case CommandSelectStat:
		return g.selectStat(cmd.Stat, cmd.ClientID)
	case CommandBattleEnd:
		return g.battleEnd(), nil
	case CommandStartSelect:
		g.phase = PhaseSelectingStat
		return nil, nil
	default:
		g.log.Warn().Int("kind", int(cmd.Kind)).Msg("ignoring unknown game command")
		return nil, nil
	}
}

func (g *Game) assignCreatures(creatures [2]CreatureData) {
	for i, p := range g.players {
		c := creatures[i]
		p.Creature = &c
	}
	g.phase = PhaseReveal
}

func (g *Game) selectStat(stat StatName, clientID string) ([]Event, error) {
	player := g.playerByID(clientID)
	if player == nil {
		return nil, fmt.Errorf("select %s for %q: %w", stat, clientID, ErrUnknownPlayer)
	}

	// Picks are taken only while selection is open. A finished game is
	// terminal; during reveal and battle late frames are ignored the same way.
	if g.phase != PhaseSelectingStat {
		return nil, nil
	}

	if _, used := g.locked[stat]; used {
		return []Event{{
			Kind:   EventInvalidStatSelect,
			Target: clientID,
			Reason: fmt.Sprintf("%s was already used this match", stat),
		}}, nil
	}

	// A repeated pick by the same player simply overwrites the previous one.
	player.Selected = &PickedStat{Name: stat, Value: g.statValue(player, stat)}

	if g.players[0].Selected != nil && g.players[1].Selected != nil {
		g.phase = PhaseBattle
		return []Event{{Kind: EventAllSelected}}, nil
	}
	return nil, nil
}

// battleEnd resolves the round. The signal arrives once per client, so it is
// gated on phase: only the first call while in battle evaluates, and every
// evaluation leaves the phase somewhere else.
func (g *Game) battleEnd() []Event {
	if g.phase != PhaseBattle {
		return nil
	}

	a, b := g.players[0], g.players[1]
	if a.Creature == nil || b.Creature == nil || a.Selected == nil || b.Selected == nil {
		g.log.Warn().Msg("battle evaluation skipped: round state incomplete")
		return nil
	}

	// Each player challenges the other on their own pick; the signed score is
	// taken from player 1's perspective.
	score := compare(a.Selected.Value, b.Creature.Stats[a.Selected.Name])
	score -= compare(b.Selected.Value, a.Creature.Stats[b.Selected.Name])

	if score == 0 {
		// Tied round: replay it. Nothing is locked, no points move, round and
		// first mover stay as they were.
		a.Selected, b.Selected = nil, nil
		g.phase = PhaseSelectingStat
		return nil
	}

	winner := a
	if score < 0 {
		winner = b
	}
	winner.Points++

	if winner.Points >= g.winThreshold {
		g.winner = winner.Name
		g.phase = PhaseFinished
		return []Event{{Kind: EventGameFinished}}
	}

	g.locked[a.Selected.Name] = struct{}{}
	g.locked[b.Selected.Name] = struct{}{}
	a.Selected, b.Selected = nil, nil
	g.toggleFirstMove()
	g.phase = PhaseSelectingStat

	if len(g.locked) == len(AllStats) {
		// Stat pool exhausted with no winner: a fresh match begins. Creatures
		// are re-assigned by whoever drives the game.
		g.round = 1
		g.locked = make(map[StatName]struct{})
		return []Event{{Kind: EventNewMatch}}
	}

	g.round++
	return nil
}

func (g *Game) toggleFirstMove() {
	if g.firstMove == 1 {
		g.firstMove = 2
	} else {
		g.firstMove = 1
	}
}

func (g *Game) playerByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) statValue(p *Player, stat StatName) int {
	if p.Creature == nil {
		return 0
	}
	return p.Creature.Stats[stat]
}

func compare(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
