package core

// CommandKind describes what should happen inside a game.
type CommandKind int

const (
	// CommandAssignCreatures hands both players their creature for the match.
	CommandAssignCreatures CommandKind = iota
	// CommandSelectStat records one player's stat pick for the round.
	CommandSelectStat
	// CommandBattleEnd signals that a client finished the battle sequence.
	CommandBattleEnd
	// CommandStartSelect opens stat selection after the reveal delay.
	CommandStartSelect
)

// Command is the tagged union fed into a Game. ClientID is set only for
// client-originated commands; system-originated ones (timer advances,
// creature assignment) leave it empty.
type Command struct {
	Kind      CommandKind
	Creatures [2]CreatureData // CommandAssignCreatures
	Stat      StatName        // CommandSelectStat
	ClientID  string
}
