package core

import "context"

// StatName identifies one comparable attribute of a creature.
type StatName string

const (
	StatHP             StatName = "hp"
	StatAttack         StatName = "attack"
	StatDefense        StatName = "defense"
	StatSpecialAttack  StatName = "special-attack"
	StatSpecialDefense StatName = "special-defense"
	StatSpeed          StatName = "speed"
	StatHeight         StatName = "height"
	StatWeight         StatName = "weight"
)

// AllStats is the full stat pool of a match, in display order. A match ends its
// cycle once every name here is locked.
var AllStats = []StatName{
	StatHP,
	StatAttack,
	StatDefense,
	StatSpecialAttack,
	StatSpecialDefense,
	StatSpeed,
	StatHeight,
	StatWeight,
}

// CreatureData is the normalized creature record assigned to a player for one
// match. Stat values are raw source units; display conversion is client-side.
type CreatureData struct {
	ID         int              `json:"id"`
	Name       string           `json:"name"`
	Types      []string         `json:"types"`
	Stats      map[StatName]int `json:"stats"`
	SpriteURL  string           `json:"spriteUrl,omitempty"`
	ArtworkURL string           `json:"artworkUrl,omitempty"`
}

// CreatureSource produces creature data for new matches.
type CreatureSource interface {
	FetchRandomCreature(ctx context.Context) (CreatureData, error)
}
