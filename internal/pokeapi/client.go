package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokeduel-server/internal/core"
)

// ErrFetch marks a failed creature fetch. The hub treats it as unrecoverable
// for the requesting room, since a match cannot run without creature data.
var ErrFetch = errors.New("pokeapi fetch failed")

// DefaultBaseURL is the public PokéAPI v2 endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// maxPokemonID bounds random picks to the original 151.
const maxPokemonID = 151

// Client fetches pokémon from the PokéAPI and normalizes them into
// core.CreatureData. It implements core.CreatureSource.
type Client struct {
	httpc   *http.Client
	baseURL string
	maxID   int
	log     *zerolog.Logger
}

// New builds a client against the given base URL ("" means the public API).
func New(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		baseURL: baseURL,
		maxID:   maxPokemonID,
		log:     logger,
	}
}

type rawPokemon struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

// FetchRandomCreature pulls one pokémon with a random id.
func (c *Client) FetchRandomCreature(ctx context.Context) (core.CreatureData, error) {
	id := rand.Intn(c.maxID) + 1
	url := fmt.Sprintf("%s/pokemon/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.CreatureData{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return core.CreatureData{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.CreatureData{}, fmt.Errorf("%w: status %d for pokemon %d", ErrFetch, resp.StatusCode, id)
	}

	var raw rawPokemon
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return core.CreatureData{}, fmt.Errorf("%w: decode pokemon %d: %v", ErrFetch, id, err)
	}

	creature := normalize(raw)
	c.log.Debug().Int("pokemon_id", creature.ID).Str("name", creature.Name).Msg("fetched creature")
	return creature, nil
}

// normalize maps the raw API record onto the flat creature shape the game
// compares on. Height and weight join the battle stats in raw API units.
func normalize(raw rawPokemon) core.CreatureData {
	stats := make(map[core.StatName]int, len(core.AllStats))
	for _, s := range raw.Stats {
		stats[core.StatName(s.Stat.Name)] = s.BaseStat
	}
	stats[core.StatHeight] = raw.Height
	stats[core.StatWeight] = raw.Weight

	types := make([]string, 0, len(raw.Types))
	for _, t := range raw.Types {
		types = append(types, t.Type.Name)
	}

	return core.CreatureData{
		ID:         raw.ID,
		Name:       raw.Name,
		Types:      types,
		Stats:      stats,
		SpriteURL:  raw.Sprites.FrontDefault,
		ArtworkURL: raw.Sprites.Other.OfficialArtwork.FrontDefault,
	}
}
