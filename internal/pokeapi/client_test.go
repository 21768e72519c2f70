package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pokeduel-server/internal/core"
)

const bulbasaurJSON = `{
  "id": 1,
  "name": "bulbasaur",
  "height": 7,
  "weight": 69,
  "types": [
    {"type": {"name": "grass"}},
    {"type": {"name": "poison"}}
  ],
  "stats": [
    {"base_stat": 45, "stat": {"name": "hp"}},
    {"base_stat": 49, "stat": {"name": "attack"}},
    {"base_stat": 49, "stat": {"name": "defense"}},
    {"base_stat": 65, "stat": {"name": "special-attack"}},
    {"base_stat": 65, "stat": {"name": "special-defense"}},
    {"base_stat": 45, "stat": {"name": "speed"}}
  ],
  "sprites": {
    "front_default": "https://img.example/sprite.png",
    "other": {
      "official-artwork": {"front_default": "https://img.example/artwork.png"}
    }
  }
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	return New(srv.URL, time.Second, &logger)
}

func TestFetchRandomCreatureNormalizes(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/pokemon/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(bulbasaurJSON))
	})

	got, err := c.FetchRandomCreature(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got.ID != 1 || got.Name != "bulbasaur" {
		t.Fatalf("identity = %d/%q", got.ID, got.Name)
	}
	if len(got.Types) != 2 || got.Types[0] != "grass" || got.Types[1] != "poison" {
		t.Fatalf("types = %v", got.Types)
	}
	if got.SpriteURL != "https://img.example/sprite.png" || got.ArtworkURL != "https://img.example/artwork.png" {
		t.Fatalf("images = %q / %q", got.SpriteURL, got.ArtworkURL)
	}

	// All eight comparable stats must be present, height and weight in raw
	// API units alongside the six battle stats.
	want := map[core.StatName]int{
		core.StatHP:             45,
		core.StatAttack:         49,
		core.StatDefense:        49,
		core.StatSpecialAttack:  65,
		core.StatSpecialDefense: 65,
		core.StatSpeed:          45,
		core.StatHeight:         7,
		core.StatWeight:         69,
	}
	for name, value := range want {
		if got.Stats[name] != value {
			t.Errorf("stat %s = %d, want %d", name, got.Stats[name], value)
		}
	}
	if len(got.Stats) != len(core.AllStats) {
		t.Fatalf("stats = %d entries, want %d", len(got.Stats), len(core.AllStats))
	}
}

func TestFetchRandomCreatureBadStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})

	_, err := c.FetchRandomCreature(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestFetchRandomCreatureBadBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := c.FetchRandomCreature(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestFetchRandomCreatureCanceledContext(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bulbasaurJSON))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchRandomCreature(ctx)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}
