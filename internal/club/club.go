package club

import (
	"fmt"
	"strings"
)

// Club is one entry of the allow-list.
type Club struct {
	ID          string `json:"id"`
	Name        string `json:"-"`            // Canonical name as printed on starting lists
	DisplayName string `json:"display_name"` // Name shown to users
}

// Registry is an ordered, read-only set of clubs.
type Registry struct {
	clubs []Club
	byID  map[string]int
}

// NewRegistry builds a registry from clubs, rejecting empty or duplicate IDs
// and clubs without a canonical name.
func NewRegistry(clubs ...Club) (Registry, error) {
	r := Registry{
		clubs: make([]Club, 0, len(clubs)),
		byID:  make(map[string]int, len(clubs)),
	}
	for _, c := range clubs {
		if strings.TrimSpace(c.ID) == "" {
			return Registry{}, fmt.Errorf("club with name %q has an empty id", c.Name)
		}
		if strings.TrimSpace(c.Name) == "" {
			return Registry{}, fmt.Errorf("club %q has an empty name", c.ID)
		}
		if _, dup := r.byID[c.ID]; dup {
			return Registry{}, fmt.Errorf("duplicate club id %q", c.ID)
		}
		if c.DisplayName == "" {
			c.DisplayName = c.Name
		}
		r.byID[c.ID] = len(r.clubs)
		r.clubs = append(r.clubs, c)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables; it panics on invalid input.
func MustRegistry(clubs ...Club) Registry {
	r, err := NewRegistry(clubs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the tracked Academia Gorila affiliates.
func Default() Registry {
	return MustRegistry(
		Club{
			ID:          "academia_gorila_warszawa",
			Name:        "Academia Gorila / Warszawa",
			DisplayName: "Academia Gorila (Warszawa)",
		},
		Club{
			ID:          "academia_gorila_ruda_slaska",
			Name:        "Academia Gorila / Ruda Śląska",
			DisplayName: "Academia Gorila (Ruda Śląska)",
		},
		Club{
			ID:          "academia_gorila_bielsko_biala",
			Name:        "Academia Gorila / Bielsko Biała",
			DisplayName: "Academia Gorila (Bielsko Biała)",
		},
	)
}

// Lookup returns the club registered under id.
func (r Registry) Lookup(id string) (Club, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Club{}, false
	}
	return r.clubs[i], true
}

// All returns the clubs in registration order. The slice is a copy.
func (r Registry) All() []Club {
	out := make([]Club, len(r.clubs))
	copy(out, r.clubs)
	return out
}

// Len returns the number of registered clubs.
func (r Registry) Len() int {
	return len(r.clubs)
}
