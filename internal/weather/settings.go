package weather

import (
	"context"
	"encoding/json"
	"fmt"
)

// MaxRecents is the number of recent searches kept per profile.
const MaxRecents = 4

// Storage keys of a profile's settings records.
const (
	keyUnit         = "skycast-unit"
	keyTheme        = "skycast-theme"
	keyFavorites    = "skycast-favs"
	keyRecents      = "skycast-recent"
	keyLastLocation = "skycast-last-location"
)

// Settings is the per-profile state: display preferences, favorites,
// recents and the last location that was fetched successfully.
type Settings struct {
	Unit         Unit       `json:"unit"`
	Theme        Theme      `json:"theme"`
	Favorites    []Location `json:"favorites"`
	Recents      []Location `json:"recents"`
	LastLocation *Location  `json:"lastLocation,omitempty"`
}

// DefaultSettings is the state of a profile with nothing stored.
func DefaultSettings() Settings {
	return Settings{
		Unit:      Celsius,
		Theme:     ThemeLight,
		Favorites: []Location{},
		Recents:   []Location{},
	}
}

// PushRecent moves loc to the front of the recents, dropping any entry with
// the same name and keeping at most MaxRecents.
func (s *Settings) PushRecent(loc Location) {
	recents := make([]Location, 0, MaxRecents)
	recents = append(recents, loc)
	for _, r := range s.Recents {
		if r.Name != loc.Name {
			recents = append(recents, r)
		}
	}
	if len(recents) > MaxRecents {
		recents = recents[:MaxRecents]
	}
	s.Recents = recents
}

// ToggleFavorite removes loc from the favorites if a location with the same
// name is present, otherwise appends it. It reports whether loc is now a
// favorite.
func (s *Settings) ToggleFavorite(loc Location) bool {
	if s.IsFavorite(loc.Name) {
		favs := make([]Location, 0, len(s.Favorites))
		for _, f := range s.Favorites {
			if f.Name != loc.Name {
				favs = append(favs, f)
			}
		}
		s.Favorites = favs
		return false
	}
	s.Favorites = append(s.Favorites, loc)
	return true
}

// IsFavorite reports whether a favorite with the given name exists.
func (s Settings) IsFavorite(name string) bool {
	for _, f := range s.Favorites {
		if f.Name == name {
			return true
		}
	}
	return false
}

// LoadSettings reads every settings record of profile from kv. Missing
// keys keep their defaults; unreadable values are an error.
func LoadSettings(ctx context.Context, kv KeyValueStore, profile string) (Settings, error) {
	s := DefaultSettings()

	var unit, theme string
	if err := loadRecord(ctx, kv, profile, keyUnit, &unit); err != nil {
		return s, err
	}
	if unit != "" {
		if u, err := ParseUnit(unit); err == nil {
			s.Unit = u
		}
	}
	if err := loadRecord(ctx, kv, profile, keyTheme, &theme); err != nil {
		return s, err
	}
	if theme != "" {
		if t, err := ParseTheme(theme); err == nil {
			s.Theme = t
		}
	}
	if err := loadRecord(ctx, kv, profile, keyFavorites, &s.Favorites); err != nil {
		return s, err
	}
	if err := loadRecord(ctx, kv, profile, keyRecents, &s.Recents); err != nil {
		return s, err
	}
	if err := loadRecord(ctx, kv, profile, keyLastLocation, &s.LastLocation); err != nil {
		return s, err
	}

	if s.Favorites == nil {
		s.Favorites = []Location{}
	}
	if s.Recents == nil {
		s.Recents = []Location{}
	}
	return s, nil
}

// Save writes every settings record of s for profile.
func (s Settings) Save(ctx context.Context, kv KeyValueStore, profile string) error {
	records := []struct {
		key   string
		value any
	}{
		{keyUnit, s.Unit},
		{keyTheme, s.Theme},
		{keyFavorites, s.Favorites},
		{keyRecents, s.Recents},
	}
	if s.LastLocation != nil {
		records = append(records, struct {
			key   string
			value any
		}{keyLastLocation, s.LastLocation})
	}

	for _, r := range records {
		data, err := json.Marshal(r.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.key, err)
		}
		if err := kv.Put(ctx, profile, r.key, data); err != nil {
			return fmt.Errorf("save %s: %w", r.key, err)
		}
	}
	return nil
}

func loadRecord(ctx context.Context, kv KeyValueStore, profile, key string, dest any) error {
	data, ok, err := kv.Get(ctx, profile, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
