package weather

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func loc(name string) Location {
	return Location{Name: name, Country: "X", Latitude: 1, Longitude: 2}
}

func TestPushRecentCapsAndDedups(t *testing.T) {
	s := DefaultSettings()
	for _, n := range []string{"A", "B", "C", "D"} {
		s.PushRecent(loc(n))
	}
	if got := names(s.Recents); !reflect.DeepEqual(got, []string{"D", "C", "B", "A"}) {
		t.Fatalf("unexpected recents %v", got)
	}

	s.PushRecent(loc("E"))
	if got := names(s.Recents); !reflect.DeepEqual(got, []string{"E", "D", "C", "B"}) {
		t.Fatalf("expected oldest to be dropped, got %v", got)
	}

	s.PushRecent(loc("C"))
	if got := names(s.Recents); !reflect.DeepEqual(got, []string{"C", "E", "D", "B"}) {
		t.Fatalf("expected existing entry moved to front, got %v", got)
	}
}

func TestPushRecentNameIsCaseSensitive(t *testing.T) {
	s := DefaultSettings()
	s.PushRecent(loc("paris"))
	s.PushRecent(loc("Paris"))
	if len(s.Recents) != 2 {
		t.Fatalf("expected 2 entries, got %v", names(s.Recents))
	}
}

func TestToggleFavoriteTwiceRestoresList(t *testing.T) {
	s := DefaultSettings()
	s.ToggleFavorite(loc("A"))
	s.ToggleFavorite(loc("B"))
	before := append([]Location(nil), s.Favorites...)

	if !s.ToggleFavorite(loc("C")) {
		t.Fatal("expected C to become a favorite")
	}
	if s.ToggleFavorite(loc("C")) {
		t.Fatal("expected C to be removed")
	}
	if !reflect.DeepEqual(s.Favorites, before) {
		t.Fatalf("expected %v, got %v", before, s.Favorites)
	}

	// Removal matches by name only.
	other := loc("A")
	other.Country = "Elsewhere"
	s.ToggleFavorite(other)
	if got := names(s.Favorites); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("unexpected favorites %v", got)
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(context.Background(), newMapKV(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Unit != Celsius || s.Theme != ThemeLight || s.LastLocation != nil {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if s.Favorites == nil || s.Recents == nil {
		t.Fatal("expected empty, non-nil lists")
	}
}

func TestLoadSettingsIgnoresUnknownUnit(t *testing.T) {
	kv := newMapKV()
	_ = kv.Put(context.Background(), "p", keyUnit, []byte(`"kelvin"`))

	s, err := LoadSettings(context.Background(), kv, "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Unit != Celsius {
		t.Fatalf("expected celsius, got %s", s.Unit)
	}
}

func TestLoadSettingsCorruptRecord(t *testing.T) {
	kv := newMapKV()
	_ = kv.Put(context.Background(), "p", keyFavorites, []byte(`{not json`))

	if _, err := LoadSettings(context.Background(), kv, "p"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestSaveSettingsPropagatesStoreErrors(t *testing.T) {
	kv := newMapKV()
	kv.putErr = errors.New("disk full")

	err := DefaultSettings().Save(context.Background(), kv, "p")
	if !errors.Is(err, kv.putErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
