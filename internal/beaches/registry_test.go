package beaches

import (
	"errors"
	"testing"

	"seasidebeacon/internal/types"
)

func TestAll_OrderAndContents(t *testing.T) {
	all := All()
	if len(all) != 4 {
		t.Fatalf("expected 4 beaches, got %d", len(all))
	}

	wantOrder := []string{"marina", "elliot", "covelong", "mahabalipuram"}
	for i, key := range wantOrder {
		if all[i].Key != key {
			t.Errorf("position %d: expected %q, got %q", i, key, all[i].Key)
		}
	}
}

func TestAll_SharedLocationKey(t *testing.T) {
	for _, b := range All() {
		if b.LocationKey != "206671" {
			t.Errorf("beach %q: expected Chennai location key 206671, got %q", b.Key, b.LocationKey)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	first := All()
	first[0].Name = "mutated"

	if All()[0].Name == "mutated" {
		t.Error("expected All to return a copy, registry was mutated")
	}
}

func TestLookup_Known(t *testing.T) {
	b, err := Lookup("covelong")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if b.Name != "Covelong Beach" {
		t.Errorf("unexpected name %q", b.Name)
	}
	if b.Coordinates.Lat == 0 || b.Coordinates.Lon == 0 {
		t.Error("expected coordinates to be populated")
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("goa")
	if err == nil {
		t.Fatal("expected error for unknown beach")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeNotFoundBeach {
		t.Errorf("expected code %s, got %s", types.ErrCodeNotFoundBeach, appErr.Code)
	}
}

func TestLookup_CaseSensitive(t *testing.T) {
	if _, err := Lookup("Marina"); err == nil {
		t.Error("expected keys to be matched case-sensitively")
	}
}
