// Package beaches holds the static beach registry. The set of beaches is
// fixed at compile time: four Chennai-area beaches sharing one upstream
// provider location key. The registry is immutable; lookups by unknown key
// return a not-found error rather than a default.
package beaches

import (
	"fmt"

	"seasidebeacon/internal/types"
)

// chennaiLocationKey is the AccuWeather location key shared by all four
// beaches; they sit within a single forecast cell.
const chennaiLocationKey = "206671"

// ordered registry; All() preserves this order.
var registry = []types.Beach{
	{
		Key:         "marina",
		Name:        "Marina Beach",
		LocationKey: chennaiLocationKey,
		Coordinates: types.Coordinates{Lat: 13.0499, Lon: 80.2824},
	},
	{
		Key:         "elliot",
		Name:        "Elliot's Beach (Besant Nagar)",
		LocationKey: chennaiLocationKey,
		Coordinates: types.Coordinates{Lat: 13.0067, Lon: 80.2669},
	},
	{
		Key:         "covelong",
		Name:        "Covelong Beach",
		LocationKey: chennaiLocationKey,
		Coordinates: types.Coordinates{Lat: 12.7925, Lon: 80.2514},
	},
	{
		Key:         "mahabalipuram",
		Name:        "Mahabalipuram Beach",
		LocationKey: chennaiLocationKey,
		Coordinates: types.Coordinates{Lat: 12.6269, Lon: 80.1932},
	},
}

var byKey = func() map[string]types.Beach {
	m := make(map[string]types.Beach, len(registry))
	for _, b := range registry {
		m[b.Key] = b
	}
	return m
}()

// All returns every configured beach in registration order.
func All() []types.Beach {
	out := make([]types.Beach, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the beach for the given key, or a not_found_beach AppError
// if the key is not in the registry.
func Lookup(key string) (types.Beach, error) {
	b, ok := byKey[key]
	if !ok {
		return types.Beach{}, types.NewAppError(
			types.ErrCodeNotFoundBeach,
			fmt.Sprintf("beach %q is not configured", key),
			nil,
		)
	}
	return b, nil
}
