package platforms

import (
	"log/slog"

	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"
)

// weatherConditions maps ecobee weather symbols to conditions
var weatherConditions = map[int]string{
	0:  "sunny",
	1:  "partlycloudy",
	2:  "partlycloudy",
	3:  "cloudy",
	4:  "cloudy",
	5:  "cloudy",
	6:  "rainy",
	7:  "snowy-rainy",
	8:  "pouring",
	9:  "hail",
	10: "snowy",
	11: "snowy",
	12: "snowy-rainy",
	13: "snowy-heavy",
	14: "hail",
	15: "lightning-rainy",
	16: "windy",
	17: "tornado",
	18: "fog",
	19: "hazy",
	20: "hazy",
	21: "hazy",
}

// NewWeather creates the weather platform: one entity per thermostat with a forecast
func NewWeather(registry *entities.Registry, logger *slog.Logger) *Platform {
	return New("weather", buildWeather, registry, logger)
}

func buildWeather(entryID string, thermostats []core.Thermostat) []entities.Entity {
	result := make([]entities.Entity, 0, len(thermostats))
	ids := newEntityIDs("weather")
	for _, th := range thermostats {
		forecasts := th.Weather.Forecasts
		if len(forecasts) == 0 {
			continue
		}

		current := forecasts[0]
		state, ok := weatherConditions[current.WeatherSymbol]
		if !ok {
			state = "unknown"
		}

		daily := make([]map[string]interface{}, 0, len(forecasts)-1)
		for _, f := range forecasts[1:] {
			daily = append(daily, map[string]interface{}{
				"datetime":    f.DateTime,
				"condition":   weatherConditions[f.WeatherSymbol],
				"temperature": float64(f.TempHigh) / 10,
				"templow":     float64(f.TempLow) / 10,
			})
		}

		result = append(result, entities.Entity{
			ID:       ids.next(th.Name, th.Identifier, ""),
			Platform: "weather",
			EntryID:  entryID,
			Name:     th.Name,
			State:    state,
			Attributes: map[string]interface{}{
				"thermostat":   th.Identifier,
				"station":      th.Weather.WeatherStation,
				"temperature":  float64(current.Temperature) / 10,
				"humidity":     current.RelativeHumidity,
				"pressure":     current.Pressure,
				"wind_speed":   current.WindSpeed,
				"wind_bearing": current.WindBearing,
				"forecast":     daily,
				"attribution":  "Powered by ecobee",
			},
			Available: state != "unknown",
		})
	}
	return result
}
