package platforms

import (
	"log/slog"
	"strings"

	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"
)

// ecobee hvac modes mapped to entity states
var hvacModes = map[string]string{
	"auxHeatOnly": "heat",
	"heat":        "heat",
	"cool":        "cool",
	"auto":        "heat_cool",
	"off":         "off",
}

// equipment prefixes mapped to hvac actions, in priority order
var hvacActions = []struct {
	prefix string
	action string
}{
	{"heatPump", "heating"},
	{"auxHeat", "heating"},
	{"compCool", "cooling"},
	{"fan", "fan"},
}

// NewClimate creates the climate platform: one entity per thermostat
func NewClimate(registry *entities.Registry, logger *slog.Logger) *Platform {
	return New("climate", buildClimate, registry, logger)
}

func buildClimate(entryID string, thermostats []core.Thermostat) []entities.Entity {
	result := make([]entities.Entity, 0, len(thermostats))
	ids := newEntityIDs("climate")
	for _, th := range thermostats {
		state, ok := hvacModes[th.Settings.HVACMode]
		if !ok {
			state = "unknown"
		}

		result = append(result, entities.Entity{
			ID:       ids.next(th.Name, th.Identifier, ""),
			Platform: "climate",
			EntryID:  entryID,
			Name:     th.Name,
			State:    state,
			Attributes: map[string]interface{}{
				"identifier":          th.Identifier,
				"model":               th.ModelNumber,
				"current_temperature": th.Runtime.Temperature(),
				"current_humidity":    th.Runtime.ActualHumidity,
				"target_temp_low":     float64(th.Runtime.DesiredHeat) / 10,
				"target_temp_high":    float64(th.Runtime.DesiredCool) / 10,
				"hvac_action":         hvacAction(th.EquipmentStatus),
				"equipment_running":   th.EquipmentStatus,
				"fan":                 fanState(th.EquipmentStatus),
				"fan_min_on_time":     th.Settings.FanMinOnTime,
				"temperature_unit":    "°F",
			},
			Available: th.Runtime.Connected,
		})
	}
	return result
}

// hvacAction derives the current hvac action from the running equipment list
func hvacAction(equipmentStatus string) string {
	if equipmentStatus == "" {
		return "idle"
	}
	running := strings.Split(equipmentStatus, ",")
	for _, a := range hvacActions {
		for _, equipment := range running {
			if strings.HasPrefix(equipment, a.prefix) {
				return a.action
			}
		}
	}
	return "idle"
}

func fanState(equipmentStatus string) string {
	for _, equipment := range strings.Split(equipmentStatus, ",") {
		if equipment == "fan" {
			return "on"
		}
	}
	return "off"
}
