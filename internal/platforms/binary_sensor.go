package platforms

import (
	"log/slog"

	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"
)

// NewBinarySensor creates the binary_sensor platform: one occupancy entity per remote sensor
func NewBinarySensor(registry *entities.Registry, logger *slog.Logger) *Platform {
	return New("binary_sensor", buildBinarySensors, registry, logger)
}

func buildBinarySensors(entryID string, thermostats []core.Thermostat) []entities.Entity {
	result := make([]entities.Entity, 0)
	ids := newEntityIDs("binary_sensor")
	for _, th := range thermostats {
		for _, sensor := range th.RemoteSensors {
			capability, ok := sensor.CapabilityOf("occupancy")
			if !ok {
				continue
			}

			state := "off"
			if capability.Value == "true" {
				state = "on"
			}

			result = append(result, entities.Entity{
				ID:       ids.next(sensor.Name, th.Identifier+" "+sensor.ID, "occupancy"),
				Platform: "binary_sensor",
				EntryID:  entryID,
				Name:     sensor.Name + " Occupancy",
				State:    state,
				Attributes: map[string]interface{}{
					"thermostat":   th.Identifier,
					"sensor_id":    sensor.ID,
					"device_class": "occupancy",
				},
				Available: capability.Value != "unknown",
			})
		}
	}
	return result
}
