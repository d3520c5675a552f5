package platforms

import (
	"log/slog"
	"strconv"

	"ecobeehub/internal/core"
	"ecobeehub/internal/entities"
)

// sensorTypes maps capability types exposed as sensors to their unit and device class
var sensorTypes = map[string]struct {
	unit        string
	deviceClass string
}{
	"temperature": {unit: "°F", deviceClass: "temperature"},
	"humidity":    {unit: "%", deviceClass: "humidity"},
}

// NewSensor creates the sensor platform: one entity per temperature or humidity capability
func NewSensor(registry *entities.Registry, logger *slog.Logger) *Platform {
	return New("sensor", buildSensors, registry, logger)
}

func buildSensors(entryID string, thermostats []core.Thermostat) []entities.Entity {
	result := make([]entities.Entity, 0)
	ids := newEntityIDs("sensor")
	for _, th := range thermostats {
		for _, sensor := range th.RemoteSensors {
			for _, capability := range sensor.Capability {
				kind, ok := sensorTypes[capability.Type]
				if !ok {
					continue
				}

				state, available := sensorValue(capability)
				result = append(result, entities.Entity{
					ID:       ids.next(sensor.Name, th.Identifier+" "+sensor.ID, capability.Type),
					Platform: "sensor",
					EntryID:  entryID,
					Name:     sensor.Name + " " + capability.Type,
					State:    state,
					Attributes: map[string]interface{}{
						"thermostat":          th.Identifier,
						"sensor_id":           sensor.ID,
						"unit_of_measurement": kind.unit,
						"device_class":        kind.deviceClass,
					},
					Available: available,
				})
			}
		}
	}
	return result
}

// sensorValue converts an ecobee capability reading into an entity state.
// Temperatures are reported in tenths of a degree; "unknown" means the sensor is offline.
func sensorValue(capability core.SensorCapability) (string, bool) {
	if capability.Value == "" || capability.Value == "unknown" {
		return "unknown", false
	}
	if capability.Type != "temperature" {
		return capability.Value, true
	}

	tenths, err := strconv.Atoi(capability.Value)
	if err != nil {
		return "unknown", false
	}
	return strconv.FormatFloat(float64(tenths)/10, 'f', 1, 64), true
}
