package influxdb

import (
	"testing"
	"time"

	"ecobeehub/config"
	"ecobeehub/internal/entities"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	points []*write.Point
}

func (m *mockWriter) WritePoint(point *write.Point) {
	m.points = append(m.points, point)
}

func fieldMap(point *write.Point) map[string]interface{} {
	fields := make(map[string]interface{})
	for _, f := range point.FieldList() {
		fields[f.Key] = f.Value
	}
	return fields
}

func tagMap(point *write.Point) map[string]string {
	tags := make(map[string]string)
	for _, tag := range point.TagList() {
		tags[tag.Key] = tag.Value
	}
	return tags
}

func TestRecorder_NumericState(t *testing.T) {
	writer := &mockWriter{}
	recorder := NewRecorder(writer)
	updated := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	recorder.OnStateChanged(entities.Entity{
		ID:        "sensor.bedroom_temperature",
		Platform:  "sensor",
		EntryID:   "entry_1",
		State:     "70.1",
		Available: true,
		Attributes: map[string]interface{}{
			"unit_of_measurement": "°F",
		},
		UpdatedAt: updated,
	})

	require.Len(t, writer.points, 1)
	point := writer.points[0]
	assert.Equal(t, "entity_state", point.Name())
	assert.Equal(t, updated, point.Time())
	assert.Equal(t, map[string]interface{}{"value": 70.1}, fieldMap(point))
	assert.Equal(t, "sensor.bedroom_temperature", tagMap(point)["entity_id"])
	assert.Equal(t, "sensor", tagMap(point)["platform"])
}

func TestRecorder_NumericAttributes(t *testing.T) {
	writer := &mockWriter{}
	recorder := NewRecorder(writer)

	recorder.OnStateChanged(entities.Entity{
		ID:        "climate.living_room",
		Platform:  "climate",
		EntryID:   "entry_1",
		State:     "heat_cool",
		Available: true,
		Attributes: map[string]interface{}{
			"current_temperature": 71.2,
			"current_humidity":    41,
			"hvac_action":         "heating",
		},
	})

	require.Len(t, writer.points, 1)
	fields := fieldMap(writer.points[0])
	assert.InDelta(t, 71.2, fields["current_temperature"], 0.001)
	assert.InDelta(t, 41.0, fields["current_humidity"], 0.001)
	assert.NotContains(t, fields, "hvac_action")
	assert.NotContains(t, fields, "value")
}

func TestRecorder_SkipsNonNumeric(t *testing.T) {
	writer := &mockWriter{}
	recorder := NewRecorder(writer)

	recorder.OnStateChanged(entities.Entity{
		ID: "binary_sensor.bedroom_occupancy", Platform: "binary_sensor", EntryID: "entry_1",
		State: "on", Available: true,
	})
	recorder.OnStateChanged(entities.Entity{
		ID: "sensor.bedroom_temperature", Platform: "sensor", EntryID: "entry_1",
		State: "70.1", Available: false,
	})

	assert.Empty(t, writer.points)
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestClient_WritePointWhenDisconnected(t *testing.T) {
	c := &Client{}
	assert.False(t, c.IsConnected())
	assert.NotPanics(t, func() {
		c.WritePoint(write.NewPointWithMeasurement("entity_state"))
	})
	assert.NoError(t, c.Close())
}
