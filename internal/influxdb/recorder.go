package influxdb

import (
	"strconv"

	"ecobeehub/internal/entities"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const measurement = "entity_state"

// PointWriter queues points for writing
type PointWriter interface {
	WritePoint(point *write.Point)
}

// Recorder writes the numeric readings of every entity state change
type Recorder struct {
	writer PointWriter
}

// NewRecorder creates an entity listener that records state history
func NewRecorder(writer PointWriter) *Recorder {
	return &Recorder{writer: writer}
}

// OnStateChanged implements entities.Listener.
// States without any numeric reading are skipped.
func (r *Recorder) OnStateChanged(entity entities.Entity) {
	fields := numericFields(entity)
	if len(fields) == 0 {
		return
	}

	tags := map[string]string{
		"entity_id": entity.ID,
		"platform":  entity.Platform,
		"entry_id":  entity.EntryID,
	}

	r.writer.WritePoint(write.NewPoint(measurement, tags, fields, entity.UpdatedAt))
}

// numericFields collects the numeric state and attributes of an entity
func numericFields(entity entities.Entity) map[string]interface{} {
	fields := make(map[string]interface{})
	if !entity.Available {
		return fields
	}

	if value, err := strconv.ParseFloat(entity.State, 64); err == nil {
		fields["value"] = value
	}

	for key, attr := range entity.Attributes {
		switch v := attr.(type) {
		case float64:
			fields[key] = v
		case int:
			fields[key] = float64(v)
		}
	}
	return fields
}
