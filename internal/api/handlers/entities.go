package handlers

import (
	"net/http"

	"ecobeehub/internal/entities"

	"github.com/gin-gonic/gin"
)

// EntitiesHandler exposes the entity registry
type EntitiesHandler struct {
	registry *entities.Registry
}

// NewEntitiesHandler creates a new entities handler
func NewEntitiesHandler(registry *entities.Registry) *EntitiesHandler {
	return &EntitiesHandler{registry: registry}
}

// ListEntities returns all entities, optionally filtered by entry
// GET /v1/entities?entry_id=
func (h *EntitiesHandler) ListEntities(c *gin.Context) {
	var list []entities.Entity
	if entryID := c.Query("entry_id"); entryID != "" {
		list = h.registry.ListByEntry(entryID)
	} else {
		list = h.registry.List()
	}

	response := make([]gin.H, 0, len(list))
	for _, entity := range list {
		response = append(response, formatEntity(entity))
	}

	c.JSON(http.StatusOK, response)
}

// GetEntity returns a single entity
// GET /v1/entities/:id
func (h *EntitiesHandler) GetEntity(c *gin.Context) {
	entity, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Entity not found",
			"code":  "ENTITY_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, formatEntity(entity))
}

func formatEntity(entity entities.Entity) gin.H {
	return gin.H{
		"entity_id":  entity.ID,
		"platform":   entity.Platform,
		"entry_id":   entity.EntryID,
		"name":       entity.Name,
		"state":      entity.State,
		"available":  entity.Available,
		"attributes": entity.Attributes,
		"updated_at": entity.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
