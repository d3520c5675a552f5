package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ecobeehub/internal/core"

	"github.com/gin-gonic/gin"
)

// EntryCreator runs the user config flow
type EntryCreator interface {
	Create(ctx context.Context, creds core.Credentials) (*core.Entry, error)
}

// EntriesHandler handles config entry requests
type EntriesHandler struct {
	store   core.EntryStore
	manager core.EntryManagerInterface
	flow    EntryCreator
	logger  *slog.Logger
}

// NewEntriesHandler creates a new entries handler
func NewEntriesHandler(store core.EntryStore, manager core.EntryManagerInterface, flow EntryCreator, logger *slog.Logger) *EntriesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntriesHandler{
		store:   store,
		manager: manager,
		flow:    flow,
		logger:  logger,
	}
}

// CreateEntryRequest is the body of the user config flow
type CreateEntryRequest struct {
	APIKey       string `json:"api_key" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ListEntries returns all ecobee entries
// GET /v1/entries
func (h *EntriesHandler) ListEntries(c *gin.Context) {
	entries, err := h.store.ListEntries(c.Request.Context(), core.Domain)
	if err != nil {
		h.logger.Error("Failed to list entries",
			"component", "api",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve entries",
			"code":  "INTERNAL_ERROR",
		})
		return
	}

	response := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		response = append(response, h.formatEntry(entry))
	}

	c.JSON(http.StatusOK, response)
}

// CreateEntry runs the user config flow
// POST /v1/entries
func (h *EntriesHandler) CreateEntry(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "api_key and refresh_token are required",
			"code":  "INVALID_REQUEST",
		})
		return
	}

	entry, err := h.flow.Create(c.Request.Context(), core.Credentials{
		APIKey:       req.APIKey,
		RefreshToken: req.RefreshToken,
	})
	if err != nil && entry == nil {
		switch {
		case errors.Is(err, core.ErrAlreadyConfigured):
			c.JSON(http.StatusConflict, gin.H{
				"error": "ecobee is already configured",
				"code":  "ALREADY_CONFIGURED",
			})
		case errors.Is(err, core.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  "INVALID_REQUEST",
			})
		case errors.Is(err, core.ErrAuthorizationRequired):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "ecobee rejected the supplied tokens",
				"code":  "INVALID_AUTH",
			})
		default:
			h.logger.Error("Failed to create entry",
				"component", "api",
				"error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create entry",
				"code":  "INTERNAL_ERROR",
			})
		}
		return
	}

	response := h.formatEntry(entry)
	if err != nil {
		// The entry is stored but not loaded; a reload retries the setup
		response["setup_error"] = err.Error()
	}
	c.JSON(http.StatusCreated, response)
}

// DeleteEntry unloads and removes an entry
// DELETE /v1/entries/:id
func (h *EntriesHandler) DeleteEntry(c *gin.Context) {
	entry, ok := h.getEntry(c)
	if !ok {
		return
	}

	// A partial unload still drops the coordinator, so setup runs regardless
	unloadErr := h.manager.UnloadEntry(c.Request.Context(), entry)
	if errors.Is(unloadErr, core.ErrEntryNotLoaded) {
		unloadErr = nil
	}
	if unloadErr != nil {
		h.logger.Warn("Entry did not unload cleanly; setting it up again",
			"component", "api",
			"entry_id", entry.ID,
			"error", unloadErr,
		)
	}

	if err := h.manager.SetupEntry(c.Request.Context(), entry); err != nil {
		response := gin.H{
			"error": err.Error(),
			"code":  "SETUP_FAILED",
			"state": "not_loaded",
		}
		if unloadErr != nil {
			response["unload_error"] = unloadErr.Error()
		}
		c.JSON(http.StatusBadGateway, response)
		return
	}

	response := h.formatEntry(entry)
	if unloadErr != nil {
		response["unload_error"] = unloadErr.Error()
	}
	c.JSON(http.StatusOK, response)
}

func (h *EntriesHandler) getEntry(c *gin.Context) (*core.Entry, bool) {
	entryID := c.Param("id")

	entry, err := h.store.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, core.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Entry not found",
				"code":  "ENTRY_NOT_FOUND",
			})
			return nil, false
		}

		h.logger.Error("Failed to get entry",
			"component", "api",
			"entry_id", entryID,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve entry",
			"code":  "INTERNAL_ERROR",
		})
		return nil, false
	}

	if entry.Domain != core.Domain {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Entry not found",
			"code":  "ENTRY_NOT_FOUND",
		})
		return nil, false
	}

	return entry, true
}

// formatEntry renders an entry without its credentials
func (h *EntriesHandler) formatEntry(entry *core.Entry) gin.H {
	state := "not_loaded"
	if _, loaded := h.manager.Coordinator(entry.ID); loaded {
		state = "loaded"
	}

	return gin.H{
		"id":         entry.ID,
		"domain":     entry.Domain,
		"title":      entry.Title,
		"source":     entry.Source,
		"state":      state,
		"created_at": entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		"updated_at": entry.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
