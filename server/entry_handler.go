package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"Blockbuster/logger"
	"Blockbuster/model"
	"Blockbuster/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxCoverSize caps cover-art uploads at 5 MB.
const maxCoverSize = 5 << 20

// GetEntriesHandler lists all library entries.
func (h *APIHandler) GetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryRepo.GetAllEntries()
	if err != nil {
		logger.Error("failed to list entries", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list entries")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetEntryHandler returns one entry by UUID.
func (h *APIHandler) GetEntryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entry, err := h.entryRepo.GetEntryByID(id)
	if err != nil {
		logger.Error("failed to load entry", logger.String("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load entry")
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "Entry not found")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *APIHandler) validateEntry(entry *model.LibraryEntry) string {
	if strings.TrimSpace(entry.Name) == "" {
		return "Name is required"
	}
	if entry.Content.ChannelID == "" || entry.Content.ContentID == "" {
		return "Channel id and content id are required"
	}
	if _, ok := h.registry.Get(entry.Content.ChannelID); !ok {
		return "Unknown channel id: " + entry.Content.ChannelID
	}
	return ""
}

// CreateEntryHandler stores a new entry and returns it with its generated id.
func (h *APIHandler) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	var entry model.LibraryEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := h.validateEntry(&entry); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	entry.ID = "" // ids are always server-generated

	id, err := h.entryRepo.CreateEntry(&entry)
	if err != nil {
		logger.Error("failed to create entry", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create entry")
		return
	}

	created, err := h.entryRepo.GetEntryByID(id)
	if err != nil || created == nil {
		respondError(w, http.StatusInternalServerError, "Failed to load created entry")
		return
	}
	userID, _ := GetUserIDFromContext(r.Context())
	logger.Info("entry created",
		logger.String("id", id),
		logger.String("channel", created.Content.ChannelID),
		logger.Int64("user", userID))
	respondJSON(w, http.StatusCreated, created)
}

// UpdateEntryHandler replaces the mutable fields of an entry.
func (h *APIHandler) UpdateEntryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	var entry model.LibraryEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry.ID = id
	if msg := h.validateEntry(&entry); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.entryRepo.UpdateEntry(&entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Entry not found")
			return
		}
		logger.Error("failed to update entry", logger.String("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to update entry")
		return
	}

	updated, _ := h.entryRepo.GetEntryByID(id)
	respondJSON(w, http.StatusOK, updated)
}

// DeleteEntryHandler soft-deletes an entry.
func (h *APIHandler) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID, _ := GetUserIDFromContext(r.Context())
	if err := h.entryRepo.DeleteEntry(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Entry not found")
			return
		}
		logger.Error("failed to delete entry", logger.String("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete entry")
		return
	}
	logger.Info("entry deleted", logger.String("id", id), logger.Int64("user", userID))
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// UploadCoverHandler stores cover art for an entry in object storage.
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entry, err := h.entryRepo.GetEntryByID(id)
	if err != nil || entry == nil {
		respondError(w, http.StatusNotFound, "Entry not found")
		return
	}

	if err := r.ParseMultipartForm(maxCoverSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing cover file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusBadRequest, "Cover must be an image")
		return
	}

	objectPath, err := storage.UploadCover(r.Context(), id, file, header.Size, contentType)
	if err != nil {
		logger.Error("cover upload failed", logger.String("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store cover")
		return
	}
	if err := h.entryRepo.UpdateEntryCoverArtPath(id, objectPath); err != nil {
		logger.Error("cover path update failed", logger.String("id", id), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store cover")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"coverArtPath": objectPath})
}

// ServeCoverHandler streams stored cover art out of object storage.
func (h *APIHandler) ServeCoverHandler(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/static/")
	if !strings.HasPrefix(objectPath, "covers/") {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	object, err := storage.FetchObject(r.Context(), objectPath)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, object); err != nil {
		logger.Warn("error serving cover", logger.ErrorField(err))
	}
}
