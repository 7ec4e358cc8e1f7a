package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"Blockbuster/core/roku"
	"Blockbuster/logger"
	"Blockbuster/model"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// DiscoverDevicesHandler runs an SSDP scan for Rokus on the local network and
// merges in the configured default.
func (h *APIHandler) DiscoverDevicesHandler(w http.ResponseWriter, r *http.Request) {
	devices, err := roku.Discover(r.Context(), 3*time.Second)
	if err != nil && len(devices) == 0 {
		logger.Warn("device discovery failed", logger.ErrorField(err))
	}

	if h.cfg.DefaultRokuAddr != "" {
		found := false
		for _, d := range devices {
			if d.Addr == h.cfg.DefaultRokuAddr {
				found = true
				break
			}
		}
		if !found {
			devices = append(devices, roku.Device{Addr: h.cfg.DefaultRokuAddr})
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}

// GetReadersHandler lists registered NFC readers.
func (h *APIHandler) GetReadersHandler(w http.ResponseWriter, r *http.Request) {
	readers, err := h.readerRepo.GetAllReaders()
	if err != nil {
		logger.Error("failed to list readers", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list readers")
		return
	}
	respondJSON(w, http.StatusOK, readers)
}

// UpsertReaderHandler registers or updates a reader's Roku mapping.
func (h *APIHandler) UpsertReaderHandler(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]
	var req struct {
		Name     string `json:"name"`
		RokuAddr string `json:"rokuAddr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.RokuAddr) == "" {
		respondError(w, http.StatusBadRequest, "rokuAddr is required")
		return
	}

	reader := &model.Reader{DeviceID: deviceID, Name: req.Name, RokuAddr: req.RokuAddr}
	if err := h.readerRepo.UpsertReader(reader); err != nil {
		logger.Error("reader upsert failed", logger.String("device", deviceID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to save reader")
		return
	}
	respondJSON(w, http.StatusOK, reader)
}

// DeleteReaderHandler removes a reader registration.
func (h *APIHandler) DeleteReaderHandler(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["deviceId"]
	if err := h.readerRepo.DeleteReader(deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "Reader not found")
			return
		}
		logger.Error("reader delete failed", logger.String("device", deviceID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete reader")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": deviceID})
}
