package server

import (
	"errors"
	"net/http"

	"Blockbuster/cache"
	"Blockbuster/core/playback"
	"Blockbuster/logger"

	"github.com/gorilla/mux"
)

// PlayHandler resolves a library entry and drives the Roku mapped to the
// requesting reader. This is the endpoint NFC readers POST to; it is
// unauthenticated because tag UUIDs are unguessable capability tokens.
//
// The protocol gives no feedback about the resulting screen state, so a 2xx
// only means every step was accepted by the device.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	entryID := mux.Vars(r)["id"]
	deviceID := r.URL.Query().Get("deviceId")

	entry, err := h.entryRepo.GetEntryByID(entryID)
	if err != nil {
		logger.Error("play: entry lookup failed", logger.String("entry", entryID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load entry")
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "Entry not found")
		return
	}

	rokuAddr, err := h.resolveRoku(deviceID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	if !cache.AcquireScanSlot(r.Context(), deviceID, entryID) {
		logger.Info("play: duplicate scan suppressed",
			logger.String("device", deviceID),
			logger.String("entry", entryID))
		respondJSON(w, http.StatusOK, map[string]string{"status": "debounced"})
		return
	}

	plugin, ok := h.registry.Get(entry.Content.ChannelID)
	if !ok {
		respondError(w, http.StatusBadRequest,
			"No channel plugin registered for channel "+entry.Content.ChannelID)
		return
	}

	cmd, err := plugin.BuildCommand(entry.Content)
	if err != nil {
		logger.Error("play: command build failed", logger.String("entry", entryID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to build playback command")
		return
	}

	h.hub.Publish(Event{
		Type:     EventPlayStarted,
		DeviceID: deviceID,
		EntryID:  entryID,
		Title:    entry.Name,
	})

	logger.Info("play: executing",
		logger.String("entry", entryID),
		logger.String("device", deviceID),
		logger.String("roku", rokuAddr),
		logger.String("channel", entry.Content.ChannelID))

	if err := h.executor.Execute(r.Context(), rokuAddr, cmd); err != nil {
		h.hub.Publish(Event{Type: EventPlayFailed, DeviceID: deviceID, EntryID: entryID, Title: entry.Name})
		var devErr *playback.DeviceError
		if errors.As(err, &devErr) {
			logger.Error("play: device call failed", logger.String("roku", rokuAddr), logger.ErrorField(err))
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
			// caller went away mid-sequence; nothing sensible to report
			return
		}
		logger.Error("play: execution failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Playback execution failed")
		return
	}

	h.hub.Publish(Event{Type: EventPlaySent, DeviceID: deviceID, EntryID: entryID, Title: entry.Name})

	// Success here means "all steps accepted", not "content on screen".
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "sent",
		"note":   "playback start cannot be confirmed by the device protocol",
	})
}

// resolveRoku maps a reader device id to a Roku address, falling back to the
// configured default when the reader is unknown or unset.
func (h *APIHandler) resolveRoku(deviceID string) (string, error) {
	if deviceID != "" {
		reader, err := h.readerRepo.GetReaderByDeviceID(deviceID)
		if err != nil {
			logger.Error("reader lookup failed", logger.String("device", deviceID), logger.ErrorField(err))
		} else if reader != nil && reader.RokuAddr != "" {
			return reader.RokuAddr, nil
		}
	}
	if h.cfg.DefaultRokuAddr != "" {
		return h.cfg.DefaultRokuAddr, nil
	}
	return "", errors.New("no Roku mapped for reader " + deviceID + " and no default configured")
}
