package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"Blockbuster/cache"
	"Blockbuster/core/channel"
	"Blockbuster/core/search"
	"Blockbuster/logger"
	"Blockbuster/model"
)

// SearchHandler runs the aggregated search across channel plugins and the web
// provider. Query params: q (required), limit, plugin.
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	plugin := r.URL.Query().Get("plugin")

	if cached := cache.GetCachedSearch(r.Context(), query, limit, plugin); cached != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"results": cached, "cached": true})
		return
	}

	results, err := h.aggregator.Search(r.Context(), query, limit, plugin)
	if err != nil {
		if errors.Is(err, search.ErrUnknownPlugin) {
			respondError(w, http.StatusNotFound, "Unknown search plugin: "+plugin)
			return
		}
		logger.Error("search failed", logger.String("query", query), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	cache.CacheSearch(r.Context(), query, limit, plugin, results)
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ExtractHandler parses a pasted browser URL into typed content. A miss is a
// normal response with a null content field, not an error.
func (h *APIHandler) ExtractHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	var content *model.Content
	for _, p := range h.registry.All() {
		extractor, ok := p.(channel.URLExtractor)
		if !ok {
			continue
		}
		if c := extractor.ExtractFromURL(req.URL, req.Title, req.Description); c != nil {
			content = c
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"content": content})
}
