package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// AssetHandler serves the asset read API.
type AssetHandler struct {
	Assets ports.AssetRepository
	Vulns  ports.VulnerabilityRepository
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(assets ports.AssetRepository, vulns ports.VulnerabilityRepository) *AssetHandler {
	return &AssetHandler{Assets: assets, Vulns: vulns}
}

// HandleList returns one page of assets, highest priority first.
func (h *AssetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	assets, meta, err := h.Assets.ListAssetsByPriority(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	writeJSON(w, http.StatusOK, pagedResponse{Data: assets, Meta: meta})
}

// assetDetail is the single-asset response, its findings paginated.
type assetDetail struct {
	Asset           *domain.Asset          `json:"asset"`
	Vulnerabilities []domain.Vulnerability `json:"vulnerabilities"`
	Meta            domain.PageMeta        `json:"meta"`
}

// HandleGet returns one asset with a page of its findings, worst first.
func (h *AssetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	asset, err := h.Assets.GetAssetByID(r.Context(), uint(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load asset")
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	page := pageFromQuery(r)
	vulns, meta, err := h.Vulns.ListAssetVulnerabilities(r.Context(), asset.ID, page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load asset vulnerabilities")
		return
	}

	writeJSON(w, http.StatusOK, assetDetail{
		Asset:           asset,
		Vulnerabilities: vulns,
		Meta:            meta,
	})
}
