package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"residence-occupancy-backend/internal/model"
)

// FacilityResponse represents a bookable facility.
type FacilityResponse struct {
	ID       string `json:"id"`
	SiteID   string `json:"siteId"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	OpensAt  string `json:"opensAt,omitempty"`
	ClosesAt string `json:"closesAt,omitempty"`
	Status   string `json:"status"`
}

// SpotResponse represents one parking spot with its live occupancy.
type SpotResponse struct {
	ID         string  `json:"id"`
	Floor      int     `json:"floor"`
	Code       string  `json:"code"`
	Occupied   bool    `json:"occupied"`
	OccupantID *string `json:"occupantId,omitempty"`
}

// BuildingResponse represents a building and its spots.
type BuildingResponse struct {
	ID        string         `json:"id"`
	SiteID    string         `json:"siteId"`
	Name      string         `json:"name"`
	Spots     []SpotResponse `json:"spots"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ListFacilities handles GET /api/facilities?siteId=.
func (h *Handler) ListFacilities(c *gin.Context) {
	facilities, err := h.registry.ListFacilities(c.Request.Context(), c.Query("siteId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]FacilityResponse, len(facilities))
	for i, f := range facilities {
		out[i] = newFacilityResponse(f)
	}
	c.JSON(http.StatusOK, out)
}

// GetBuilding handles GET /api/buildings/{id}.
func (h *Handler) GetBuilding(c *gin.Context) {
	b, err := h.registry.GetBuilding(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := BuildingResponse{ID: b.ID, SiteID: b.SiteID, Name: b.Name, UpdatedAt: b.UpdatedAt, Spots: make([]SpotResponse, len(b.Spots))}
	for i, s := range b.Spots {
		resp.Spots[i] = SpotResponse{ID: s.ID, Floor: s.Floor, Code: s.Code, Occupied: s.Occupied, OccupantID: s.OccupantID}
	}
	c.JSON(http.StatusOK, resp)
}

// GetBuildingOccupancy handles GET /api/buildings/{id}/occupancy.
func (h *Handler) GetBuildingOccupancy(c *gin.Context) {
	summary, err := h.registry.BuildingOccupancy(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func newFacilityResponse(f model.Facility) FacilityResponse {
	return FacilityResponse{
		ID:       f.ID,
		SiteID:   f.SiteID,
		Name:     f.Name,
		Capacity: f.Capacity,
		OpensAt:  f.OpensAt,
		ClosesAt: f.ClosesAt,
		Status:   f.Status,
	}
}
