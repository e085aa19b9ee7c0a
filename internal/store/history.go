package store

import (
	"time"

	"gorm.io/gorm"

	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
)

// appendTransition writes one row of the audit trail.
func appendTransition(tx *gorm.DB, recordID, from, to, actor string, at time.Time) error {
	row := model.OccupancyTransition{
		RecordID:  recordID,
		FromState: from,
		ToState:   to,
		Actor:     actor,
		At:        at.UTC(),
	}
	if err := tx.Create(&row).Error; err != nil {
		return repoErr("append transition for record "+recordID, err)
	}
	return nil
}

// occupySpot marks a spot held by recordID. It refuses to take a spot that
// another record already holds.
func occupySpot(tx *gorm.DB, spotID, recordID string) error {
	res := tx.Model(&model.ParkingSpot{}).
		Where("id = ? AND (occupied = ? OR occupant_id = ?)", spotID, false, recordID).
		Updates(map[string]any{"occupied": true, "occupant_id": recordID})
	if res.Error != nil {
		return repoErr("occupy spot "+spotID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var spot model.ParkingSpot
	if err := tx.Where("id = ?", spotID).Limit(1).Find(&spot).Error; err != nil {
		return repoErr("recheck spot "+spotID, err)
	}
	if spot.ID == "" {
		return notFound("spot", spotID)
	}
	occupant := ""
	if spot.OccupantID != nil {
		occupant = *spot.OccupantID
	}
	return &occupancy.ConflictError{
		Cause:      occupancy.CauseOccupied,
		Resource:   occupancy.ResourceRef{Kind: occupancy.ResourceSpot, ID: spotID},
		OccupantID: occupant,
		Reason:     "spot is already occupied",
	}
}

// releaseSpot frees a spot if recordID is still its occupant.
func releaseSpot(tx *gorm.DB, spotID, recordID string) error {
	err := tx.Model(&model.ParkingSpot{}).
		Where("id = ? AND occupant_id = ?", spotID, recordID).
		Updates(map[string]any{"occupied": false, "occupant_id": nil}).Error
	if err != nil {
		return repoErr("release spot "+spotID, err)
	}
	return nil
}
