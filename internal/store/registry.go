package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"residence-occupancy-backend/internal/model"
)

// UpsertFacilities inserts or refreshes facilities by upstream ID.
func (s *gormStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) error {
	if len(facilities) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"site_id", "name", "capacity", "opens_at", "closes_at", "status", "updated_at"}),
	}).Create(&facilities).Error
	if err != nil {
		return repoErr("upsert facilities", err)
	}
	return nil
}

// UpsertBuilding inserts or refreshes a building and its spots. Occupancy
// columns of existing spots are left untouched.
func (s *gormStore) UpsertBuilding(ctx context.Context, building model.Building) error {
	spots := building.Spots
	building.Spots = nil
	for i := range spots {
		spots[i].BuildingID = building.ID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"site_id", "name", "updated_at"}),
		}).Create(&building).Error; err != nil {
			return repoErr("upsert building "+building.ID, err)
		}
		if len(spots) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"building_id", "floor", "code", "label", "seq", "updated_at"}),
		}).Create(&spots).Error; err != nil {
			return repoErr("upsert spots of building "+building.ID, err)
		}
		return nil
	})
	return passThrough("upsert building", err)
}

// GetFacility loads one facility.
func (s *gormStore) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	var f model.Facility
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("facility", id)
	}
	if err != nil {
		return nil, repoErr("get facility", err)
	}
	return &f, nil
}

// ListFacilities lists the facilities of a site, or all of them when siteID is empty.
func (s *gormStore) ListFacilities(ctx context.Context, siteID string) ([]model.Facility, error) {
	q := s.db.WithContext(ctx).Order("name ASC, id ASC")
	if siteID != "" {
		q = q.Where("site_id = ?", siteID)
	}
	var out []model.Facility
	if err := q.Find(&out).Error; err != nil {
		return nil, repoErr("list facilities", err)
	}
	return out, nil
}

// GetBuilding loads a building with its spots ordered by floor and code.
func (s *gormStore) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	var b model.Building
	err := s.db.WithContext(ctx).
		Preload("Spots", func(db *gorm.DB) *gorm.DB { return db.Order("floor ASC, code ASC") }).
		Where("id = ?", id).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("building", id)
	}
	if err != nil {
		return nil, repoErr("get building", err)
	}
	return &b, nil
}

// GetSpot loads one parking spot.
func (s *gormStore) GetSpot(ctx context.Context, id string) (*model.ParkingSpot, error) {
	var spot model.ParkingSpot
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&spot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("spot", id)
	}
	if err != nil {
		return nil, repoErr("get spot", err)
	}
	return &spot, nil
}

// BuildingOccupancy counts the spots of a building and how many are occupied.
func (s *gormStore) BuildingOccupancy(ctx context.Context, buildingID string) (Occupancy, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Building{}).Where("id = ?", buildingID).Count(&n).Error; err != nil {
		return Occupancy{}, repoErr("check building", err)
	}
	if n == 0 {
		return Occupancy{}, notFound("building", buildingID)
	}

	var row struct {
		Total    int
		Occupied int
	}
	err := s.db.WithContext(ctx).Model(&model.ParkingSpot{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN occupied THEN 1 ELSE 0 END), 0) AS occupied").
		Where("building_id = ?", buildingID).
		Scan(&row).Error
	if err != nil {
		return Occupancy{}, repoErr("count spots", err)
	}
	return Occupancy{BuildingID: buildingID, Total: row.Total, Occupied: row.Occupied}, nil
}
