package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"residence-occupancy-backend/internal/conflict"
	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/stats"
)

// CreateRecord inserts a new record and assigns its ID. A record created
// directly in the occupied state takes its spot in the same transaction.
func (s *gormStore) CreateRecord(ctx context.Context, rec *occupancy.Record) (*occupancy.Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", occupancy.ErrValidation)
	}
	row := toModel(rec)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return repoErr("create record", err)
		}
		if err := appendTransition(tx, row.ID, "", row.State, row.LastActor, row.StateChangedAt); err != nil {
			return err
		}
		if rec.Resource.IsDiscrete() && occupancy.OccupiesResource(rec.Family, rec.State) {
			return occupySpot(tx, rec.Resource.ID, row.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough("create record", err)
	}
	return toDomain(row), nil
}

// GetRecord loads one record of the given family.
func (s *gormStore) GetRecord(ctx context.Context, family occupancy.Family, id string) (*occupancy.Record, error) {
	var row model.OccupancyRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND family = ?", id, string(family)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(family.String(), id)
	}
	if err != nil {
		return nil, repoErr("get record", err)
	}
	return toDomain(row), nil
}

// ApplyTransition persists next only if the stored record is still in prev.
// The audit row and the spot side effect are written in the same transaction.
func (s *gormStore) ApplyTransition(ctx context.Context, prev occupancy.State, next *occupancy.Record) error {
	row := toModel(next)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.OccupancyRecord{}).
			Where("id = ? AND state = ?", row.ID, string(prev)).
			Updates(map[string]any{
				"state":            row.State,
				"state_changed_at": row.StateChangedAt,
				"entry_time":       row.EntryTime,
				"exit_time":        row.ExitTime,
				"note":             row.Note,
				"rejection_reason": row.RejectionReason,
				"last_actor":       row.LastActor,
			})
		if res.Error != nil {
			return repoErr("update record", res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&model.OccupancyRecord{}).Where("id = ?", row.ID).Count(&n).Error; err != nil {
				return repoErr("recheck record", err)
			}
			if n == 0 {
				return notFound(row.Family, row.ID)
			}
			return fmt.Errorf("%w: %s is no longer %s", occupancy.ErrStaleState, row.ID, prev)
		}

		if err := appendTransition(tx, row.ID, string(prev), row.State, row.LastActor, row.StateChangedAt); err != nil {
			return err
		}

		if !next.Resource.IsDiscrete() {
			return nil
		}
		switch {
		case occupancy.OccupiesResource(next.Family, next.State):
			return occupySpot(tx, next.Resource.ID, row.ID)
		case occupancy.ReleasesResource(next.Family, prev, next.State):
			return releaseSpot(tx, next.Resource.ID, row.ID)
		}
		return nil
	})
	return passThrough("apply transition", err)
}

// ListRecords returns one page of family records matching filter, with
// stats over the whole filtered set. The filter is compiled once and the
// same WHERE clause drives every query.
func (s *gormStore) ListRecords(ctx context.Context, family occupancy.Family, filter Filter, today Day) (*Page, error) {
	f := filter.Normalize()
	where, err := f.compile(family)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", occupancy.ErrValidation, err)
	}
	scoped := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.OccupancyRecord{}).Where(where.sql, where.args...)
	}

	var groups []struct {
		State string
		N     int
	}
	if err := scoped().Select("state, COUNT(*) AS n").Group("state").Scan(&groups).Error; err != nil {
		return nil, repoErr("count records by state", err)
	}
	counts := make(map[occupancy.State]int, len(groups))
	for _, g := range groups {
		counts[occupancy.State(g.State)] = g.N
	}

	var completedToday int64
	if done := family.CompletionState(); done != "" {
		err := scoped().
			Where("state = ? AND exit_time >= ? AND exit_time < ?", string(done), today.Start.UTC(), today.End.UTC()).
			Count(&completedToday).Error
		if err != nil {
			return nil, repoErr("count completed today", err)
		}
	}
	st := stats.FromCounts(family, counts, int(completedToday))

	var rows []model.OccupancyRecord
	err = scoped().
		Order(f.orderBy()).
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, repoErr("list records", err)
	}

	items := make([]*occupancy.Record, len(rows))
	for i, r := range rows {
		items[i] = toDomain(r)
	}
	return &Page{
		Items:    items,
		Total:    st.Total,
		Page:     f.Page,
		PageSize: f.PageSize,
		Stats:    st,
	}, nil
}

// ListBookingWindows returns the claiming bookings of a facility on date.
func (s *gormStore) ListBookingWindows(ctx context.Context, facilityID, date, excludeID string) ([]conflict.Booking, error) {
	claims := occupancy.FamilyBooking.ClaimingStates()
	states := make([]string, len(claims))
	for i, c := range claims {
		states[i] = string(c)
	}

	q := s.db.WithContext(ctx).
		Where("family = ? AND resource_kind = ? AND resource_id = ? AND window_date = ?",
			string(occupancy.FamilyBooking), string(occupancy.ResourceFacility), facilityID, date).
		Where("state IN ?", states)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var rows []model.OccupancyRecord
	if err := q.Order("window_start ASC").Find(&rows).Error; err != nil {
		return nil, repoErr("list booking windows", err)
	}

	out := make([]conflict.Booking, 0, len(rows))
	for _, r := range rows {
		rec := toDomain(r)
		if rec.Window == nil {
			continue
		}
		out = append(out, conflict.Booking{ID: rec.ID, State: rec.State, Window: *rec.Window})
	}
	return out, nil
}

// FindClaim returns a record of any family that still holds ref, or nil.
func (s *gormStore) FindClaim(ctx context.Context, ref occupancy.ResourceRef, excludeID string) (*occupancy.Record, error) {
	claiming := squirrel.Or{}
	for _, f := range occupancy.Families() {
		states := f.ClaimingStates()
		names := make([]string, len(states))
		for i, st := range states {
			names[i] = string(st)
		}
		claiming = append(claiming, squirrel.And{squirrel.Eq{"family": string(f)}, squirrel.Eq{"state": names}})
	}
	where := squirrel.And{
		squirrel.Eq{"resource_kind": string(ref.Kind), "resource_id": ref.ID},
		claiming,
	}
	if excludeID != "" {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}
	sql, args, err := where.ToSql()
	if err != nil {
		return nil, repoErr("compile claim query", err)
	}

	var rows []model.OccupancyRecord
	if err := s.db.WithContext(ctx).Where(sql, args...).Order("created_at ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, repoErr("find claim", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomain(rows[0]), nil
}

// ListTransitions returns the audit trail of a record, oldest first.
func (s *gormStore) ListTransitions(ctx context.Context, recordID string) ([]model.OccupancyTransition, error) {
	var rows []model.OccupancyTransition
	if err := s.db.WithContext(ctx).Where("record_id = ?", recordID).Order("at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, repoErr("list transitions", err)
	}
	return rows, nil
}
