package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-service/internal/domain"
)

// SlotRequestFilter captures list parameters for slot requests.
type SlotRequestFilter struct {
	UserID *string
	Status *domain.ApprovalStatus
	Search string
	Limit  int
	Offset int
}

// SlotRequestRepository encapsulates slot request persistence including the approval transaction.
type SlotRequestRepository interface {
	Create(ctx context.Context, req *domain.SlotRequest) error
	Update(ctx context.Context, req *domain.SlotRequest) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.SlotRequest, error)
	List(ctx context.Context, filter SlotRequestFilter) ([]domain.SlotRequest, int, error)
	Approve(ctx context.Context, requestID, slotID string) (*domain.SlotRequest, error)
	Reject(ctx context.Context, requestID, reason string) (*domain.SlotRequest, error)
	ListExpired(ctx context.Context, before time.Time) ([]domain.SlotRequest, error)
	Release(ctx context.Context, requestID string, at time.Time) error
}

type slotRequestRepository struct {
	pool *pgxpool.Pool
}

// NewSlotRequestRepository instantiates the repository.
func NewSlotRequestRepository(pool *pgxpool.Pool) SlotRequestRepository {
	return &slotRequestRepository{pool: pool}
}

const slotRequestSelect = `
        SELECT r.id::text, r.user_id::text, u.name, r.vehicle_id::text, v.plate_number, v.vehicle_type,
               r.preferred_location, r.start_date, r.end_date, r.notes, r.status,
               r.assigned_slot_id::text, s.slot_number, r.rejection_reason, r.released_at,
               r.created_at, r.updated_at
        FROM slot_requests r
        JOIN users u ON u.id = r.user_id
        JOIN vehicles v ON v.id = r.vehicle_id
        LEFT JOIN parking_slots s ON s.id = r.assigned_slot_id`

const slotRequestFrom = `
        FROM slot_requests r
        JOIN users u ON u.id = r.user_id
        JOIN vehicles v ON v.id = r.vehicle_id
        LEFT JOIN parking_slots s ON s.id = r.assigned_slot_id`

func (r *slotRequestRepository) Create(ctx context.Context, req *domain.SlotRequest) error {
	const query = `
        INSERT INTO slot_requests (user_id, vehicle_id, preferred_location, start_date, end_date, notes, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id::text`
	var id string
	err := r.pool.QueryRow(ctx, query,
		req.UserID,
		req.VehicleID,
		req.PreferredLocation,
		req.StartDate,
		req.EndDate,
		req.Notes,
		req.Status,
	).Scan(&id)
	if err != nil {
		return translate(err)
	}
	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*req = *stored
	return nil
}

func (r *slotRequestRepository) Update(ctx context.Context, req *domain.SlotRequest) error {
	const query = `
        UPDATE slot_requests SET vehicle_id=$1, preferred_location=$2, start_date=$3, end_date=$4,
            notes=$5, status=$6, rejection_reason=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		req.VehicleID,
		req.PreferredLocation,
		req.StartDate,
		req.EndDate,
		req.Notes,
		req.Status,
		req.RejectionReason,
		req.ID,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	stored, err := r.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	*req = *stored
	return nil
}

// Delete removes the request and frees its slot when it still holds one.
func (r *slotRequestRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var slotID *string
	var releasedAt *time.Time
	err = tx.QueryRow(ctx,
		`SELECT assigned_slot_id::text, released_at FROM slot_requests WHERE id=$1 FOR UPDATE`, id,
	).Scan(&slotID, &releasedAt)
	if err != nil {
		return translate(err)
	}
	if slotID != nil && releasedAt == nil {
		if err := freeSlot(ctx, tx, *slotID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM slot_requests WHERE id=$1`, id); err != nil {
		return translate(err)
	}
	return tx.Commit(ctx)
}

func (r *slotRequestRepository) GetByID(ctx context.Context, id string) (*domain.SlotRequest, error) {
	var req domain.SlotRequest
	if err := scanSlotRequest(r.pool.QueryRow(ctx, slotRequestSelect+` WHERE r.id=$1`, id), &req); err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *slotRequestRepository) List(ctx context.Context, filter SlotRequestFilter) ([]domain.SlotRequest, int, error) {
	var where whereBuilder
	if filter.UserID != nil {
		where.add("r.user_id=$%d", *filter.UserID)
	}
	if filter.Status != nil {
		where.add("r.status=$%d", *filter.Status)
	}
	where.search(filter.Search, "v.plate_number", "u.name", "r.preferred_location", "r.status", "COALESCE(s.slot_number,'')")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+slotRequestFrom+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset, domain.DefaultPageSize)
	query := fmt.Sprintf(`%s%s ORDER BY r.created_at DESC LIMIT %d OFFSET %d`, slotRequestSelect, where.sql(), limit, offset)

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.SlotRequest{}
	for rows.Next() {
		var req domain.SlotRequest
		if err := scanSlotRequest(rows, &req); err != nil {
			return nil, 0, err
		}
		result = append(result, req)
	}
	return result, total, rows.Err()
}

// Approve binds slotID to the request in a single transaction. The request must be PENDING
// and the slot AVAILABLE with a vehicle type matching the request's vehicle.
func (r *slotRequestRepository) Approve(ctx context.Context, requestID, slotID string) (*domain.SlotRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		status      domain.ApprovalStatus
		vehicleType domain.VehicleType
		userID      string
		vehicleID   string
		plate       string
	)
	err = tx.QueryRow(ctx, `
        SELECT r.status, v.vehicle_type, r.user_id::text, r.vehicle_id::text, v.plate_number
        FROM slot_requests r JOIN vehicles v ON v.id = r.vehicle_id
        WHERE r.id=$1
        FOR UPDATE OF r`, requestID,
	).Scan(&status, &vehicleType, &userID, &vehicleID, &plate)
	if err != nil {
		return nil, translate(err)
	}
	if !domain.CanTransition(domain.ActionApprove, status) {
		return nil, ErrInvalidState
	}

	var slotStatus domain.SlotStatus
	var slotType domain.VehicleType
	err = tx.QueryRow(ctx, `SELECT status, vehicle_type FROM parking_slots WHERE id=$1 FOR UPDATE`, slotID).
		Scan(&slotStatus, &slotType)
	if err != nil {
		return nil, translate(err)
	}
	if slotStatus != domain.SlotStatusAvailable {
		return nil, ErrSlotUnavailable
	}
	if slotType != vehicleType {
		return nil, ErrTypeMismatch
	}

	if _, err := tx.Exec(ctx, `
        UPDATE parking_slots
        SET status='OCCUPIED', assigned_user_id=$2, assigned_vehicle_id=$3, assigned_plate=$4, updated_at=NOW()
        WHERE id=$1`, slotID, userID, vehicleID, plate); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
        UPDATE slot_requests
        SET status='APPROVED', assigned_slot_id=$2, rejection_reason='', updated_at=NOW()
        WHERE id=$1`, requestID, slotID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, requestID)
}

func (r *slotRequestRepository) Reject(ctx context.Context, requestID, reason string) (*domain.SlotRequest, error) {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE slot_requests SET status='REJECTED', rejection_reason=$2, updated_at=NOW()
        WHERE id=$1 AND status='PENDING'`, requestID, reason)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, requestID); err != nil {
			return nil, err
		}
		return nil, ErrInvalidState
	}
	return r.GetByID(ctx, requestID)
}

// ListExpired returns approved requests still holding a slot whose end date is before the given day.
func (r *slotRequestRepository) ListExpired(ctx context.Context, before time.Time) ([]domain.SlotRequest, error) {
	rows, err := r.pool.Query(ctx, slotRequestSelect+`
        WHERE r.status='APPROVED' AND r.assigned_slot_id IS NOT NULL AND r.released_at IS NULL AND r.end_date < $1
        ORDER BY r.end_date ASC`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlotRequest
	for rows.Next() {
		var req domain.SlotRequest
		if err := scanSlotRequest(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

// Release frees the slot held by an approved request and stamps released_at.
func (r *slotRequestRepository) Release(ctx context.Context, requestID string, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var slotID *string
	err = tx.QueryRow(ctx, `
        UPDATE slot_requests SET released_at=$2, updated_at=NOW()
        WHERE id=$1 AND released_at IS NULL
        RETURNING assigned_slot_id::text`, requestID, at,
	).Scan(&slotID)
	if err != nil {
		return translate(err)
	}
	if slotID != nil {
		if err := freeSlot(ctx, tx, *slotID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func freeSlot(ctx context.Context, tx pgx.Tx, slotID string) error {
	_, err := tx.Exec(ctx, `
        UPDATE parking_slots
        SET status='AVAILABLE', assigned_user_id=NULL, assigned_vehicle_id=NULL, assigned_plate=NULL, updated_at=NOW()
        WHERE id=$1 AND status='OCCUPIED'`, slotID)
	return err
}

func scanSlotRequest(row pgx.Row, req *domain.SlotRequest) error {
	var slotID, slotNumber *string
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.UserName,
		&req.VehicleID,
		&req.VehiclePlate,
		&req.VehicleType,
		&req.PreferredLocation,
		&req.StartDate,
		&req.EndDate,
		&req.Notes,
		&req.Status,
		&slotID,
		&slotNumber,
		&req.RejectionReason,
		&req.ReleasedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return err
	}
	if slotID != nil {
		req.AssignedSlot = &domain.AssignedSlot{ID: *slotID}
		if slotNumber != nil {
			req.AssignedSlot.SlotNumber = *slotNumber
		}
	}
	return nil
}
