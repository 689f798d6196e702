package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-service/internal/domain"
)

// SlotFilter captures list parameters for parking slots.
type SlotFilter struct {
	Status      *domain.SlotStatus
	VehicleType *domain.VehicleType
	Search      string
	Limit       int
	Offset      int
}

// ParkingSlotRepository encapsulates slot inventory persistence.
type ParkingSlotRepository interface {
	Create(ctx context.Context, slot *domain.ParkingSlot) error
	CreateMany(ctx context.Context, slots []*domain.ParkingSlot) error
	Update(ctx context.Context, slot *domain.ParkingSlot) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.ParkingSlot, error)
	List(ctx context.Context, filter SlotFilter) ([]domain.ParkingSlot, int, error)
	SlotNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

type parkingSlotRepository struct {
	pool *pgxpool.Pool
}

// NewParkingSlotRepository instantiates the repository.
func NewParkingSlotRepository(pool *pgxpool.Pool) ParkingSlotRepository {
	return &parkingSlotRepository{pool: pool}
}

const slotColumns = `id::text, slot_number, vehicle_type, size, location, status,
               assigned_user_id::text, assigned_vehicle_id::text, assigned_plate, created_at, updated_at`

const insertSlot = `
        INSERT INTO parking_slots (slot_number, vehicle_type, size, location, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id::text, created_at, updated_at`

func (r *parkingSlotRepository) Create(ctx context.Context, slot *domain.ParkingSlot) error {
	err := r.pool.QueryRow(ctx, insertSlot,
		slot.SlotNumber,
		slot.VehicleType,
		slot.Size,
		slot.Location,
		slot.Status,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	return translate(err)
}

// CreateMany inserts all slots or none.
func (r *parkingSlotRepository) CreateMany(ctx context.Context, slots []*domain.ParkingSlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, slot := range slots {
		err := tx.QueryRow(ctx, insertSlot,
			slot.SlotNumber,
			slot.VehicleType,
			slot.Size,
			slot.Location,
			slot.Status,
		).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
		if err != nil {
			return translate(err)
		}
	}
	return tx.Commit(ctx)
}

func (r *parkingSlotRepository) Update(ctx context.Context, slot *domain.ParkingSlot) error {
	const query = `
        UPDATE parking_slots SET slot_number=$1, vehicle_type=$2, size=$3, location=$4, status=$5,
            assigned_user_id=$6, assigned_vehicle_id=$7, assigned_plate=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`

	var userID, vehicleID, plate *string
	if slot.AssignedTo != nil {
		userID = &slot.AssignedTo.UserID
		vehicleID = &slot.AssignedTo.VehicleID
		plate = &slot.AssignedTo.VehiclePlate
	}
	err := r.pool.QueryRow(ctx, query,
		slot.SlotNumber,
		slot.VehicleType,
		slot.Size,
		slot.Location,
		slot.Status,
		userID,
		vehicleID,
		plate,
		slot.ID,
	).Scan(&slot.UpdatedAt)
	return translate(err)
}

func (r *parkingSlotRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM parking_slots WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *parkingSlotRepository) GetByID(ctx context.Context, id string) (*domain.ParkingSlot, error) {
	var slot domain.ParkingSlot
	row := r.pool.QueryRow(ctx, `SELECT `+slotColumns+` FROM parking_slots WHERE id=$1`, id)
	if err := scanSlot(row, &slot); err != nil {
		return nil, translate(err)
	}
	return &slot, nil
}

func (r *parkingSlotRepository) List(ctx context.Context, filter SlotFilter) ([]domain.ParkingSlot, int, error) {
	var where whereBuilder
	if filter.Status != nil {
		where.add("status=$%d", *filter.Status)
	}
	if filter.VehicleType != nil {
		where.add("vehicle_type=$%d", *filter.VehicleType)
	}
	where.search(filter.Search, "slot_number", "location", "vehicle_type", "status", "COALESCE(assigned_plate,'')")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM parking_slots`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset, domain.DefaultPageSize)
	query := fmt.Sprintf(`SELECT %s FROM parking_slots%s ORDER BY slot_number ASC LIMIT %d OFFSET %d`,
		slotColumns, where.sql(), limit, offset)

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.ParkingSlot{}
	for rows.Next() {
		var slot domain.ParkingSlot
		if err := scanSlot(rows, &slot); err != nil {
			return nil, 0, err
		}
		result = append(result, slot)
	}
	return result, total, rows.Err()
}

// SlotNumbersWithPrefix lists existing numbers shaped like PREFIX-NN.
func (r *parkingSlotRepository) SlotNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT slot_number FROM parking_slots WHERE slot_number LIKE $1`, prefix+"-%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func scanSlot(row pgx.Row, slot *domain.ParkingSlot) error {
	var userID, vehicleID, plate *string
	if err := row.Scan(
		&slot.ID,
		&slot.SlotNumber,
		&slot.VehicleType,
		&slot.Size,
		&slot.Location,
		&slot.Status,
		&userID,
		&vehicleID,
		&plate,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	); err != nil {
		return err
	}
	if userID != nil {
		slot.AssignedTo = &domain.SlotAssignment{UserID: *userID}
		if vehicleID != nil {
			slot.AssignedTo.VehicleID = *vehicleID
		}
		if plate != nil {
			slot.AssignedTo.VehiclePlate = *plate
		}
	}
	return nil
}
