package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-service/internal/domain"
)

// VehicleFilter captures list parameters for vehicles.
type VehicleFilter struct {
	OwnerID *string
	Status  *domain.ApprovalStatus
	Search  string
	Limit   int
	Offset  int
}

// VehicleRepository encapsulates vehicle persistence.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, int, error)
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository instantiates the repository.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id::text, owner_id::text, plate_number, vehicle_type, size, color, model,
               status, rejection_reason, created_at, updated_at`

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        INSERT INTO vehicles (owner_id, plate_number, vehicle_type, size, color, model, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id::text, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		vehicle.OwnerID,
		vehicle.PlateNumber,
		vehicle.VehicleType,
		vehicle.Size,
		vehicle.Attributes.Color,
		vehicle.Attributes.Model,
		vehicle.Status,
	).Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
	return translate(err)
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	const query = `
        UPDATE vehicles SET plate_number=$1, vehicle_type=$2, size=$3, color=$4, model=$5,
            status=$6, rejection_reason=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		vehicle.PlateNumber,
		vehicle.VehicleType,
		vehicle.Size,
		vehicle.Attributes.Color,
		vehicle.Attributes.Model,
		vehicle.Status,
		vehicle.RejectionReason,
		vehicle.ID,
	).Scan(&vehicle.UpdatedAt)
	return translate(err)
}

// Delete removes the vehicle and frees any slot it currently holds.
func (r *vehicleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `
        UPDATE parking_slots
        SET status='AVAILABLE', assigned_user_id=NULL, assigned_vehicle_id=NULL, assigned_plate=NULL, updated_at=NOW()
        WHERE assigned_vehicle_id=$1`, id); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	row := r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id)
	if err := scanVehicle(row, &vehicle); err != nil {
		return nil, translate(err)
	}
	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, int, error) {
	var where whereBuilder
	if filter.OwnerID != nil {
		where.add("owner_id=$%d", *filter.OwnerID)
	}
	if filter.Status != nil {
		where.add("status=$%d", *filter.Status)
	}
	where.search(filter.Search, "plate_number", "vehicle_type", "color", "model", "status")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset, domain.DefaultPageSize)
	query := fmt.Sprintf(`SELECT %s FROM vehicles%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		vehicleColumns, where.sql(), limit, offset)

	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.Vehicle{}
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := scanVehicle(rows, &vehicle); err != nil {
			return nil, 0, err
		}
		result = append(result, vehicle)
	}
	return result, total, rows.Err()
}

func scanVehicle(row pgx.Row, vehicle *domain.Vehicle) error {
	return row.Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.PlateNumber,
		&vehicle.VehicleType,
		&vehicle.Size,
		&vehicle.Attributes.Color,
		&vehicle.Attributes.Model,
		&vehicle.Status,
		&vehicle.RejectionReason,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
}
