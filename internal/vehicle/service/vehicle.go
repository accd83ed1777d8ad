package service

import (
	"context"

	"medtransport/internal/common/auth"
	"medtransport/internal/vehicle/model"
)

type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	List(ctx context.Context, page, size int) ([]model.Vehicle, int, error)
}

type VehicleService struct {
	repo VehicleRepository
}

func NewVehicleService(repo VehicleRepository) *VehicleService {
	return &VehicleService{repo: repo}
}

func (s *VehicleService) Get(ctx context.Context, _ auth.Actor, id string) (*model.Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}

// List is readable by any authenticated role; drivers use it to pick a
// vehicle for their assignment.
func (s *VehicleService) List(ctx context.Context, _ auth.Actor, page, size int) ([]model.Vehicle, int, error) {
	return s.repo.List(ctx, page, size)
}
