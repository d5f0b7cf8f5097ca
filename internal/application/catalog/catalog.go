package catalog

import (
	"hatchery-backend/internal/domain"

	"gorm.io/gorm"
)

// Catalog groups the reference table services.
type Catalog struct {
	Flocks          *Service[domain.Flock]
	Breeds          *Service[domain.Breed]
	Suppliers       *Service[domain.Supplier]
	Staff           *Service[domain.Staff]
	EggProcurements *Service[domain.EggProcurement]
	ChickProcessing *Service[domain.ChickProcessing]
	EggDisposals    *Service[domain.EggDisposal]
}

func New(db *gorm.DB) (*Catalog, error) {
	var (
		c   Catalog
		err error
	)
	if c.Flocks, err = NewService[domain.Flock](db, "flock_number"); err != nil {
		return nil, err
	}
	if c.Breeds, err = NewService[domain.Breed](db, "name"); err != nil {
		return nil, err
	}
	if c.Suppliers, err = NewService[domain.Supplier](db, "name"); err != nil {
		return nil, err
	}
	if c.Staff, err = NewService[domain.Staff](db, "fullname"); err != nil {
		return nil, err
	}
	c.Staff.Prepare = hashStaffPassword
	if c.EggProcurements, err = NewService[domain.EggProcurement](db, "-received_on"); err != nil {
		return nil, err
	}
	if c.ChickProcessing, err = NewService[domain.ChickProcessing](db, "-processed_on"); err != nil {
		return nil, err
	}
	if c.EggDisposals, err = NewService[domain.EggDisposal](db, "-disposed_on"); err != nil {
		return nil, err
	}
	return &c, nil
}

// Models lists every catalog model, for migrations.
func Models() []any {
	return []any{
		&domain.Flock{}, &domain.Breed{}, &domain.Supplier{}, &domain.Staff{},
		&domain.EggProcurement{}, &domain.ChickProcessing{}, &domain.EggDisposal{},
	}
}
