package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles all repositories for dependency wiring.
type Repositories struct {
	User       *UserRepository
	Sequence   *SequenceRepository
	Client     *ClientRepository
	Project    *ProjectRepository
	Equipment  *EquipmentRepository
	Document   *DocumentRepository
	Production *ProductionRepository
	Planning   *PlanningRepository
}

// NewRepositories creates the repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Sequence:   NewSequenceRepository(db),
		Client:     NewClientRepository(db),
		Project:    NewProjectRepository(db),
		Equipment:  NewEquipmentRepository(db),
		Document:   NewDocumentRepository(db),
		Production: NewProductionRepository(db),
		Planning:   NewPlanningRepository(db),
	}
}
