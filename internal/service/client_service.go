package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
)

// ClientService manages werf clients.
type ClientService struct {
	clientRepo *repository.ClientRepository
	seqRepo    *repository.SequenceRepository
}

// NewClientService creates the client service.
func NewClientService(clientRepo *repository.ClientRepository, seqRepo *repository.SequenceRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo, seqRepo: seqRepo}
}

// CreateClientRequest carries the fields of a new client.
type CreateClientRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	VATNumber   string `json:"vat_number"`
	KVKNumber   string `json:"kvk_number"`
	Notes       string `json:"notes"`
}

// UpdateClientRequest carries a partial update; empty fields are kept.
type UpdateClientRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	VATNumber   string `json:"vat_number"`
	KVKNumber   string `json:"kvk_number"`
	Notes       string `json:"notes"`
}

// ClientListResult is one page of clients.
type ClientListResult struct {
	Items      []entity.Client `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Create allocates a client number (CLI-YYYY-NNNN) and inserts the client.
func (s *ClientService) Create(ctx context.Context, userID string, req *CreateClientRequest) (*entity.Client, error) {
	number, err := s.seqRepo.Next(ctx, entity.SequenceClient)
	if err != nil {
		return nil, fmt.Errorf("allocate client number: %w", err)
	}

	now := time.Now()
	client := &entity.Client{
		ID:           uuid.New().String()[:32],
		ClientNumber: number,
		Name:         req.Name,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		VATNumber:    req.VATNumber,
		KVKNumber:    req.KVKNumber,
		Status:       entity.ClientStatusActive,
		Notes:        req.Notes,
		Version:      1,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return client, nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*entity.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// Update merges non-empty fields and increments the version counter.
func (s *ClientService) Update(ctx context.Context, id string, req *UpdateClientRequest) (*entity.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	if req.ContactName != "" {
		client.ContactName = req.ContactName
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.Address != "" {
		client.Address = req.Address
	}
	if req.City != "" {
		client.City = req.City
	}
	if req.PostalCode != "" {
		client.PostalCode = req.PostalCode
	}
	if req.Country != "" {
		client.Country = req.Country
	}
	if req.VATNumber != "" {
		client.VATNumber = req.VATNumber
	}
	if req.KVKNumber != "" {
		client.KVKNumber = req.KVKNumber
	}
	if req.Notes != "" {
		client.Notes = req.Notes
	}

	client.Version++
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	return client, nil
}

// Archive retires a client without removing it.
func (s *ClientService) Archive(ctx context.Context, id, actor, reason string) error {
	return s.clientRepo.Archive(ctx, id, actor, reason)
}

// List returns a page of clients; keyword searches name, email and number.
func (s *ClientService) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) (*ClientListResult, error) {
	clients, total, err := s.clientRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &ClientListResult{
		Items:      clients,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListActive returns all non-archived clients, for pickers.
func (s *ClientService) ListActive(ctx context.Context) ([]entity.Client, error) {
	return s.clientRepo.ListActive(ctx)
}
