package services

import (
	"database/sql"
	"errors"
	"fmt"

	"buensabor_backend/internal/models"
	"buensabor_backend/internal/repositories"
)

// CustomerRequest is the DTO for creating or updating a customer profile.
type CustomerRequest struct {
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

// CustomerService defines the interface for customer business logic.
type CustomerService interface {
	CreateCustomer(req CustomerRequest) (*models.Customer, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	GetCustomerByUserID(userID int64) (*models.Customer, error)
	GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error)
	UpdateCustomer(id int64, req CustomerRequest) (*models.Customer, error)
	DeleteCustomer(id int64) error
	GetCustomerAddresses(customerID int64) ([]models.Address, error)
	GetLocalities() ([]models.Locality, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	addressRepo  repositories.AddressRepository
	db           *sql.DB
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(customerRepo repositories.CustomerRepository, addressRepo repositories.AddressRepository, db *sql.DB) CustomerService {
	return &customerService{customerRepo: customerRepo, addressRepo: addressRepo, db: db}
}

func (s *customerService) CreateCustomer(req CustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}
	if _, err := s.customerRepo.CreateCustomer(s.db, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByID(id int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrCustomerNotFound, id)
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByUserID(userID int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user ID %d", ErrCustomerNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get customer for user %d: %w", userID, err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	customers, total, err := s.customerRepo.GetCustomers(page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) UpdateCustomer(id int64, req CustomerRequest) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(id)
	if err != nil {
		return nil, err
	}

	customer.FullName = req.FullName
	customer.PhoneNumber = req.PhoneNumber
	customer.Email = req.Email

	if err := s.customerRepo.UpdateCustomer(s.db, customer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrCustomerNotFound, id)
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(id int64) error {
	if err := s.customerRepo.DeleteCustomer(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrCustomerNotFound, id)
		}
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}
	return nil
}

func (s *customerService) GetCustomerAddresses(customerID int64) ([]models.Address, error) {
	if _, err := s.GetCustomerByID(customerID); err != nil {
		return nil, err
	}
	addresses, err := s.addressRepo.GetCustomerAddresses(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses for customer %d: %w", customerID, err)
	}
	return addresses, nil
}

func (s *customerService) GetLocalities() ([]models.Locality, error) {
	localities, err := s.addressRepo.GetLocalities()
	if err != nil {
		return nil, fmt.Errorf("failed to get localities: %w", err)
	}
	return localities, nil
}
