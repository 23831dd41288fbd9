package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"buensabor_backend/internal/models"

	"github.com/lib/pq"
)

// AddressRepository defines the interface for address and locality database operations.
type AddressRepository interface {
	GetLocalityByID(id int64) (*models.Locality, error)
	GetLocalities() ([]models.Locality, error)
	FindByExactMatch(executor SQLExecutor, street, number, postalCode string, localityID int64) (*models.Address, error)
	CreateAddress(executor SQLExecutor, address *models.Address) (int64, error)
	LinkCustomerAddress(executor SQLExecutor, customerID, addressID int64) error // Idempotent
	GetCustomerAddresses(customerID int64) ([]models.Address, error)
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository.
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) GetLocalityByID(id int64) (*models.Locality, error) {
	locality := &models.Locality{}
	query := `SELECT id, name, created_at, updated_at FROM localities WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&locality.ID, &locality.Name, &locality.CreatedAt, &locality.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting locality by ID %d: %v", ErrDatabaseError, id, err)
	}
	return locality, nil
}

func (r *addressRepository) GetLocalities() ([]models.Locality, error) {
	localities := []models.Locality{}
	rows, err := r.db.Query(`SELECT id, name, created_at, updated_at FROM localities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying localities: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var locality models.Locality
		if err := rows.Scan(&locality.ID, &locality.Name, &locality.CreatedAt, &locality.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning locality: %v", ErrDatabaseError, err)
		}
		localities = append(localities, locality)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating localities: %v", ErrDatabaseError, err)
	}
	return localities, nil
}

// FindByExactMatch looks an address up by its full (street, number, postal code,
// locality) tuple. Runs on the executor so order creation sees addresses created
// earlier in the same transaction.
func (r *addressRepository) FindByExactMatch(executor SQLExecutor, street, number, postalCode string, localityID int64) (*models.Address, error) {
	address := &models.Address{}
	query := `SELECT id, street, number, postal_code, locality_id, created_at, updated_at
	          FROM addresses
	          WHERE street = $1 AND number = $2 AND postal_code = $3 AND locality_id = $4`
	err := executor.QueryRow(query, street, number, postalCode, localityID).Scan(
		&address.ID, &address.Street, &address.Number, &address.PostalCode, &address.LocalityID,
		&address.CreatedAt, &address.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding address by exact match: %v", ErrDatabaseError, err)
	}
	return address, nil
}

func (r *addressRepository) CreateAddress(executor SQLExecutor, address *models.Address) (int64, error) {
	query := `INSERT INTO addresses (street, number, postal_code, locality_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		address.Street, address.Number, address.PostalCode, address.LocalityID, currentTime, currentTime,
	).Scan(&address.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: invalid locality_id %d (constraint: %s)", ErrDatabaseError, address.LocalityID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating address: %v", ErrDatabaseError, err)
	}
	return address.ID, nil
}

func (r *addressRepository) LinkCustomerAddress(executor SQLExecutor, customerID, addressID int64) error {
	// ON CONFLICT DO NOTHING makes the link idempotent by (customer_id, address_id).
	query := `INSERT INTO customer_addresses (customer_id, address_id, created_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (customer_id, address_id) DO NOTHING`
	if _, err := executor.Exec(query, customerID, addressID, time.Now()); err != nil {
		return fmt.Errorf("%w: linking address %d to customer %d: %v", ErrDatabaseError, addressID, customerID, err)
	}
	return nil
}

func (r *addressRepository) GetCustomerAddresses(customerID int64) ([]models.Address, error) {
	addresses := []models.Address{}
	query := `SELECT ad.id, ad.street, ad.number, ad.postal_code, ad.locality_id, ad.created_at, ad.updated_at,
	                 l.id, l.name, l.created_at, l.updated_at
	          FROM customer_addresses ca
	          JOIN addresses ad ON ca.address_id = ad.id
	          JOIN localities l ON ad.locality_id = l.id
	          WHERE ca.customer_id = $1
	          ORDER BY ad.id`

	rows, err := r.db.Query(query, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying addresses for customer ID %d: %v", ErrDatabaseError, customerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var address models.Address
		var locality models.Locality
		if err := rows.Scan(
			&address.ID, &address.Street, &address.Number, &address.PostalCode, &address.LocalityID,
			&address.CreatedAt, &address.UpdatedAt,
			&locality.ID, &locality.Name, &locality.CreatedAt, &locality.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning customer address: %v", ErrDatabaseError, err)
		}
		address.Locality = &locality
		addresses = append(addresses, address)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer addresses: %v", ErrDatabaseError, err)
	}
	return addresses, nil
}
