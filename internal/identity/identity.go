package identity

import (
	"errors"
	"regexp"

	"gorm.io/gorm"

	"github.com/example/gamezone/internal/ledger"
	"github.com/example/gamezone/internal/models"
	"github.com/example/gamezone/internal/utils"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ErrExists means a customer with the given mobile is already registered.
var ErrExists = errors.New("customer with this mobile already exists")

// Store maps mobile numbers to customer identities and roles.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Identify looks up a customer by mobile, creating one with role=customer
// on first sight. For a returning customer the stored name is
// authoritative; the incoming name is ignored.
func (s *Store) Identify(name, mobile string) (*models.Customer, error) {
	if err := ValidateMobile(mobile); err != nil {
		return nil, err
	}

	var customer models.Customer
	err := s.db.Where("mobile = ?", mobile).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{
		Name:   name,
		Mobile: mobile,
		Role:   models.RoleCustomer,
	}
	if err := s.db.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Two first logins raced; the stored record wins.
			if ferr := s.db.Where("mobile = ?", mobile).First(&customer).Error; ferr == nil {
				return &customer, nil
			}
		}
		return nil, err
	}
	return &customer, nil
}

// IsAdmin reports whether a customer with the given mobile exists and
// holds the admin role.
func (s *Store) IsAdmin(mobile string) (bool, error) {
	var customer models.Customer
	err := s.db.Where("mobile = ? AND role = ?", mobile, models.RoleAdmin).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyAdmin checks an admin's password and returns the record on
// success. Any mismatch (unknown mobile, wrong role, wrong password)
// returns nil, nil so callers cannot tell which field was wrong.
func (s *Store) VerifyAdmin(mobile, password string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where("mobile = ? AND role = ?", mobile, models.RoleAdmin).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(customer.PasswordHash, password) {
		return nil, nil
	}
	return &customer, nil
}

// SeedAdmin provisions an admin account out-of-band (run at startup from
// config). Idempotent: an existing customer with the mobile is promoted
// and given the password; an existing admin is left untouched.
func (s *Store) SeedAdmin(name, mobile, password string) error {
	if err := ValidateMobile(mobile); err != nil {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	var customer models.Customer
	err = s.db.Where("mobile = ?", mobile).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.Customer{
			Name:         name,
			Mobile:       mobile,
			Role:         models.RoleAdmin,
			PasswordHash: hash,
		}).Error
	}
	if err != nil {
		return err
	}
	if customer.Role == models.RoleAdmin {
		return nil
	}

	return s.db.Model(&customer).Updates(map[string]interface{}{
		"role":          models.RoleAdmin,
		"password_hash": hash,
	}).Error
}

// CreateAdmin provisions a brand-new admin account. Unlike SeedAdmin it
// refuses to touch an existing customer.
func (s *Store) CreateAdmin(name, mobile, password string) (*models.Customer, error) {
	if err := ValidateMobile(mobile); err != nil {
		return nil, err
	}

	var existing models.Customer
	err := s.db.Where("mobile = ?", mobile).First(&existing).Error
	if err == nil {
		return nil, ErrExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	customer := models.Customer{
		Name:         name,
		Mobile:       mobile,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.db.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrExists
		}
		return nil, err
	}
	return &customer, nil
}

// Count returns the number of registered customers.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListAll returns every customer, newest first.
func (s *Store) ListAll() ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.Order("created_at desc").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// ValidateMobile rejects anything that is not a 10-digit mobile number.
func ValidateMobile(mobile string) error {
	if !mobilePattern.MatchString(mobile) {
		return &ledger.ValidationError{Message: "mobile must be a 10-digit number"}
	}
	return nil
}
