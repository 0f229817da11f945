package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pac-voluntarios/portal/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store over the profiles table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

// GetRoleStatus selects only role and status for userID.
// Columns are scanned untyped so status normalization happens in one place.
func (s *GormStore) GetRoleStatus(ctx context.Context, userID string) (RoleStatus, error) {
	var rawRole, rawStatus any
	errFind := scanRow(s.db.WithContext(ctx).
		Table(models.Profile{}.TableName()).
		Select("role", "status").
		Where("id = ?", userID),
		&rawRole, &rawStatus)
	if errFind != nil {
		if errors.Is(errFind, ErrNotFound) {
			return RoleStatus{}, ErrNotFound
		}
		return RoleStatus{}, fmt.Errorf("profile: role lookup: %w", errFind)
	}

	role, errRole := ParseRole(rawRole)
	if errRole != nil {
		return RoleStatus{}, errRole
	}
	status, errStatus := ParseAccountStatus(rawStatus)
	if errStatus != nil {
		return RoleStatus{}, errStatus
	}
	return RoleStatus{Role: role, Status: status}, nil
}

// GetAdminSecret loads the step-up material for the profile matching both id and email.
func (s *GormStore) GetAdminSecret(ctx context.Context, userID, email string) (AdminSecret, error) {
	var rawID, rawEmail, rawRole, rawStatus, rawHash, rawSalt, rawEnabled any
	errFind := scanRow(s.db.WithContext(ctx).
		Table(models.Profile{}.TableName()).
		Select("id", "email", "role", "status", "admin_secret_hash", "admin_secret_salt", "admin_2fa_enabled").
		Where("id = ? AND email = ?", userID, normalizeEmail(email)),
		&rawID, &rawEmail, &rawRole, &rawStatus, &rawHash, &rawSalt, &rawEnabled)
	if errFind != nil {
		if errors.Is(errFind, ErrNotFound) {
			return AdminSecret{}, ErrNotFound
		}
		return AdminSecret{}, fmt.Errorf("profile: admin secret lookup: %w", errFind)
	}

	role, errRole := ParseRole(rawRole)
	if errRole != nil {
		return AdminSecret{}, errRole
	}
	status, errStatus := ParseAccountStatus(rawStatus)
	if errStatus != nil {
		return AdminSecret{}, errStatus
	}
	enabled := false
	if rawEnabled != nil {
		flag, errFlag := ParseAccountStatus(rawEnabled)
		if errFlag != nil {
			return AdminSecret{}, fmt.Errorf("profile: admin_2fa_enabled: %w", errFlag)
		}
		enabled = flag.Active()
	}

	return AdminSecret{
		ID:      stringValue(rawID),
		Email:   stringValue(rawEmail),
		Role:    role,
		Status:  status,
		Hash:    stringValue(rawHash),
		Salt:    stringValue(rawSalt),
		Enabled: enabled,
	}, nil
}

// scanRow reads the first row of query into dest as raw driver values.
// Going through database/sql keeps gorm from coercing columns to the model's Go types.
func scanRow(query *gorm.DB, dest ...any) error {
	rows, errQuery := query.Rows()
	if errQuery != nil {
		return errQuery
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if errRows := rows.Err(); errRows != nil {
			return errRows
		}
		return ErrNotFound
	}
	return rows.Scan(dest...)
}

// FindAdminByMatricula returns the admin profile registered under matricula.
func (s *GormStore) FindAdminByMatricula(ctx context.Context, matricula string) (AdminRef, error) {
	var p models.Profile
	errFind := s.db.WithContext(ctx).
		Select("id", "email", "role", "admin_2fa_enabled").
		Where("matricula = ? AND role = ?", strings.TrimSpace(matricula), string(RoleAdmin)).
		Take(&p).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return AdminRef{}, ErrNotFound
		}
		return AdminRef{}, fmt.Errorf("profile: matricula lookup: %w", errFind)
	}
	return AdminRef{ID: p.ID, Email: p.Email, Role: Role(p.Role), Enabled: p.Admin2FAEnabled}, nil
}

// Update applies fields to the profile; the last write wins.
func (s *GormStore) Update(ctx context.Context, userID string, fields Fields) error {
	values := map[string]any{}
	if fields.ClearAdminSecret {
		values["admin_secret_hash"] = nil
		values["admin_secret_salt"] = nil
	} else {
		if fields.AdminSecretHash != nil {
			values["admin_secret_hash"] = *fields.AdminSecretHash
		}
		if fields.AdminSecretSalt != nil {
			values["admin_secret_salt"] = *fields.AdminSecretSalt
		}
	}
	if fields.Admin2FAEnabled != nil {
		values["admin_2fa_enabled"] = *fields.Admin2FAEnabled
	}
	if fields.ClearLastAuth {
		values["admin_last_auth"] = nil
	} else if fields.AdminLastAuth != nil {
		values["admin_last_auth"] = fields.AdminLastAuth.UTC()
	}
	if len(values) == 0 {
		return nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("profile: update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByEmail loads the full profile for a login e-mail.
func (s *GormStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if errFind := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&p).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile: email lookup: %w", errFind)
	}
	return &p, nil
}

// Create inserts a new profile.
func (s *GormStore) Create(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return errors.New("profile: nil profile")
	}
	p.Email = normalizeEmail(p.Email)
	if errCreate := s.db.WithContext(ctx).Create(p).Error; errCreate != nil {
		return fmt.Errorf("profile: create: %w", errCreate)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case *string:
		if t == nil {
			return ""
		}
		return *t
	default:
		return ""
	}
}
