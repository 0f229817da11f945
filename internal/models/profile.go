package models

import "time"

// Profile is a portal member record: identity, role, account status and admin step-up secret.
type Profile struct {
	ID string `gorm:"type:text;primaryKey"` // User ID issued by the auth provider.

	Email     string  `gorm:"type:text;not null;uniqueIndex"` // Login e-mail.
	Matricula *string `gorm:"type:text;uniqueIndex"`          // Volunteer registration number.
	Name      string  `gorm:"type:text"`                      // Display name.

	PasswordHash string `gorm:"type:text"` // bcrypt hash of the primary login password.

	Role string `gorm:"type:text;not null;default:'agent'"` // admin or agent.
	// Status is written as a bool; reads go through profile.ParseAccountStatus because
	// imported rows have carried integer and text values.
	Status bool `gorm:"not null"`

	AdminSecretHash *string    `gorm:"type:text"`                                        // hex SHA-256 of password+salt.
	AdminSecretSalt *string    `gorm:"type:text"`                                        // hex 128-bit salt.
	Admin2FAEnabled bool       `gorm:"column:admin_2fa_enabled;not null;default:false"` // Step-up configured.
	AdminLastAuth   *time.Time `gorm:"column:admin_last_auth"`                           // Last successful step-up.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName pins the table name used by the portal database.
func (Profile) TableName() string { return "profiles" }
