package model

import "time"

// User roles.  Technicians form the roster eligible for booking
// assignment; admins manage bookings and the contact inbox.
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// ValidRole reports whether r is a recognised role.
func ValidRole(r string) bool {
	return r == RoleCustomer || r == RoleTechnician || r == RoleAdmin
}

// User represents an account record as stored in the `users` table.
// Handlers define separate response types with JSON tags; this struct
// is used by the repository layer only.
//
// Fields:
//  ID           – primary key identifier.
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Phone        – contact phone number.
//  Address      – street address (optional).
//  City         – city (optional).
//  ZipCode      – postal code (optional).
//  Role         – one of customer, technician, admin.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Phone        string    // users.phone
	Address      string    // users.address
	City         string    // users.city
	ZipCode      string    // users.zip_code
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
