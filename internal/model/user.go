package model

import "time"

// Role values stored in users.role. There are exactly two: administrators
// can manage every account and back-office resource, plain users can only
// touch their own profile.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether s is one of the accepted role values.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleUser
}

// User represents an account row in the `users` table. Email is stored
// lowercase and is the sole login identifier; there is no username column.
// PasswordHash holds the bcrypt digest and must never leave the server.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Email        – unique, normalized email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – "admin" or "user" (default "user").
//  IsActive     – inactive accounts are rejected at login even with valid credentials.
//  IsStaff      – elevated platform flag, only settable through privileged paths.
//  IsSuperuser  – elevated platform flag, only settable through privileged paths.
//  CompanyID    – mandatory reference to the company the account belongs to.
//  FirstName    – profile field, mutable by the account holder.
//  LastName     – profile field, mutable by the account holder.
//  LastLogin    – set when a token pair is issued at login (nil until first login).
//  CreatedAt    – set once at creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	CompanyID    uint64     `json:"company_id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the account carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
