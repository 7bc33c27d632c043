package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. The password column holds the bcrypt hash and
// is excluded from default read projections; it never serializes to JSON.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName string     `bun:"firstname,notnull" json:"firstname,omitempty"`
	LastName  string     `bun:"lastname,notnull" json:"lastname,omitempty"`
	Email     string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Password  string     `bun:"password" json:"-"`
	IsAdmin   bool       `bun:"is_admin" json:"is_admin"`
	IsActive  bool       `bun:"is_active" json:"is_active"`
	CompanyID *uuid.UUID `bun:"company_id,nullzero,type:uuid" json:"company_id,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	wasNew bool `bun:"-"`
}

// WasNew reports whether this record came out of its first insert. The flag
// is latched by the users repository when the insert succeeds, so one-time
// side effects can tell creation apart from later updates.
func (u *User) WasNew() bool {
	return u.wasNew
}

// TokenVerification records the one-time token mailed out to confirm a
// signup. Consumption happens outside this service.
type TokenVerification struct {
	bun.BaseModel `bun:"table:token_verifications,alias:tkv"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User      *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Token     string     `bun:"token,notnull" json:"token,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
