package model

import (
	"time"

	"roombook/shared/model"
)

const (
	TableName  = "users"
	EntityName = "account"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldLastLogin = "last_login"
)

// Account is a row of the users table. Password holds the bcrypt hash.
type Account struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	FullName  *string    `db:"full_name"`
	LastLogin *time.Time `db:"last_login"`
	Active    bool       `db:"active"`
	model.Metadata
}

func (a Account) Exists() bool {
	return a.ID != ""
}
