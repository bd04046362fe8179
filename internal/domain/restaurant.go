package domain

import "time"

// Restaurant is the tenant every user and token is scoped to.
type Restaurant struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Cuisine   string
	Currency  string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
