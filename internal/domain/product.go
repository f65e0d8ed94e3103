package domain

import (
	"github.com/google/uuid"
	"time"
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       Money
	Category    string
	ImageURL    string
	Stock       int
	Rating      float64
	Featured    bool

	CreatedAt time.Time
}
