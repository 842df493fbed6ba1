package domain

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       Money
	SKUCode     string
	Category    string
	ImageURL    string
}
