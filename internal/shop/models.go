package shop

type Product struct {
	ID      int64
	Name    string
	Price   float64
	InStock bool
}

type Customer struct {
	ID              int64
	Identity        string
	Phone           string
	Address         string
	DisplayName     string
	LastProductName string
}

type Order struct {
	ID         int64
	ProductID  int64
	CustomerID int64
	Amount     float64
	Status     Status // see status.go
}
