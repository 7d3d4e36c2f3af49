package domain

type MenuItem struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Maker       string  `json:"maker"`
	Description string  `json:"description"`
	Origin      string  `json:"origin"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Email       string  `json:"email"` // owner
	OrderCount  int     `json:"order_count"`
	Quantity    int     `json:"quantity"`
}

// FoodQuery selects a page of menu items. Size 0 means no limit.
type FoodQuery struct {
	Email     string
	SortField string
	SortDesc  bool
	Page      int
	Size      int
}

// Skip is the number of records before the requested page.
func (q FoodQuery) Skip() int {
	return q.Page * q.Size
}

type StockUpdate struct {
	OrderCount int
	Quantity   int
}
