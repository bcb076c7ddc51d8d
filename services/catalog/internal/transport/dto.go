package transport

type PriceBounds struct {
	Min *int64 `json:"min"`
	Max *int64 `json:"max"`
}

type ProductListItem struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	SellerID uint     `json:"seller_id"`
	Tags     []string `json:"tags"`
	MinPrice *int64   `json:"min_price"`
	InStock  bool     `json:"in_stock"`
}

// ProductPage is the listing envelope. MinPrice and MaxPrice cover the whole
// catalog, not the filtered results.
type ProductPage struct {
	Page     int               `json:"page"`
	HasPrev  bool              `json:"has_prev"`
	HasNext  bool              `json:"has_next"`
	MinPrice *int64            `json:"min_price"`
	MaxPrice *int64            `json:"max_price"`
	Results  []ProductListItem `json:"results"`
}

type CreateUnitRequest struct {
	SKU        string `json:"sku"`
	Price      int64  `json:"price"`
	NumInStock int    `json:"num_in_stock"`
	Values     []uint `json:"values"`
}

type CreateProductRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Tags        []string            `json:"tags"`
	Units       []CreateUnitRequest `json:"units"`
}
