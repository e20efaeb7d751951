package domain

import "fmt"

// Product is an item on the storefront grid.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"` // cents
	Currency string `json:"currency"`
	ImageURL string `json:"image_url"`
	Store    string `json:"store"`
}

// PriceLabel renders the price the way the storefront shows it, e.g.
// "R$ 1069,00".
func (p Product) PriceLabel() string {
	return fmt.Sprintf("R$ %d,%02d", p.Price/100, p.Price%100)
}

// FindProduct returns the catalog entry with id.
func FindProduct(id string) (Product, bool) {
	for _, p := range Catalog() {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Catalog is the fixed storefront product list.
func Catalog() []Product {
	return []Product{
		{ID: "1", Name: "violão tagima tw-25 folk- ns natural", Price: 106900, Currency: "BRL", ImageURL: "https://via.placeholder.com/150x150?text=violao", Store: "Som Store"},
		{ID: "2", Name: "teclado yamaha psr-e473 preto, 61 teclas", Price: 339900, Currency: "BRL", ImageURL: "https://via.placeholder.com/150x150?text=teclado", Store: "Som Store"},
		{ID: "3", Name: "guitarra tagima tg-500 roxo metálico", Price: 119000, Currency: "BRL", ImageURL: "https://via.placeholder.com/150x150?text=guitarra", Store: "Som Store"},
		{ID: "4", Name: "prato de chimbal profire 14'' alloy", Price: 29800, Currency: "BRL", ImageURL: "https://via.placeholder.com/150x150?text=prato", Store: "Som Store"},
		{ID: "5", Name: "pedal de distorção mxr m134", Price: 95000, Currency: "BRL", ImageURL: "https://via.placeholder.com/150x150?text=pedal", Store: "Som Store"},
		{ID: "6", Name: "microfone shure sm58", Price: 159900, Currency: "BRL", ImageURL: "https://via.placeholder.com/150x150?text=microfone", Store: "Som Store"},
	}
}
