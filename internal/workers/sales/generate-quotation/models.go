package generatequotation

import "solar-advisor/internal/models"

// Input identifies the product and the customer to quote.
type Input struct {
	ProductNumber string `json:"productNumber"`
	PhoneNumber   string `json:"phoneNumber"`
	CustomerName  string `json:"customerName"`
}

type Output struct {
	Quotation       models.Quotation      `json:"quotation"`
	Price           models.QuotationPrice `json:"price"`
	ReferenceNumber string                `json:"referenceNumber"`
	GrandTotal      float64               `json:"grandTotal"`
	CustomerFound   bool                  `json:"customerFound"`
}
