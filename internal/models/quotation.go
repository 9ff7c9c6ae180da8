package models

// QuotationRequest asks for a priced quotation for one product. At least one
// of PhoneNumber or Name identifies the customer.
type QuotationRequest struct {
	ProductNumber string `json:"product_number" validate:"required"`
	PhoneNumber   string `json:"phone_number"`
	Name          string `json:"name"`
}

// Quotation is the structured quotation document.
type Quotation struct {
	Metadata      QuotationMetadata    `json:"metadata"`
	Customer      QuotationCustomer    `json:"customer"`
	Subject       string               `json:"subject"`
	Requirement   QuotationRequirement `json:"requirement"`
	Equipment     QuotationEquipment   `json:"equipment"`
	PriceSchedule PriceSchedule        `json:"price_schedule"`
}

type QuotationMetadata struct {
	ReferenceNumber string `json:"reference_number"`
	Date            string `json:"date"`
	DateISO         string `json:"date_iso"`
}

type QuotationCustomer struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	FullAddress string `json:"full_address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type QuotationRequirement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type QuotationEquipment struct {
	Description      string `json:"description"`
	TechnicalDetails string `json:"technical_details"`
}

type PriceScheduleItem struct {
	ID              int     `json:"id"`
	Description     string  `json:"description"`
	Quantity        int     `json:"quantity"`
	Rate            float64 `json:"rate"`
	RateFormatted   string  `json:"rate_formatted"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
}

type PriceSchedule struct {
	Items             []PriceScheduleItem `json:"items"`
	Subtotal          float64             `json:"subtotal"`
	SubtotalFormatted string              `json:"subtotal_formatted"`
	Tax               QuotationTax        `json:"tax"`
	Total             float64             `json:"total"`
	TotalFormatted    string              `json:"total_formatted"`
	GrandTotal        QuotationGrandTotal `json:"grand_total"`
}

type QuotationTax struct {
	Rate            float64 `json:"rate"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
}

type QuotationGrandTotal struct {
	Quantity        int     `json:"quantity"`
	Amount          float64 `json:"amount"`
	AmountFormatted string  `json:"amount_formatted"`
}

// QuotationPrice is the flat price breakdown returned alongside the document.
type QuotationPrice struct {
	UnitPrice                     float64 `json:"unit_price"`
	UnitPriceFormatted            string  `json:"unit_price_formatted"`
	InstallationFittings          float64 `json:"installation_fittings"`
	InstallationFittingsFormatted string  `json:"installation_fittings_formatted"`
	InstallationLabor             float64 `json:"installation_labor"`
	InstallationLaborFormatted    string  `json:"installation_labor_formatted"`
	Subtotal                      float64 `json:"subtotal"`
	SubtotalFormatted             string  `json:"subtotal_formatted"`
	TaxRate                       float64 `json:"tax_rate"`
	TaxAmount                     float64 `json:"tax_amount"`
	TaxAmountFormatted            string  `json:"tax_amount_formatted"`
	Total                         float64 `json:"total"`
	TotalFormatted                string  `json:"total_formatted"`
	GrandTotal                    float64 `json:"grand_total"`
	GrandTotalFormatted           string  `json:"grand_total_formatted"`
	Quantity                      int     `json:"quantity"`
}

type QuotationResult struct {
	Customer      map[string]interface{} `json:"customer"`
	Product       map[string]interface{} `json:"product"`
	Price         QuotationPrice         `json:"price"`
	QuotationText Quotation              `json:"quotation_text"`
}

// ProductTax is the VAT breakdown for a single ERP item.
type ProductTax struct {
	UnitPrice  float64 `json:"unit_price"`
	TaxRate    float64 `json:"tax_rate"`
	TaxAmount  float64 `json:"tax_amount"`
	TotalPrice float64 `json:"total_price"`
}
