// Package quotation prices an ERP product with installation costs and VAT
// and renders the structured quotation document.
package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solar-advisor/internal/common/erp"
	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	placeholderName    = "Valued Customer"
	placeholderAddress = "P.O. Box 39542 – 00623."
	defaultCity        = "Nairobi"

	itemFittings = "Installation Fittings & Sundries"
	itemLabour   = "Installation Labour"

	technicalDetailsFormat = "The %s systems are designed for all domestic heating applications that utilize " +
		"the high efficiency benefits of solar hot water technology. The integrated systems combine a water " +
		"storage tank with an efficient solar collector that generates heat from sunlight, providing a " +
		"cost-effective and environmentally friendly solution."
)

var (
	installationFittings = decimal.NewFromInt(15000)
	installationLabour   = decimal.NewFromInt(20000)
	vatRate              = decimal.NewFromInt(16)
	hundred              = decimal.NewFromInt(100)
)

// ERPClient is the part of the ERP client quotations need.
type ERPClient interface {
	FindCustomers(ctx context.Context, field, value string) ([]erp.Record, error)
	FindProduct(ctx context.Context, number string) (erp.Record, error)
}

type Service struct {
	erp    ERPClient
	logger logger.Logger
	now    func() time.Time
}

func NewService(client ERPClient, log logger.Logger) *Service {
	return &Service{erp: client, logger: log, now: time.Now}
}

// Generate looks up the customer and product concurrently and prices one unit.
// A missing customer falls back to placeholders; a missing product is
// RESOURCE_NOT_FOUND.
func (s *Service) Generate(ctx context.Context, req models.QuotationRequest) (*models.QuotationResult, error) {
	if req.ProductNumber == "" {
		return nil, apperrors.NewRequestInvalidError("product_number is required")
	}
	if req.PhoneNumber == "" && req.Name == "" {
		return nil, apperrors.NewRequestInvalidError("Either phone number or name must be provided")
	}

	var customer, product erp.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.findCustomer(gctx, req)
		customer = c
		return err
	})
	g.Go(func() error {
		p, err := s.erp.FindProduct(gctx, req.ProductNumber)
		if err != nil {
			if errors.Is(err, erp.ErrNotFound) {
				return apperrors.NewResourceNotFoundError("ERP", fmt.Sprintf("Product with number %s not found", req.ProductNumber))
			}
			return apperrors.NewERPRequestFailedError(erp.EntityItems, err)
		}
		product = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	price := Price(decimal.NewFromFloat(erp.Number(product, "Unit_Price")), 1)
	doc := s.document(customer, product, price)

	s.logger.Info("Quotation generated", map[string]interface{}{
		"reference":     doc.Metadata.ReferenceNumber,
		"product":       req.ProductNumber,
		"customerFound": customer != nil,
		"total":         price.GrandTotalFormatted,
	})

	return &models.QuotationResult{
		Customer:      customer,
		Product:       product,
		Price:         price,
		QuotationText: doc,
	}, nil
}

// findCustomer tries the phone number first, then the name. No match is not
// an error.
func (s *Service) findCustomer(ctx context.Context, req models.QuotationRequest) (erp.Record, error) {
	lookups := []struct{ field, value string }{
		{"Phone_No", req.PhoneNumber},
		{"Name", req.Name},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		found, err := s.erp.FindCustomers(ctx, l.field, l.value)
		if err != nil {
			return nil, apperrors.NewERPRequestFailedError(erp.EntityCustomers, err)
		}
		if len(found) > 0 {
			return found[0], nil
		}
	}
	return nil, nil
}

// Price computes the breakdown for quantity units: unit price plus fixed
// fittings and labour, with 16% VAT on the subtotal.
func Price(unitPrice decimal.Decimal, quantity int) models.QuotationPrice {
	subtotal := unitPrice.Add(installationFittings).Add(installationLabour)
	tax := subtotal.Mul(vatRate).Div(hundred)
	total := subtotal.Add(tax)
	grand := total.Mul(decimal.NewFromInt(int64(quantity)))

	return models.QuotationPrice{
		UnitPrice:                     money(unitPrice),
		UnitPriceFormatted:            FormatMoney(unitPrice),
		InstallationFittings:          money(installationFittings),
		InstallationFittingsFormatted: FormatMoney(installationFittings),
		InstallationLabor:             money(installationLabour),
		InstallationLaborFormatted:    FormatMoney(installationLabour),
		Subtotal:                      money(subtotal),
		SubtotalFormatted:             FormatMoney(subtotal),
		TaxRate:                       vatRate.InexactFloat64(),
		TaxAmount:                     money(tax),
		TaxAmountFormatted:            FormatMoney(tax),
		Total:                         money(total),
		TotalFormatted:                FormatMoney(total),
		GrandTotal:                    money(grand),
		GrandTotalFormatted:           FormatMoney(grand),
		Quantity:                      quantity,
	}
}

func (s *Service) document(customer, product erp.Record, price models.QuotationPrice) models.Quotation {
	now := s.now()
	number := erp.String(product, "No")
	model := erp.String(product, "Product_Model")
	description := erp.String(product, "Description")

	name := placeholderName
	if customer != nil {
		if n := erp.String(customer, "Name"); n != "" {
			name = n
		}
	}
	supply := fmt.Sprintf("To supply & installation of %d %s.", price.Quantity, description)

	return models.Quotation{
		Metadata: models.QuotationMetadata{
			ReferenceNumber: fmt.Sprintf("QT-%s-%s", now.Format("20060102"), number),
			Date:            now.Format("January 02, 2006"),
			DateISO:         now.Format("2006-01-02"),
		},
		Customer: models.QuotationCustomer{
			Name:        name,
			Address:     placeholderAddress,
			City:        defaultCity,
			FullAddress: placeholderAddress + ", " + defaultCity,
			Phone:       erp.String(customer, "Phone_No"),
			Email:       erp.String(customer, "E_Mail"),
		},
		Subject: fmt.Sprintf("SUPPLY OF %s SYSTEM - %s", model, number),
		Requirement: models.QuotationRequirement{
			Title:       model + " System",
			Description: supply,
		},
		Equipment: models.QuotationEquipment{
			Description:      supply,
			TechnicalDetails: fmt.Sprintf(technicalDetailsFormat, model),
		},
		PriceSchedule: models.PriceSchedule{
			Items: []models.PriceScheduleItem{
				{ID: 1, Description: description, Quantity: price.Quantity, Rate: price.UnitPrice, RateFormatted: price.UnitPriceFormatted, Amount: price.UnitPrice, AmountFormatted: price.UnitPriceFormatted},
				{ID: 2, Description: itemFittings, Quantity: 1, Rate: price.InstallationFittings, RateFormatted: price.InstallationFittingsFormatted, Amount: price.InstallationFittings, AmountFormatted: price.InstallationFittingsFormatted},
				{ID: 3, Description: itemLabour, Quantity: 1, Rate: price.InstallationLabor, RateFormatted: price.InstallationLaborFormatted, Amount: price.InstallationLabor, AmountFormatted: price.InstallationLaborFormatted},
			},
			Subtotal:          price.Subtotal,
			SubtotalFormatted: price.SubtotalFormatted,
			Tax: models.QuotationTax{
				Rate:            price.TaxRate,
				Amount:          price.TaxAmount,
				AmountFormatted: price.TaxAmountFormatted,
			},
			Total:          price.Total,
			TotalFormatted: price.TotalFormatted,
			GrandTotal: models.QuotationGrandTotal{
				Quantity:        price.Quantity,
				Amount:          price.GrandTotal,
				AmountFormatted: price.GrandTotalFormatted,
			},
		},
	}
}

// ProductTax applies the item's VAT posting group: VAT16 is 16%, VAT8 is 8%,
// anything else is untaxed.
func ProductTax(product erp.Record) models.ProductTax {
	unit := decimal.NewFromFloat(erp.Number(product, "Unit_Price"))
	rate := decimal.Zero
	switch erp.String(product, "VAT_Prod_Posting_Group") {
	case "VAT16":
		rate = decimal.NewFromInt(16)
	case "VAT8":
		rate = decimal.NewFromInt(8)
	}
	tax := unit.Mul(rate).Div(hundred)

	return models.ProductTax{
		UnitPrice:  money(unit),
		TaxRate:    rate.InexactFloat64(),
		TaxAmount:  money(tax),
		TotalPrice: money(unit.Add(tax)),
	}
}
