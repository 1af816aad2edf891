// Package report renders order receipts and catalog exports as xlsx workbooks.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02 15:04:05"

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		cell := row.AddCell()
		switch val := v.(type) {
		case decimal.Decimal:
			f, _ := val.Float64()
			cell.SetFloat(f)
		default:
			cell.SetValue(val)
		}
	}
}

// WriteOrderReceipt writes a single order with customer details, itemized lines and the grand total
func WriteOrderReceipt(w io.Writer, order domain.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Receipt")
	if err != nil {
		return fmt.Errorf("failed to create receipt sheet: %w", err)
	}

	addRow(sheet, "Order", order.ID)
	addRow(sheet, "Date", order.Date.UTC().Format(dateLayout))
	addRow(sheet, "Status", string(order.Status))
	addRow(sheet, "Payment", paymentLabel(order.PaymentMethod))

	c := order.Customer
	addRow(sheet, "Customer", c.FullName)
	addRow(sheet, "Email", c.Email)
	addRow(sheet, "Phone", c.Phone)
	addRow(sheet, "Address", strings.TrimSpace(fmt.Sprintf("%s, %s %s", c.Address, c.PostalCode, c.City)))

	addRow(sheet, "Product", "Size", "Quantity", "Unit price", "Line total")
	for _, it := range order.Items {
		addRow(sheet, it.Name, it.Size, it.Quantity, it.UnitPrice, it.LineTotal)
	}
	addRow(sheet, "Total", "", order.TotalQuantity(), "", order.Total)

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}

// WriteCatalog writes one row per product and size with the price in effect at now
func WriteCatalog(w io.Writer, products []domain.Product, now time.Time) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create catalog sheet: %w", err)
	}

	addRow(sheet, "ID", "Name", "Brand", "Category", "Price", "Discount", "Final price", "Size", "Stock")
	for _, p := range products {
		final := p.DiscountedPrice(now)
		discount := 0
		if p.DiscountActive(now) {
			discount = p.Discount
		}
		if len(p.Sizes) == 0 {
			addRow(sheet, p.ID, p.Name, p.Brand, string(p.Category), p.Price, discount, final, "", 0)
			continue
		}
		for _, s := range p.Sizes {
			addRow(sheet, p.ID, p.Name, p.Brand, string(p.Category), p.Price, discount, final, s.Size, s.Stock)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func paymentLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentCard:
		return "Card"
	case domain.PaymentCOD:
		return "Cash on delivery"
	}
	return string(m)
}
