package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const receiptRule = "=============================="
const receiptLine = "------------------------------"

// FormatReceipt renders the bill as a plain-text slip. It reads nothing
// and writes nothing: the same bill can be previewed before payment and
// printed after it.
func FormatReceipt(restaurantName string, bill Bill, now time.Time) string {
	var b strings.Builder

	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, restaurantName)
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintf(&b, "Table: %s\n", bill.TableNumber)
	fmt.Fprintf(&b, "Date: %s\n", now.Format("02/01/2006"))
	fmt.Fprintf(&b, "Time: %s\n", now.Format("15:04:05"))
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, "Items")
	fmt.Fprintln(&b, receiptLine)
	for _, l := range bill.Lines {
		amount := l.Price.Mul(decimal.NewFromInt32(l.Quantity))
		fmt.Fprintf(&b, "%s x%d\n", l.Name, l.Quantity)
		fmt.Fprintf(&b, "  %s x %d = %s\n", l.Price.StringFixed(2), l.Quantity, amount.StringFixed(2))
	}
	fmt.Fprintln(&b, receiptLine)
	fmt.Fprintf(&b, "Total: %s\n", bill.GrandTotal.StringFixed(2))
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, "Thank you!")
	fmt.Fprintln(&b, receiptRule)

	return b.String()
}
