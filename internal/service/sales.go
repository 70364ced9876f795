package service

import (
	"sort"
	"time"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

const topItemsLimit = 10

// MethodStat is the revenue taken through one payment method.
type MethodStat struct {
	Amount decimal.Decimal
	Count  int
}

// PaymentBreakdown partitions a day's revenue by payment method. Only
// the two recognized methods get buckets; anything else is excluded.
type PaymentBreakdown struct {
	Cash     MethodStat
	Transfer MethodStat
}

// ItemStat accumulates sales of one menu item, keyed by its snapshot
// name: items sharing a name across catalog edits are merged.
type ItemStat struct {
	Name     string
	Quantity int32
	Revenue  decimal.Decimal
}

// HourBucket is the revenue taken during one hour of the day.
type HourBucket struct {
	Hour   int
	Amount decimal.Decimal
	Count  int
}

// Summary is the sales report for one calendar day.
type Summary struct {
	Date            string
	TotalRevenue    decimal.Decimal
	OrderCount      int
	ByPaymentMethod PaymentBreakdown
	TopItems        []ItemStat
	Hourly          []HourBucket
}

// Summarize computes the sales report for the calendar day containing
// `day` in the given timezone, from the set of paid orders. It is a
// pure projection: the same input always yields the same summary.
func Summarize(orders []store.Order, day time.Time, loc *time.Location) Summary {
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	sum := Summary{
		Date:         start.Format("2006-01-02"),
		TotalRevenue: decimal.Zero,
	}
	sum.ByPaymentMethod.Cash.Amount = decimal.Zero
	sum.ByPaymentMethod.Transfer.Amount = decimal.Zero

	var filtered []store.Order
	for _, o := range orders {
		if o.Status != enum.OrderStatusPaid || o.PaidDate == nil {
			continue
		}
		paid := o.PaidDate.In(loc)
		if paid.Before(start) || !paid.Before(end) {
			continue
		}
		filtered = append(filtered, o)
	}

	var hourly [24]HourBucket
	for i := range hourly {
		hourly[i].Hour = i
		hourly[i].Amount = decimal.Zero
	}

	itemIndex := make(map[string]int)
	var items []ItemStat

	for _, o := range filtered {
		sum.TotalRevenue = sum.TotalRevenue.Add(o.Total)
		sum.OrderCount++

		switch o.PaymentMethod {
		case enum.PaymentMethodCash:
			sum.ByPaymentMethod.Cash.Amount = sum.ByPaymentMethod.Cash.Amount.Add(o.Total)
			sum.ByPaymentMethod.Cash.Count++
		case enum.PaymentMethodTransfer:
			sum.ByPaymentMethod.Transfer.Amount = sum.ByPaymentMethod.Transfer.Amount.Add(o.Total)
			sum.ByPaymentMethod.Transfer.Count++
		}

		for _, l := range o.Lines {
			i, ok := itemIndex[l.Name]
			if !ok {
				i = len(items)
				itemIndex[l.Name] = i
				items = append(items, ItemStat{Name: l.Name, Revenue: decimal.Zero})
			}
			items[i].Quantity += l.Quantity
			items[i].Revenue = items[i].Revenue.Add(l.Price.Mul(decimal.NewFromInt32(l.Quantity)))
		}

		h := o.PaidDate.In(loc).Hour()
		hourly[h].Amount = hourly[h].Amount.Add(o.Total)
		hourly[h].Count++
	}

	// Descending by revenue; ties keep first-seen order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Revenue.GreaterThan(items[j].Revenue)
	})
	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	sum.TopItems = items

	for _, h := range hourly {
		if h.Count > 0 {
			sum.Hourly = append(sum.Hourly, h)
		}
	}

	return sum
}
