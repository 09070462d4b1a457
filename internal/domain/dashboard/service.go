package dashboard

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

// weekdayLetters are Monday-first Spanish abbreviations.
var weekdayLetters = [7]string{"L", "M", "X", "J", "V", "S", "D"}

// TodayLabel names the single bucket of a one-day window.
const TodayLabel = "Hoy"

// CreditStore is the credit access the aggregator needs.
type CreditStore interface {
	ListActive(ctx context.Context, businessID uuid.UUID) ([]credit.Credit, error)
}

// CollectionStore is the collection access the aggregator needs.
type CollectionStore interface {
	ListInRange(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]collection.Collection, error)
}

// Request selects the business and an optional [StartDate, EndDate) window.
type Request struct {
	BusinessID uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

func (r Request) hasWindow() bool {
	return r.StartDate != nil && r.EndDate != nil
}

// DayBucket is one point of the revenue chart.
// Day is the day of month, or the ISO weekday (1 = Monday) for weekday buckets.
type DayBucket struct {
	Day         int             `json:"day"`
	Label       string          `json:"label"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Cash        decimal.Decimal `json:"cash"`
	Transaction decimal.Decimal `json:"transaction"`
}

// Stats represents dashboard statistics
type Stats struct {
	// Revenue, always relative to now
	DailyCollection   decimal.Decimal `json:"daily_collection"`
	WeeklyCollection  decimal.Decimal `json:"weekly_collection"`
	MonthlyCollection decimal.Decimal `json:"monthly_collection"`

	// Portfolio
	ActiveCredits      int     `json:"active_credits"`
	ClientsInArrears   int     `json:"clients_in_arrears"`
	UpToDatePercentage float64 `json:"up_to_date_percentage"`
	OverduePercentage  float64 `json:"overdue_percentage"`
	TotalClients       int     `json:"total_clients"`

	// Window figures, or the current week when no window was requested
	TotalCollected        decimal.Decimal `json:"total_collected"`
	CashCollection        decimal.Decimal `json:"cash_collection"`
	TransactionCollection decimal.Decimal `json:"transaction_collection"`
	CashCount             int             `json:"cash_count"`
	TransactionCount      int             `json:"transaction_count"`

	WeeklyCollectionData []DayBucket `json:"weekly_collection_data"`
}

// Aggregator computes dashboard statistics in the business time zone.
type Aggregator struct {
	credits     CreditStore
	collections CollectionStore
	loc         *time.Location
	now         func() time.Time
}

// NewAggregator creates dashboard aggregator
func NewAggregator(credits CreditStore, collections CollectionStore, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{credits: credits, collections: collections, loc: loc, now: time.Now}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func isoWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

type kind int

const (
	kindOther kind = iota
	kindCash
	kindTransaction
)

func classify(c *collection.Collection) kind {
	switch c.Method() {
	case collection.MethodCash:
		return kindCash
	case collection.MethodTransaction, collection.MethodTransaction2:
		return kindTransaction
	}
	return kindOther
}

// Stats computes the snapshot for req.
func (a *Aggregator) Stats(ctx context.Context, req Request) (*Stats, error) {
	if req.BusinessID == uuid.Nil {
		return nil, apperr.PreconditionFailed("business_id")
	}

	now := a.now().In(a.loc)
	today := midnight(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, a.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	from, to := monthStart, monthEnd
	if weekStart.Before(from) {
		from = weekStart
	}
	if weekEnd.After(to) {
		to = weekEnd
	}
	recent, err := a.collections.ListInRange(ctx, req.BusinessID, from, to)
	if err != nil {
		return nil, apperr.FetchFailed("fetch collections for dashboard", err)
	}

	stats := &Stats{
		DailyCollection:       decimal.Zero,
		WeeklyCollection:      decimal.Zero,
		MonthlyCollection:     decimal.Zero,
		TotalCollected:        decimal.Zero,
		CashCollection:        decimal.Zero,
		TransactionCollection: decimal.Zero,
	}

	week := make([]collection.Collection, 0)
	for _, c := range recent {
		at := c.PaymentDate.In(a.loc)
		if !at.Before(today) && at.Before(tomorrow) {
			stats.DailyCollection = stats.DailyCollection.Add(c.Amount)
		}
		if !at.Before(weekStart) && at.Before(weekEnd) {
			stats.WeeklyCollection = stats.WeeklyCollection.Add(c.Amount)
			week = append(week, c)
		}
		if !at.Before(monthStart) && at.Before(monthEnd) {
			stats.MonthlyCollection = stats.MonthlyCollection.Add(c.Amount)
		}
	}

	if err := a.portfolio(ctx, req.BusinessID, stats); err != nil {
		return nil, err
	}

	if !req.hasWindow() {
		stats.summarize(week)
		stats.WeeklyCollectionData = a.currentWeek(weekStart, week)
		return stats, nil
	}

	windowed, err := a.collections.ListInRange(ctx, req.BusinessID, *req.StartDate, *req.EndDate)
	if err != nil {
		return nil, apperr.FetchFailed("fetch collections for window", err)
	}
	stats.summarize(windowed)
	stats.WeeklyCollectionData = a.windowBuckets(*req.StartDate, *req.EndDate, today, windowed)

	logger.LogDebug(ctx, "dashboard window aggregated", "business_id", req.BusinessID.String(),
		"collections", len(windowed), "buckets", len(stats.WeeklyCollectionData))
	return stats, nil
}

func (a *Aggregator) portfolio(ctx context.Context, businessID uuid.UUID, stats *Stats) error {
	active, err := a.credits.ListActive(ctx, businessID)
	if err != nil {
		return apperr.FetchFailed("fetch active credits", err)
	}

	clients := make(map[uuid.UUID]struct{}, len(active))
	for i := range active {
		c := &active[i]
		if !c.IsActive() {
			continue
		}
		stats.ActiveCredits++
		if c.InArrears() {
			stats.ClientsInArrears++
		}
		clients[c.ClientID] = struct{}{}
	}
	stats.TotalClients = len(clients)

	if stats.ActiveCredits > 0 {
		stats.UpToDatePercentage = float64(stats.ActiveCredits-stats.ClientsInArrears) / float64(stats.ActiveCredits) * 100
	}
	stats.OverduePercentage = 100 - stats.UpToDatePercentage
	return nil
}

// summarize fills the total and per-method figures from rows.
func (s *Stats) summarize(rows []collection.Collection) {
	for i := range rows {
		c := &rows[i]
		s.TotalCollected = s.TotalCollected.Add(c.Amount)
		switch classify(c) {
		case kindCash:
			s.CashCollection = s.CashCollection.Add(c.Amount)
			s.CashCount++
		case kindTransaction:
			s.TransactionCollection = s.TransactionCollection.Add(c.Amount)
			s.TransactionCount++
		}
	}
}

func newBucket(day int, label string, date time.Time) DayBucket {
	return DayBucket{Day: day, Label: label, Date: dateKey(date), Amount: decimal.Zero, Cash: decimal.Zero, Transaction: decimal.Zero}
}

// currentWeek returns Monday..Sunday amounts without a per-method split.
func (a *Aggregator) currentWeek(weekStart time.Time, week []collection.Collection) []DayBucket {
	buckets := make([]DayBucket, 7)
	index := make(map[string]int, 7)
	for i := range buckets {
		d := weekStart.AddDate(0, 0, i)
		buckets[i] = newBucket(i+1, weekdayLetters[i], d)
		index[dateKey(d)] = i
	}
	for _, c := range week {
		if i, ok := index[dateKey(c.PaymentDate.In(a.loc))]; ok {
			buckets[i].Amount = buckets[i].Amount.Add(c.Amount)
		}
	}
	return buckets
}

// windowDays is the elapsed length of [start, end) in days, rounded up.
func windowDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// windowBuckets lays out the chart for an explicit window: one "Hoy" bucket for
// a single day, seven buckets labelled L..D from start up to a week, else one
// bucket per day up to today.
func (a *Aggregator) windowBuckets(start, end, today time.Time, rows []collection.Collection) []DayBucket {
	first := midnight(start.In(a.loc))

	var buckets []DayBucket
	switch days := windowDays(start, end); {
	case days == 1:
		buckets = []DayBucket{newBucket(first.Day(), TodayLabel, first)}
	case days <= 7:
		buckets = make([]DayBucket, 7)
		for i := range buckets {
			d := first.AddDate(0, 0, i)
			buckets[i] = newBucket(isoWeekday(d), weekdayLetters[i], d)
		}
	default:
		for d := first; d.Before(end) && !d.After(today); d = d.AddDate(0, 0, 1) {
			buckets = append(buckets, newBucket(d.Day(), strconv.Itoa(d.Day()), d))
		}
	}

	index := make(map[string]int, len(buckets))
	for i := range buckets {
		index[buckets[i].Date] = i
	}
	for i := range rows {
		c := &rows[i]
		b, ok := index[dateKey(c.PaymentDate.In(a.loc))]
		if !ok {
			continue
		}
		buckets[b].Amount = buckets[b].Amount.Add(c.Amount)
		switch classify(c) {
		case kindCash:
			buckets[b].Cash = buckets[b].Cash.Add(c.Amount)
		case kindTransaction:
			buckets[b].Transaction = buckets[b].Transaction.Add(c.Amount)
		}
	}
	if buckets == nil {
		buckets = []DayBucket{}
	}
	return buckets
}
