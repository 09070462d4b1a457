package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/middleware"
	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
)

var bogota = time.FixedZone("COT", -5*60*60)

type fakeCredits struct {
	rows []credit.Credit
	err  error
}

// ListActive returns every row so the aggregator's own balance check is exercised.
func (f *fakeCredits) ListActive(ctx context.Context, businessID uuid.UUID) ([]credit.Credit, error) {
	return f.rows, f.err
}

type fakeCollections struct {
	rows []collection.Collection
	err  error
}

func (f *fakeCollections) ListInRange(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]collection.Collection, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []collection.Collection{}
	for _, c := range f.rows {
		if !c.PaymentDate.Before(from) && c.PaymentDate.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, bogota)
}

func paid(amount int64, when time.Time, method string) collection.Collection {
	c := collection.Collection{ID: uuid.New(), Amount: decimal.NewFromInt(amount), PaymentDate: when}
	if method != "" {
		c.PaymentMethod = &method
	}
	return c
}

func newTestAggregator(credits []credit.Credit, rows []collection.Collection) *Aggregator {
	a := NewAggregator(&fakeCredits{rows: credits}, &fakeCollections{rows: rows}, bogota)
	// Wednesday 6 March 2024, 15:00 local
	a.now = func() time.Time { return at(time.March, 6, 15) }
	return a
}

func window(start, end time.Time) Request {
	return Request{BusinessID: uuid.New(), StartDate: &start, EndDate: &end}
}

func TestOneDayWindowHasSingleTodayBucket(t *testing.T) {
	a := newTestAggregator(nil, []collection.Collection{paid(15, at(time.March, 5, 9), "Efectivo")})

	stats, err := a.Stats(context.Background(), window(at(time.March, 5, 0), at(time.March, 6, 0)))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.WeeklyCollectionData) != 1 || stats.WeeklyCollectionData[0].Label != TodayLabel {
		t.Fatalf("expected one Hoy bucket, got %+v", stats.WeeklyCollectionData)
	}
	b := stats.WeeklyCollectionData[0]
	if b.Day != 5 {
		t.Fatalf("expected day of month 5, got %d", b.Day)
	}
	if !b.Amount.Equal(decimal.NewFromInt(15)) || !b.Cash.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected bucket %+v", b)
	}
}

func TestElapsedDayWindowHasSingleTodayBucket(t *testing.T) {
	rows := []collection.Collection{
		paid(3, at(time.March, 4, 18), "efectivo"),
		paid(9, at(time.March, 5, 8), "efectivo"),
	}
	a := newTestAggregator(nil, rows)

	stats, err := a.Stats(context.Background(), window(at(time.March, 4, 12), at(time.March, 5, 12)))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.WeeklyCollectionData) != 1 || stats.WeeklyCollectionData[0].Label != TodayLabel {
		t.Fatalf("expected one Hoy bucket for 24h, got %+v", stats.WeeklyCollectionData)
	}
	b := stats.WeeklyCollectionData[0]
	if b.Date != "2024-03-04" || !b.Amount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("the bucket holds the start day only, got %+v", b)
	}
	if !stats.TotalCollected.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("the total covers the whole window, got %s", stats.TotalCollected)
	}
}

func TestShortWindowAlwaysHasSevenBuckets(t *testing.T) {
	a := newTestAggregator(nil, nil)

	stats, err := a.Stats(context.Background(), window(at(time.March, 1, 0), at(time.March, 4, 0)))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.WeeklyCollectionData) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(stats.WeeklyCollectionData))
	}
	// 1 March 2024 is a Friday; labels follow position, day keeps the real weekday
	labels := []string{"L", "M", "X", "J", "V", "S", "D"}
	days := []int{5, 6, 7, 1, 2, 3, 4}
	for i, b := range stats.WeeklyCollectionData {
		if b.Label != labels[i] || b.Day != days[i] {
			t.Fatalf("bucket %d: expected %s/%d, got %s/%d", i, labels[i], days[i], b.Label, b.Day)
		}
	}
	if stats.WeeklyCollectionData[0].Date != "2024-03-01" {
		t.Fatalf("buckets must start at the window start, got %s", stats.WeeklyCollectionData[0].Date)
	}
}

func TestLongWindowStopsAtToday(t *testing.T) {
	a := newTestAggregator(nil, []collection.Collection{paid(5, at(time.March, 2, 8), "")})

	stats, err := a.Stats(context.Background(), window(at(time.March, 1, 0), at(time.March, 20, 0)))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.WeeklyCollectionData) != 6 {
		t.Fatalf("expected buckets 1..6, got %d", len(stats.WeeklyCollectionData))
	}
	first, last := stats.WeeklyCollectionData[0], stats.WeeklyCollectionData[5]
	if first.Label != "1" || first.Day != 1 || last.Label != "6" || last.Day != 6 {
		t.Fatalf("expected day-of-month labels, got %+v", stats.WeeklyCollectionData)
	}
	if !stats.WeeklyCollectionData[1].Amount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected the payment on day 2")
	}
}

func TestPaymentClassificationIsCaseInsensitive(t *testing.T) {
	rows := []collection.Collection{
		paid(1, at(time.March, 2, 8), "EFECTIVO"),
		paid(2, at(time.March, 2, 9), "efectivo"),
		paid(4, at(time.March, 2, 10), "Efectivo"),
		paid(8, at(time.March, 3, 10), "Transacción"),
		paid(16, at(time.March, 3, 11), "transaccion"),
		paid(32, at(time.March, 3, 12), "transferencia"),
		paid(64, at(time.March, 3, 13), ""),
	}
	a := newTestAggregator(nil, rows)

	stats, err := a.Stats(context.Background(), window(at(time.March, 1, 0), at(time.March, 5, 0)))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.CashCount != 3 || !stats.CashCollection.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected 3 cash rows totalling 7, got %d %s", stats.CashCount, stats.CashCollection)
	}
	if stats.TransactionCount != 2 || !stats.TransactionCollection.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("expected 2 transaction rows totalling 24, got %d %s", stats.TransactionCount, stats.TransactionCollection)
	}
	if !stats.TotalCollected.Equal(decimal.NewFromInt(127)) {
		t.Fatalf("unclassified rows still count in the total, got %s", stats.TotalCollected)
	}
}

func TestPortfolioRatios(t *testing.T) {
	clientA, clientB := uuid.New(), uuid.New()

	t.Run("no active credits", func(t *testing.T) {
		stats, err := newTestAggregator(nil, nil).Stats(context.Background(), Request{BusinessID: uuid.New()})
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.ActiveCredits != 0 || stats.UpToDatePercentage != 0 {
			t.Fatalf("expected 0%% up to date, got %v", stats.UpToDatePercentage)
		}
	})

	t.Run("all up to date", func(t *testing.T) {
		credits := []credit.Credit{
			{ID: uuid.New(), ClientID: clientA, TotalBalance: decimal.NewFromInt(100)},
			{ID: uuid.New(), ClientID: clientA, TotalBalance: decimal.NewFromInt(50)},
			{ID: uuid.New(), ClientID: clientB, TotalBalance: decimal.Zero, OverdueInstallments: 3},
		}
		stats, err := newTestAggregator(credits, nil).Stats(context.Background(), Request{BusinessID: uuid.New()})
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.ActiveCredits != 2 || stats.ClientsInArrears != 0 || stats.TotalClients != 1 {
			t.Fatalf("unexpected portfolio %+v", stats)
		}
		if stats.UpToDatePercentage != 100 || stats.OverduePercentage != 0 {
			t.Fatalf("expected 100/0, got %v/%v", stats.UpToDatePercentage, stats.OverduePercentage)
		}
	})

	t.Run("one in arrears", func(t *testing.T) {
		credits := []credit.Credit{
			{ID: uuid.New(), ClientID: clientA, TotalBalance: decimal.NewFromInt(100)},
			{ID: uuid.New(), ClientID: clientB, TotalBalance: decimal.NewFromInt(100), OverdueInstallments: 1},
		}
		stats, err := newTestAggregator(credits, nil).Stats(context.Background(), Request{BusinessID: uuid.New()})
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.ClientsInArrears != 1 || stats.UpToDatePercentage != 50 || stats.OverduePercentage != 50 {
			t.Fatalf("unexpected ratios %+v", stats)
		}
	})

	t.Run("ratios are not rounded", func(t *testing.T) {
		credits := []credit.Credit{
			{ID: uuid.New(), ClientID: clientA, TotalBalance: decimal.NewFromInt(100)},
			{ID: uuid.New(), ClientID: clientA, TotalBalance: decimal.NewFromInt(100)},
			{ID: uuid.New(), ClientID: clientB, TotalBalance: decimal.NewFromInt(100), OverdueInstallments: 2},
		}
		stats, err := newTestAggregator(credits, nil).Stats(context.Background(), Request{BusinessID: uuid.New()})
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.UpToDatePercentage != 66.66666666666666 {
			t.Fatalf("expected 66.66666666666666, got %v", stats.UpToDatePercentage)
		}
		if want := 100 - stats.UpToDatePercentage; stats.OverduePercentage != want {
			t.Fatalf("expected overdue %v, got %v", want, stats.OverduePercentage)
		}
	})
}

func TestScenarioOnlyPositiveBalancesAreActive(t *testing.T) {
	clientID := uuid.New()
	credits := []credit.Credit{
		{ID: uuid.New(), ClientID: clientID, TotalBalance: decimal.NewFromInt(100)},
		{ID: uuid.New(), ClientID: clientID, TotalBalance: decimal.Zero},
	}
	stats, err := newTestAggregator(credits, nil).Stats(context.Background(), Request{BusinessID: uuid.New()})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ActiveCredits != 1 {
		t.Fatalf("expected 1 active credit, got %d", stats.ActiveCredits)
	}
}

func TestDefaultWindowIsCurrentWeek(t *testing.T) {
	rows := []collection.Collection{
		paid(7, at(time.March, 1, 10), "efectivo"),     // this month, last week
		paid(10, at(time.March, 4, 10), "efectivo"),    // Monday
		paid(20, at(time.March, 6, 9), "transacción"), // today
	}
	stats, err := newTestAggregator(nil, rows).Stats(context.Background(), Request{BusinessID: uuid.New()})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"daily", stats.DailyCollection, 20},
		{"weekly", stats.WeeklyCollection, 30},
		{"monthly", stats.MonthlyCollection, 37},
		{"total", stats.TotalCollected, 30},
		{"cash", stats.CashCollection, 10},
		{"transaction", stats.TransactionCollection, 20},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Fatalf("%s: expected %d, got %s", c.name, c.want, c.got)
		}
	}

	buckets := stats.WeeklyCollectionData
	if len(buckets) != 7 || buckets[0].Label != "L" || buckets[6].Label != "D" || buckets[0].Day != 1 || buckets[6].Day != 7 {
		t.Fatalf("expected Monday..Sunday buckets, got %+v", buckets)
	}
	if !buckets[0].Amount.Equal(decimal.NewFromInt(10)) || !buckets[2].Amount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected bucket amounts %+v", buckets)
	}
	if !buckets[0].Cash.IsZero() || !buckets[2].Transaction.IsZero() {
		t.Fatalf("the default week is not split by method")
	}
}

func TestStatsErrors(t *testing.T) {
	a := newTestAggregator(nil, nil)
	if _, err := a.Stats(context.Background(), Request{}); !apperr.Is(err, apperr.KindPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}

	cause := errors.New("db down")
	a = NewAggregator(&fakeCredits{}, &fakeCollections{err: cause}, bogota)
	_, err := a.Stats(context.Background(), Request{BusinessID: uuid.New()})
	if !apperr.Is(err, apperr.KindFetchFailed) || !errors.Is(err, cause) {
		t.Fatalf("expected fetch failure wrapping cause, got %v", err)
	}
}

func TestHandlerWindowValidation(t *testing.T) {
	h := NewHandler(newTestAggregator(nil, nil), nil, bogota)
	ctx := middleware.WithIdentity(context.Background(), uuid.New(), uuid.New(), "admin")

	w := httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest(http.MethodGet, "/stats?start_date=2024-03-05&end_date=2024-03-01", nil).WithContext(ctx))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	for _, target := range []string{
		"/stats?start_date=2024-03-05",
		"/stats?end_date=2024-03-05",
	} {
		w := httptest.NewRecorder()
		h.GetStats(w, httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: a half window falls back to the week, got %d", target, w.Code)
		}
		var body struct {
			Data struct {
				WeeklyCollectionData []DayBucket `json:"weekly_collection_data"`
			} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		got := body.Data.WeeklyCollectionData
		if len(got) != 7 || got[0].Label != "L" || got[0].Date != "2024-03-04" {
			t.Fatalf("%s: expected the current week, got %+v", target, got)
		}
	}

	w = httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest(http.MethodGet, "/stats?start_date=2024-03-01&end_date=2024-03-04", nil).WithContext(ctx))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
