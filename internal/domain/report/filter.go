package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/recaudopro/recaudo-api/internal/domain/client"
	"github.com/recaudopro/recaudo-api/internal/domain/collection"
	"github.com/recaudopro/recaudo-api/internal/domain/credit"
	"github.com/recaudopro/recaudo-api/internal/pkg/apperr"
)

// Filter narrows an enriched view. StartDate and EndDate are inclusive and
// bound created_at for clients and credits, payment_date for collections.
type Filter struct {
	BusinessID uuid.UUID
	ClientID   *uuid.UUID
	// UserEmail keeps rows whose resolved collector email matches exactly.
	UserEmail *string
	StartDate *time.Time
	EndDate   *time.Time
	// PaymentMethod applies to the collections view only.
	PaymentMethod *string
}

func (f Filter) validate() error {
	if f.BusinessID == uuid.Nil {
		return apperr.PreconditionFailed("business_id")
	}
	return nil
}

func (f Filter) userEmail() (string, bool) {
	if f.UserEmail == nil || *f.UserEmail == "" {
		return "", false
	}
	return *f.UserEmail, true
}

// PaymentMethodValue maps UI filter values onto stored payment methods:
// cash is efectivo, transfer is transferencia, anything else is kept as is.
func PaymentMethodValue(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "cash":
		return collection.MethodCash
	case "transfer":
		return collection.MethodTransfer
	}
	return v
}

func (f Filter) clientFilter() client.ListFilter {
	return client.ListFilter{BusinessID: f.BusinessID, ClientID: f.ClientID, StartDate: f.StartDate, EndDate: f.EndDate}
}

func (f Filter) creditFilter() credit.ListFilter {
	return credit.ListFilter{BusinessID: f.BusinessID, ClientID: f.ClientID, StartDate: f.StartDate, EndDate: f.EndDate}
}

func (f Filter) collectionFilter() collection.ListFilter {
	cf := collection.ListFilter{BusinessID: f.BusinessID, ClientID: f.ClientID, StartDate: f.StartDate, EndDate: f.EndDate}
	if f.PaymentMethod != nil && strings.TrimSpace(*f.PaymentMethod) != "" {
		cf.PaymentMethods = []string{PaymentMethodValue(*f.PaymentMethod)}
	}
	return cf
}
