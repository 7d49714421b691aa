package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cafedash/internal/filter"
	"cafedash/internal/normalize"
)

// values collects a multi-select parameter given either repeated
// (?location=a&location=b) or comma separated (?location=a,b).
func values(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func number(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number, got %q", key, raw)
	}
	return &f, nil
}

func optionalString(q url.Values, key string) *string {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}

// dateBound reads an optional date bound, rejecting values that do not
// parse as a date.
func dateBound(q url.Values, key string) (*string, error) {
	raw := optionalString(q, key)
	if raw != nil && normalize.CanonicalDate(*raw) == "" {
		return nil, fmt.Errorf("%s must be a date, got %q", key, *raw)
	}
	return raw, nil
}

// orderFilters reads order filter state from query parameters.
func orderFilters(q url.Values) (filter.OrderFilters, error) {
	f := filter.OrderFilters{
		Locations: values(q, "location"),
		Suppliers: values(q, "supplier"),
		Statuses:  values(q, "status"),
		Search:    strings.TrimSpace(q.Get("q")),
	}

	var err error
	if f.DateFrom, err = dateBound(q, "from"); err != nil {
		return f, err
	}
	if f.DateTo, err = dateBound(q, "to"); err != nil {
		return f, err
	}
	if f.TotalMin, err = number(q, "total_min"); err != nil {
		return f, err
	}
	if f.TotalMax, err = number(q, "total_max"); err != nil {
		return f, err
	}
	return f, nil
}

// invoiceFilters reads invoice filter state from query parameters.
func invoiceFilters(q url.Values) (filter.InvoiceFilters, error) {
	f := filter.InvoiceFilters{
		Locations:      values(q, "location"),
		Issuers:        values(q, "issuer"),
		DocumentTypes:  values(q, "document_type"),
		PaymentMethods: values(q, "payment_method"),
		PaymentTerms:   values(q, "payment_terms"),
		Search:         strings.TrimSpace(q.Get("q")),
	}

	var err error
	if f.DateFrom, err = dateBound(q, "from"); err != nil {
		return f, err
	}
	if f.DateTo, err = dateBound(q, "to"); err != nil {
		return f, err
	}
	if f.DateField, err = filter.ParseDateField(q.Get("date_field")); err != nil {
		return f, err
	}
	if f.AmountMin, err = number(q, "amount_min"); err != nil {
		return f, err
	}
	if f.AmountMax, err = number(q, "amount_max"); err != nil {
		return f, err
	}
	return f, nil
}
