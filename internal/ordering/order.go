// Package ordering prices and composes purchase orders and submits them to
// the order webhook.
package ordering

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cafedash/pkg/models"
)

// TaxRate is the IVA applied on the net total of an order.
var TaxRate = decimal.NewFromFloat(0.19)

var (
	// ErrInvalidOrder is matched by every request validation failure.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrEmptyOrder is returned when no product has a positive quantity.
	ErrEmptyOrder = errors.New("order has no products")

	// ErrUnknownProduct is returned for a product the provider does not sell.
	ErrUnknownProduct = errors.New("unknown product")
)

// ItemRequest selects a quantity of one catalogue product.
type ItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=10000"`
}

// OrderRequest is what the order form submits.
type OrderRequest struct {
	Requester  string        `json:"requester" validate:"required,max=120"`
	Email      string        `json:"email,omitempty" validate:"omitempty,email"`
	Location   string        `json:"location" validate:"required"`
	ProviderID string        `json:"provider_id" validate:"required"`
	Items      []ItemRequest `json:"items" validate:"required,min=1,dive"`
	Note       string        `json:"note,omitempty" validate:"max=2000"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidOrder, strings.Join(parts, "; "))
}

// Is matches ErrInvalidOrder.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidOrder
}

// Quote is the priced content of an order.
type Quote struct {
	Supplier string             `json:"proveedor"`
	Lines    []models.OrderLine `json:"productos"`
	Net      float64            `json:"total_neto"`
	Tax      float64            `json:"iva"`
	Total    float64            `json:"total_con_iva"`
}

// Composer validates order requests and turns them into purchase orders.
type Composer struct {
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewComposer creates a Composer.
func NewComposer() *Composer {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Composer{
		validate: v,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Validate checks the request fields.
func (c *Composer) Validate(req OrderRequest) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   field,
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Quote validates req and prices it against the provider's catalogue.
// Items with a zero quantity are left out; the same product listed twice
// is priced on the summed quantity.
func (c *Composer) Quote(req OrderRequest, provider models.Provider) (*Quote, error) {
	if err := c.Validate(req); err != nil {
		return nil, err
	}

	catalogue := make(map[string]models.Product, len(provider.Products))
	for _, p := range provider.Products {
		catalogue[strings.ToLower(p.Name)] = p
	}

	quantities := make(map[string]int, len(req.Items))
	var order []string
	for _, item := range req.Items {
		key := strings.ToLower(strings.TrimSpace(item.Product))
		if _, ok := catalogue[key]; !ok {
			return nil, fmt.Errorf("%w: %q from %s", ErrUnknownProduct, item.Product, provider.Name)
		}
		if item.Quantity == 0 {
			continue
		}
		if _, seen := quantities[key]; !seen {
			order = append(order, key)
		}
		quantities[key] += item.Quantity
	}
	if len(order) == 0 {
		return nil, ErrEmptyOrder
	}

	net := decimal.Zero
	lines := make([]models.OrderLine, 0, len(order))
	for _, key := range order {
		p := catalogue[key]
		qty := quantities[key]
		subtotal := decimal.NewFromFloat(UnitPrice(p, qty, provider.Name)).Mul(decimal.NewFromInt(int64(qty)))
		net = net.Add(subtotal)

		lines = append(lines, models.OrderLine{
			Product:         p.Name,
			Unit:            p.Unit,
			Category:        p.Category,
			Quantity:        qty,
			UnitPrice:       UnitPrice(p, qty, provider.Name),
			Subtotal:        subtotal.InexactFloat64(),
			DiscountApplied: DiscountApplied(p, qty, provider.Name),
		})
	}

	tax := net.Mul(TaxRate).Round(0)
	return &Quote{
		Supplier: provider.Name,
		Lines:    lines,
		Net:      net.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    net.Add(tax).InexactFloat64(),
	}, nil
}

// Compose prices req and stamps it with a submission id and time.
func (c *Composer) Compose(req OrderRequest, provider models.Provider) (*models.PurchaseOrder, error) {
	q, err := c.Quote(req, provider)
	if err != nil {
		return nil, err
	}

	return &models.PurchaseOrder{
		ID:         c.newID(),
		CreatedAt:  c.now().UTC(),
		Requester:  strings.TrimSpace(req.Requester),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Location:   strings.TrimSpace(req.Location),
		ProviderID: provider.ID,
		Supplier:   q.Supplier,
		Lines:      q.Lines,
		Net:        q.Net,
		Tax:        q.Tax,
		Total:      q.Total,
		Note:       strings.TrimSpace(req.Note),
	}, nil
}
