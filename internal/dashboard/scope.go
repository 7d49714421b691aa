package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"cafedash/pkg/models"
)

var (
	// ErrNoIdentity is returned when no user email was supplied.
	ErrNoIdentity = errors.New("no user identity")

	// ErrUnknownManager is returned when the email is not in the managers list.
	ErrUnknownManager = errors.New("user is not a registered manager")

	// ErrUnknownInvoice is returned for an invoice outside the caller's scope,
	// whether or not it exists.
	ErrUnknownInvoice = errors.New("invoice not found")
)

// Scope restricts a dashboard to the records a manager may see. Location
// is empty for managers that see every location.
type Scope struct {
	Manager  models.Manager `json:"manager"`
	Location string         `json:"location,omitempty"`
}

// GeneralScope sees every location.
func GeneralScope() Scope {
	return Scope{Manager: models.Manager{Location: models.DefaultManagerLocation}}
}

// Local reports whether the scope is bound to one location.
func (s Scope) Local() bool {
	return s.Location != ""
}

// Allows reports whether records of location are visible in the scope.
func (s Scope) Allows(location string) bool {
	return !s.Local() || location == s.Location
}

// ResolveScope finds the manager with the given email. Emails compare
// case-insensitively.
func ResolveScope(managers []models.Manager, email string) (Scope, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Scope{}, ErrNoIdentity
	}

	for _, m := range managers {
		if m.Email != email {
			continue
		}
		if m.SeesAllLocations() {
			return Scope{Manager: m}, nil
		}
		return Scope{Manager: m, Location: strings.TrimSpace(m.Location)}, nil
	}

	return Scope{}, fmt.Errorf("%w: %s", ErrUnknownManager, email)
}
