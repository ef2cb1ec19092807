package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

func hasCode(err error, he **echo.HTTPError, code int) bool {
	return errors.As(err, he) && (*he).Code == code
}

func runRBAC(t *testing.T, role string, allowed ...domain.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set("role", role)
	}

	reached := false
	err := RBAC(allowed...)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec, reached
}

func TestRBAC(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []domain.Role
		pass    bool
	}{
		{"exact match", "admin", []domain.Role{domain.RoleAdmin}, true},
		{"one of several", "pharmacy", []domain.Role{domain.RoleAdmin, domain.RolePharmacy}, true},
		{"role not listed", "customer", []domain.Role{domain.RoleAdmin}, false},
		{"no role claim", "", []domain.Role{domain.RoleAdmin}, false},
		{"unknown role string", "superuser", []domain.Role{domain.RoleAdmin}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, reached := runRBAC(t, tc.role, tc.allowed...)
			if reached != tc.pass {
				t.Fatalf("reached=%v, want %v", reached, tc.pass)
			}
			if !tc.pass && rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
		})
	}
}
