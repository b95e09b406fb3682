package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authsvc "github.com/Pankaj72885/care.xyz/internal/auth/service"
	bookrepo "github.com/Pankaj72885/care.xyz/internal/booking/repository"
	booksvc "github.com/Pankaj72885/care.xyz/internal/booking/service"
	catdomain "github.com/Pankaj72885/care.xyz/internal/catalog/domain"
	catrepo "github.com/Pankaj72885/care.xyz/internal/catalog/repository"
	catsvc "github.com/Pankaj72885/care.xyz/internal/catalog/service"
	"github.com/Pankaj72885/care.xyz/internal/gateway/handlers"
	paysvc "github.com/Pankaj72885/care.xyz/internal/payment/service"
	repsvc "github.com/Pankaj72885/care.xyz/internal/report/service"
	userdomain "github.com/Pankaj72885/care.xyz/internal/user/domain"
	userrepo "github.com/Pankaj72885/care.xyz/internal/user/repository"
	usersvc "github.com/Pankaj72885/care.xyz/internal/user/service"
)

const secret = "router-test-secret"

type env struct {
	router   *gin.Engine
	users    *userrepo.UserRepo
	services *catrepo.ServiceRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	users := userrepo.NewUserRepo(gdb)
	services := catrepo.NewServiceRepo(gdb)
	bookings := bookrepo.NewBookingRepo(gdb)
	require.NoError(t, users.Migrate())
	require.NoError(t, services.Migrate())
	require.NoError(t, bookings.Migrate())

	auth := authsvc.NewAuthSvc(users, secret, time.Hour, 24*time.Hour)
	r := Router(Deps{
		Auth:      handlers.NewAuthHandler(auth, nil),
		User:      handlers.NewUserHandler(usersvc.NewUserSvc(users)),
		Catalog:   handlers.NewCatalogHandler(catsvc.NewCatalogSvc(services)),
		Booking:   handlers.NewBookingHandler(booksvc.NewBookingSvc(bookings, services, nil, nil), bookings),
		Payment:   handlers.NewPaymentHandler(paysvc.NewPaymentSvc(nil, nil, bookings), bookings),
		Report:    handlers.NewReportHandler(repsvc.NewReportSvc(gdb, nil)),
		JWTSecret: secret,
	})
	return &env{router: r, users: users, services: services}
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) registerAndLogin(t *testing.T, email string, admin bool) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/register", "", fmt.Sprintf(
		`{"name":"Test User","email":%q,"password":"secret1"}`, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	if admin {
		u, err := e.users.ByEmail(context.Background(), email)
		require.NoError(t, err)
		_, err = e.users.UpdateFields(context.Background(), u.ID, map[string]any{"role": userdomain.RoleAdmin})
		require.NoError(t, err)
	}

	w = e.do(t, http.MethodPost, "/v1/auth/login", "", fmt.Sprintf(
		`{"email":%q,"password":"secret1"}`, email))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Tokens struct {
			Access string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Tokens.Access)
	return res.Tokens.Access
}

func (e *env) seedService(t *testing.T) *catdomain.Service {
	t.Helper()
	svc := &catdomain.Service{
		Title: "Professional Nursing Care", Slug: "professional-nursing",
		Category: "Nursing", BaseRate: 800, Active: true,
	}
	require.NoError(t, e.services.Create(context.Background(), svc))
	return svc
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingCreateFlow(t *testing.T) {
	e := newEnv(t)
	svc := e.seedService(t)
	token := e.registerAndLogin(t, "rahim@example.com", false)

	// unauthenticated caller is rejected before the handler runs
	w := e.do(t, http.MethodPost, "/v1/bookings", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// total_cost in the request body is discarded and recomputed
	body := fmt.Sprintf(`{
		"service_id": %q, "duration_unit": "HOUR", "duration_value": 8,
		"division": "Dhaka", "district": "Dhaka", "city": "Dhaka",
		"area": "Banani", "address": "House 12, Road 5, Banani",
		"total_cost": 1
	}`, svc.ID)
	w = e.do(t, http.MethodPost, "/v1/bookings", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID        string `json:"ID"`
		TotalCost int64  `json:"TotalCost"`
		Status    string `json:"Status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.EqualValues(t, 8*800, created.TotalCost)
	assert.Equal(t, "PENDING", created.Status)

	// the booking shows up in the caller's list and detail
	w = e.do(t, http.MethodGet, "/v1/bookings", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w = e.do(t, http.MethodGet, "/v1/bookings/"+created.ID, token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// a different user cannot read it
	other := e.registerAndLogin(t, "karim@example.com", false)
	w = e.do(t, http.MethodGet, "/v1/bookings/"+created.ID, other, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	e := newEnv(t)
	user := e.registerAndLogin(t, "user@example.com", false)
	admin := e.registerAndLogin(t, "admin@care.xyz", true)

	w := e.do(t, http.MethodGet, "/v1/admin/users", user, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, http.MethodGet, "/v1/admin/users", admin, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/admin/reports/sales", admin, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminBookingStatusEndpoints(t *testing.T) {
	e := newEnv(t)
	svc := e.seedService(t)
	user := e.registerAndLogin(t, "user@example.com", false)
	admin := e.registerAndLogin(t, "admin@care.xyz", true)

	body := fmt.Sprintf(`{
		"service_id": %q, "duration_unit": "DAY", "duration_value": 2,
		"division": "Dhaka", "district": "Dhaka", "city": "Dhaka",
		"area": "Banani", "address": "House 12, Road 5, Banani"
	}`, svc.ID)
	w := e.do(t, http.MethodPost, "/v1/bookings", user, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// illegal jump through the guarded endpoint
	w = e.do(t, http.MethodPut, "/v1/admin/bookings/"+created.ID+"/status", admin, `{"status":"COMPLETED"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// legal transition
	w = e.do(t, http.MethodPut, "/v1/admin/bookings/"+created.ID+"/status", admin, `{"status":"CONFIRMED"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// force endpoint may do what the guarded one cannot
	w = e.do(t, http.MethodPut, "/v1/admin/bookings/"+created.ID+"/status/force", admin, `{"status":"PENDING"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// non-admin cannot touch either
	w = e.do(t, http.MethodPut, "/v1/admin/bookings/"+created.ID+"/status", user, `{"status":"CANCELLED"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentEndpointsUnconfigured(t *testing.T) {
	e := newEnv(t)
	svc := e.seedService(t)
	token := e.registerAndLogin(t, "user@example.com", false)

	body := fmt.Sprintf(`{
		"service_id": %q, "duration_unit": "HOUR", "duration_value": 1,
		"division": "Dhaka", "district": "Dhaka", "city": "Dhaka",
		"area": "Banani", "address": "House 12, Road 5, Banani"
	}`, svc.ID)
	w := e.do(t, http.MethodPost, "/v1/bookings", token, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// no Omise keys in this environment -> conflict, not a crash
	w = e.do(t, http.MethodPost, "/v1/payments/charges/card", token,
		fmt.Sprintf(`{"booking_id":%q,"card_token":"tok_x"}`, created.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestServicesPublicListing(t *testing.T) {
	e := newEnv(t)
	e.seedService(t)

	w := e.do(t, http.MethodGet, "/v1/services", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "professional-nursing")

	w = e.do(t, http.MethodGet, "/v1/services/professional-nursing", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/v1/services/unknown-slug", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
