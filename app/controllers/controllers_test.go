package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/pkg/apperr"
	"github.com/turnosapp/turnos/pkg/ctx"
)

type envelope struct {
	OK      bool            `json:"ok"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// serve mounts h on pattern and performs one request against it.
func serve(t *testing.T, method, pattern, target, body string, h ctx.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := chi.NewRouter()
	r.Method(method, pattern, ctx.Wrap(h))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status)
	return rec, env
}

type stubOrders struct {
	OrderService
	list   func() ([]models.Order, error)
	get    func(id string) (*models.Order, error)
	create func(in services.CreateOrderInput) (*models.Order, error)
	update func(id string, in services.UpdateOrderInput) (*models.Order, error)
}

func (s stubOrders) List(context.Context) ([]models.Order, error) { return s.list() }
func (s stubOrders) Get(_ context.Context, id string) (*models.Order, error) {
	if s.get == nil {
		return &models.Order{}, nil
	}
	return s.get(id)
}
func (s stubOrders) Create(_ context.Context, in services.CreateOrderInput) (*models.Order, error) {
	return s.create(in)
}
func (s stubOrders) Update(_ context.Context, id string, in services.UpdateOrderInput) (*models.Order, error) {
	return s.update(id, in)
}

func TestOrderIndexEmptyIsNotFoundWithNullData(t *testing.T) {
	c := NewOrderController(stubOrders{list: func() ([]models.Order, error) {
		return nil, apperr.NotFound("No orders found")
	}})

	rec, env := serve(t, http.MethodGet, "/turno", "/turno", "", c.Index)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.OK)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, "No orders found", env.Message)
}

func TestOrderShowPassesPathID(t *testing.T) {
	id := primitive.NewObjectID()
	var got string
	c := NewOrderController(stubOrders{get: func(raw string) (*models.Order, error) {
		got = raw
		return &models.Order{ID: id, Number: 12}, nil
	}})

	rec, env := serve(t, http.MethodGet, "/turno/{id}", "/turno/"+id.Hex(), "", c.Show)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.OK)
	assert.Equal(t, id.Hex(), got)

	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, int64(12), order.Number)
}

func TestOrderStoreBindsNestedBody(t *testing.T) {
	paymentID := primitive.NewObjectID()
	var received services.CreateOrderInput
	c := NewOrderController(stubOrders{create: func(in services.CreateOrderInput) (*models.Order, error) {
		received = in
		return &models.Order{ID: primitive.NewObjectID(), Number: 1, Kind: in.Kind, Status: in.Status, Payment: &paymentID}, nil
	}})

	body := `{
		"tipo": "domicilio",
		"estado": "pendiente",
		"usuario": {"nombre": "Ana", "email": "ana@example.com", "celular": "3001234567"},
		"producto": {"nombreProducto": "Pizza", "especificaciones": "grande"},
		"monto": 32000,
		"metodoPago": "tarjeta"
	}`
	rec, env := serve(t, http.MethodPost, "/turno", "/turno", body, c.Store)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.OK)
	require.NotNil(t, received.Customer)
	assert.Equal(t, "3001234567", received.Customer.Phone)
	assert.Equal(t, "Pizza", received.Item.Name)
	assert.Equal(t, models.MethodCard, received.Method)
	assert.Equal(t, 32000.0, received.Amount)

	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.NotNil(t, order.Payment)
	assert.Equal(t, paymentID, *order.Payment)
}

func TestOrderStoreRejectsBadJSON(t *testing.T) {
	called := false
	c := NewOrderController(stubOrders{create: func(services.CreateOrderInput) (*models.Order, error) {
		called = true
		return nil, nil
	}})

	rec, env := serve(t, http.MethodPost, "/turno", "/turno", `{"tipo":`, c.Store)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.OK)
	assert.False(t, called)
}

func TestUnexpectedErrorsAreOpaque(t *testing.T) {
	c := NewOrderController(stubOrders{update: func(string, services.UpdateOrderInput) (*models.Order, error) {
		return nil, errors.New("connection reset by peer")
	}})

	rec, env := serve(t, http.MethodPut, "/turno/{id}", "/turno/65f1c0ffee0000000000abcd", `{}`, c.Update)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", env.Message)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestOrderUpdateUnknownIDIsNotFoundWhateverTheBody(t *testing.T) {
	updated := false
	c := NewOrderController(stubOrders{
		get: func(id string) (*models.Order, error) {
			return nil, apperr.NotFound("No order found with id %s", id)
		},
		update: func(string, services.UpdateOrderInput) (*models.Order, error) {
			updated = true
			return nil, nil
		},
	})

	for _, body := range []string{"", `{"tipo":`, `{}`} {
		rec, env := serve(t, http.MethodPut, "/turno/{id}", "/turno/65f1c0ffee0000000000abcd", body, c.Update)
		assert.Equal(t, http.StatusNotFound, rec.Code, "body %q", body)
		assert.Contains(t, env.Message, "No order found")
	}
	assert.False(t, updated)
}

func TestOrderUpdateMalformedIDIsBadRequest(t *testing.T) {
	c := NewOrderController(stubOrders{get: func(id string) (*models.Order, error) {
		return nil, apperr.BadRequest("The id %s is not valid", id)
	}})

	rec, _ := serve(t, http.MethodPut, "/turno/{id}", "/turno/nope", "", c.Update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderUpdateBadBodyOnExistingOrder(t *testing.T) {
	c := NewOrderController(stubOrders{})

	rec, _ := serve(t, http.MethodPut, "/turno/{id}", "/turno/65f1c0ffee0000000000abcd", `{"tipo":`, c.Update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubPayments struct {
	PaymentService
	byOrder func(id string) (*models.Payment, error)
}

func (s stubPayments) GetByOrder(_ context.Context, id string) (*models.Payment, error) {
	return s.byOrder(id)
}

func TestPaymentByOrderReadsQueryOrPath(t *testing.T) {
	orderID := primitive.NewObjectID().Hex()
	var seen []string
	c := NewPaymentController(stubPayments{byOrder: func(id string) (*models.Payment, error) {
		seen = append(seen, id)
		return &models.Payment{Method: models.MethodTransfer}, nil
	}})

	rec, _ := serve(t, http.MethodGet, "/pago/pagoByTurno", "/pago/pagoByTurno?turno="+orderID, "", c.ByOrder)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, http.MethodGet, "/pago/pagoByTurno/{id}", "/pago/pagoByTurno/"+orderID, "", c.ByOrder)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{orderID, orderID}, seen)
}

type stubAuth struct {
	register func(in services.UserInput) (*services.AuthResult, error)
	login    func(in services.LoginInput) (*services.AuthResult, error)
}

func (s stubAuth) Register(_ context.Context, in services.UserInput) (*services.AuthResult, error) {
	return s.register(in)
}

func (s stubAuth) Login(_ context.Context, in services.LoginInput) (*services.AuthResult, error) {
	return s.login(in)
}

func TestLoginResponses(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@example.com", Password: "$2a$10$secret", Role: models.RoleAdministrator}
	c := NewAuthController(stubAuth{login: func(in services.LoginInput) (*services.AuthResult, error) {
		if in.Password != "secreto1" {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return &services.AuthResult{Token: "signed.jwt.token", User: user}, nil
	}})

	rec, env := serve(t, http.MethodPost, "/usuario/login", "/usuario/login", `{"email":"a@example.com","password":"nope"}`, c.Login)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "null", string(env.Data))
	assert.NotContains(t, rec.Body.String(), "token\"")

	rec, env = serve(t, http.MethodPost, "/usuario/login", "/usuario/login", `{"email":"a@example.com","password":"secreto1"}`, c.Login)
	assert.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "signed.jwt.token", res.Token)
	assert.Equal(t, user.ID.Hex(), res.User["_id"])
	assert.Equal(t, "administrador", res.User["rol"])
	assert.NotContains(t, rec.Body.String(), "$2a$10$secret")
}

func TestRegisterConflict(t *testing.T) {
	c := NewAuthController(stubAuth{register: func(services.UserInput) (*services.AuthResult, error) {
		return nil, apperr.Conflict("The email a@example.com is already registered")
	}})

	rec, env := serve(t, http.MethodPost, "/usuario/register", "/usuario/register",
		`{"email":"a@example.com","password":"secreto1","rol":"administrador"}`, c.Register)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.OK)
}

type stubUsers struct {
	UserService
	get        func(id string) (*models.User, error)
	update     func(id string, in services.UserInput) (*models.User, error)
	deactivate func(id string) (*models.User, error)
}

func (s stubUsers) Get(_ context.Context, id string) (*models.User, error) {
	return s.get(id)
}

func (s stubUsers) Update(_ context.Context, id string, in services.UserInput) (*models.User, error) {
	return s.update(id, in)
}

func (s stubUsers) Deactivate(_ context.Context, id string) (*models.User, error) {
	return s.deactivate(id)
}

func TestUserDestroyDeactivates(t *testing.T) {
	id := primitive.NewObjectID()
	c := NewUserController(stubUsers{deactivate: func(string) (*models.User, error) {
		return &models.User{ID: id, Email: "a@example.com", Active: false}, nil
	}})

	rec, env := serve(t, http.MethodDelete, "/usuario/{id}", "/usuario/"+id.Hex(), "", c.Destroy)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"activo":false`)
}

func TestUserUpdateUnknownIDIsNotFoundWhateverTheBody(t *testing.T) {
	c := NewUserController(stubUsers{
		get: func(id string) (*models.User, error) {
			return nil, apperr.NotFound("No user found with id %s", id)
		},
		update: func(string, services.UserInput) (*models.User, error) {
			t.Fatal("update must not run for an unknown user")
			return nil, nil
		},
	})

	rec, env := serve(t, http.MethodPut, "/usuario/{id}", "/usuario/65f1c0ffee0000000000abcd", "", c.Update)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, env.Message, "No user found")
}

type stubSummary struct{ sum *models.Summary }

func (s stubSummary) Summary(context.Context) (*models.Summary, error) { return s.sum, nil }

func TestDashboardSummary(t *testing.T) {
	c := NewDashboardController(stubSummary{sum: &models.Summary{Orders: 4, PendingOrders: 1, Revenue: 1500.5}})

	rec, env := serve(t, http.MethodGet, "/dashboard/resumen", "/dashboard/resumen", "", c.Summary)
	assert.Equal(t, http.StatusOK, rec.Code)

	var sum models.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, int64(4), sum.Orders)
	assert.Equal(t, 1500.5, sum.Revenue)
}

func TestHealth(t *testing.T) {
	up := NewHealthController(func(context.Context) error { return nil })
	rec, env := serve(t, http.MethodGet, "/health", "/health", "", up.Check)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.OK)

	down := NewHealthController(func(context.Context) error { return errors.New("no reachable servers") })
	rec, env = serve(t, http.MethodGet, "/health", "/health", "", down.Check)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.OK)
}
