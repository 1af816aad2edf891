package transport

import (
	"net/http"
	"testing"

	"storefront/internal/service"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Feature: storefront-api, Property 8: Invalid registration data is rejected
func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	env := newTestEnv(t)
	properties := gopter.NewProperties(nil)

	properties.Property("registration without a name, a valid email or a 6 character password fails", prop.ForAll(
		func(name, email, password string) bool {
			w := env.do(t, request{method: http.MethodPost, path: "/api/users/register",
				body: service.RegisterInput{Name: name, Email: email, Password: password}})
			return w.Code == http.StatusBadRequest
		},
		gen.OneConstOf("", "Ana"),
		gen.OneConstOf("", "not-an-email", "ana@"),
		gen.OneConstOf("", "12345"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/users/register",
		body: service.RegisterInput{Name: "Dan", Email: "Dan@Example.com", Password: "hunter22"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile service.Profile
	decodeBody(t, w, &profile)
	assert.Equal(t, "dan@example.com", profile.Email)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w = env.do(t, request{method: http.MethodPost, path: "/api/users/register",
		body: service.RegisterInput{Name: "Dan", Email: "dan@example.com", Password: "hunter22"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	// login by display name works too
	w = env.do(t, request{method: http.MethodPost, path: "/api/users/login",
		body: LoginRequest{Identifier: "Dan", Password: "hunter22"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/users/login",
		body: LoginRequest{Identifier: "dan@example.com", Password: "wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), service.ErrInvalidCredentials.Error())
}

func TestLoginMergesGuestCart(t *testing.T) {
	env := newTestEnv(t)
	session := "browser-1"

	w := env.do(t, request{method: http.MethodPost, path: "/api/cart/items", session: session,
		body: AddToCartRequest{ProductID: 2}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/users/login", session: session,
		body: LoginRequest{Identifier: "ana@example.com", Password: "secret1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	decodeBody(t, w, &resp)
	require.NotNil(t, resp.Cart)
	assert.Equal(t, 1, resp.Cart.TotalQuantity)

	var cart cartBody
	decodeBody(t, env.do(t, request{method: http.MethodGet, path: "/api/cart", token: resp.AccessToken}), &cart)
	assert.Equal(t, 1, cart.TotalQuantity)

	decodeBody(t, env.do(t, request{method: http.MethodGet, path: "/api/cart", session: session}), &cart)
	assert.Zero(t, cart.TotalQuantity)
}

func TestProfileAndAddresses(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@example.com")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, request{method: http.MethodGet, path: "/api/users/profile"}).Code)

	address := service.AddressInput{
		FullName: "Ana Pop", Phone: "0712345678", Address1: "Main Street 1", City: "Cluj", PostalCode: "400001",
	}
	w := env.do(t, request{method: http.MethodPost, path: "/api/users/addresses", token: token, body: address})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile service.Profile
	decodeBody(t, w, &profile)
	require.Len(t, profile.Addresses, 1)
	assert.True(t, profile.Addresses[0].IsDefault)
	firstID := profile.Addresses[0].ID

	address.City = "Iasi"
	w = env.do(t, request{method: http.MethodPost, path: "/api/users/addresses", token: token, body: address})
	require.Equal(t, http.StatusCreated, w.Code)
	decodeBody(t, w, &profile)
	secondID := profile.Addresses[1].ID

	w = env.do(t, request{method: http.MethodPost, path: "/api/users/addresses/" + secondID + "/default", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &profile)
	defaults := 0
	for _, a := range profile.Addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, secondID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	w = env.do(t, request{method: http.MethodDelete, path: "/api/users/addresses/" + firstID, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound,
		env.do(t, request{method: http.MethodDelete, path: "/api/users/addresses/" + firstID, token: token}).Code)

	address.Phone = "123"
	w = env.do(t, request{method: http.MethodPut, path: "/api/users/addresses/" + secondID, token: token, body: address})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/users/profile", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &profile)
	assert.Equal(t, "ana@example.com", profile.Email)
	assert.Len(t, profile.Addresses, 1)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ana@example.com")

	w := env.do(t, request{method: http.MethodPut, path: "/api/users/password", token: token,
		body: service.PasswordInput{CurrentPassword: "nope", NewPassword: "newsecret"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, request{method: http.MethodPut, path: "/api/users/password", token: token,
		body: service.PasswordInput{CurrentPassword: "secret1", NewPassword: "newsecret"}})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/users/login",
		body: LoginRequest{Identifier: "ana@example.com", Password: "newsecret"}})
	assert.Equal(t, http.StatusOK, w.Code)
}
