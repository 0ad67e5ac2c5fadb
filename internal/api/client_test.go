package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/returns"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/metrics"
)

func testAPIConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:         baseURL,
		Timeout:         2 * time.Second,
		ListRetries:     2,
		RetryBackoff:    time.Millisecond,
		BreakerFailures: 100,
		BreakerOpenFor:  time.Minute,
		BreakerHalfOpen: 1,
		DefaultPageTake: 10,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *auth.Credentials) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := auth.NewCredentials()
	backend := NewBackend(testAPIConfig(srv.URL), WithLogger(logger.Discard()), WithMetrics(metrics.New()))
	return backend.Client(creds), creds
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

const productJSON = `{"id":"p1","name":"Mug","description":"","price":1000,"category":"kitchen","brand":"acme","images":[],"isActive":true,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}`

func TestDo_SendsHeaders(t *testing.T) {
	var got http.Header
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, productJSON)
	})

	_, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Empty(t, got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))

	creds.Set("tok-123")
	_, err = client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
}

func TestDo_ForwardsRequestIDAndUserAgent(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, productJSON)
	}))
	t.Cleanup(srv.Close)

	cfg := testAPIConfig(srv.URL)
	cfg.UserAgentProduct = "storefront-gateway"
	backend := NewBackend(cfg, WithLogger(logger.Discard()))
	client := backend.Client(auth.NewCredentials())

	ctx := ContextWithRequestID(context.Background(), "req-42")
	_, err := client.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "req-42", got.Get("X-Request-ID"))
	assert.Equal(t, "storefront-gateway", got.Get("User-Agent"))
	assert.Equal(t, "closed", backend.BreakerState())
}

func TestDo_NotFoundWithMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
	})

	_, err := client.GetProduct(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindHTTP, apiErr.Kind)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "not found", apiErr.Message)
	assert.True(t, IsNotFound(err))
}

func TestDo_NonJSONErrorBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "<html>nope</html>")
	})

	_, err := client.GetOrder(context.Background(), "o1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "HTTP 404", apiErr.Message)
}

func TestDo_ErrorFieldAndArrayMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"bad input"}`, "bad input"},
		{"array message", `{"message":["email must be an email","password too short"]}`, "email must be an email; password too short"},
		{"empty message", `{"message":""}`, "HTTP 400"},
		{"numeric message", `{"message":42}`, "HTTP 400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tt.body)
			})
			err := client.DeleteProduct(context.Background(), "p1")
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewBackend(testAPIConfig(url), WithLogger(logger.Discard())).Client(auth.NewCredentials())
	_, err := client.GetProduct(context.Background(), "p1")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, NetworkMessage, apiErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestDo_UnwrapsSuccessEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":`+productJSON+`}`)
	})

	p, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, int64(1000), p.Price)
}

func TestDo_ResponseFailsValidation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"o1","status":"LOST","totalAmount":1}`)
	})

	_, err := client.GetOrder(context.Background(), "o1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "status")
}

func TestDo_RequestValidatedBeforeSend(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := client.Login(context.Background(), user.LoginRequest{Email: "not-an-email", Password: "123"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "email")
	assert.Contains(t, apiErr.Message, "password")
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRegister_DefaultsRole(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusCreated, `{"accessToken":"a","refreshToken":"r"}`)
	})

	tokens, err := client.Register(context.Background(), user.RegisterRequest{
		Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Nil(t, tokens.User)
	assert.Equal(t, "USER", body["role"])
}

func TestChangePassword_ReturnsMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, `{"message":"password changed"}`)
	})

	msg, err := client.ChangePassword(context.Background(), user.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "password changed", msg)
}

func TestListProducts_QueryAndBareArray(t *testing.T) {
	var query string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `[`+productJSON+`]`)
	})

	page, err := client.ListProducts(context.Background(), product.Filter{Search: "mug", Skip: 20})
	require.NoError(t, err)
	assert.Equal(t, "search=mug&skip=20", query)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 20, page.Skip)
	assert.Equal(t, 10, page.Take)
}

func TestListMyOrders_RetriesServerErrors(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/my-orders", r.URL.Path)
		if atomic.AddInt32(&hits, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, `{"message":"busy"}`)
			return
		}
		writeJSON(w, http.StatusOK, `[{"id":"o1","userId":"u1","status":"PENDING","totalAmount":5000,"shippingAddress":{}}]`)
	})

	page, err := client.ListMyOrders(context.Background(), order.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	require.Len(t, page.Data, 1)
	assert.Equal(t, order.StatusPending, page.Data[0].Status)
}

func TestListReturns_GivesUpAfterRetries(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
	})

	_, err := client.ListReturns(context.Background(), returns.Filter{})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestListReturns_DoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusUnauthorized, `{"message":"unauthorized"}`)
	})

	_, err := client.ListReturns(context.Background(), returns.Filter{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestListProducts_NoRetry(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusInternalServerError, `{}`)
	})

	_, err := client.ListProducts(context.Background(), product.Filter{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestListReturns_EmptyObject(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	page, err := client.ListReturns(context.Background(), returns.Filter{Take: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 5, page.Take)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusBadGateway, `{}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testAPIConfig(srv.URL)
	cfg.BreakerFailures = 2
	client := NewBackend(cfg, WithLogger(logger.Discard())).Client(auth.NewCredentials())

	for i := 0; i < 2; i++ {
		_, err := client.GetProduct(context.Background(), "p1")
		assert.True(t, IsKind(err, KindHTTP))
	}

	_, err := client.GetProduct(context.Background(), "p1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.ErrorIs(t, err, errBreakerOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusNotFound, `{"message":"not found"}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testAPIConfig(srv.URL)
	cfg.BreakerFailures = 1
	client := NewBackend(cfg, WithLogger(logger.Discard())).Client(auth.NewCredentials())

	for i := 0; i < 3; i++ {
		_, err := client.GetProduct(context.Background(), "p1")
		assert.True(t, IsNotFound(err))
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestUpdateOrderStatus_SendsPatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/orders/o1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SHIPPED", body["status"])
		writeJSON(w, http.StatusOK, `{"id":"o1","status":"SHIPPED"}`)
	})

	o, err := client.UpdateOrderStatus(context.Background(), "o1", order.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, o.Status)

	_, err = client.UpdateOrderStatus(context.Background(), "o1", order.Status("LOST"))
	assert.True(t, IsKind(err, KindValidation))
}

func TestListInventory_PageEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lowStock=true", r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `{"data":[{"id":"i1","productId":"p1","quantity":2,"minThreshold":5}],"total":7,"skip":0,"take":1}`)
	})

	page, err := client.ListInventory(context.Background(), product.InventoryFilter{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 1, page.Take)
	require.Len(t, page.Data, 1)
	assert.True(t, page.Data[0].IsLowStock())
}
