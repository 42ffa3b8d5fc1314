package armsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upstream(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clients", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		json.NewEncoder(w).Encode([]Client{{ClientID: "c1", FirstName: "Ana", LastName: "Ruiz"}})
	})
	mux.HandleFunc("/api/clients/c1/payments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Payment{{PaymentID: "p1", ClientID: "c1", Type: PaymentTypeFinanced}})
	})
	mux.HandleFunc("/api/payments/p1/installments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Installment{{InstallmentID: "i1", PaymentID: "p1", Number: 1, Status: InstallmentPaid}})
	})
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		pct := 21.0
		json.NewEncoder(w).Encode(SystemConfig{VATPercent: &pct, DefaultCurrency: "EUR"})
	})
	return httptest.NewServer(mux)
}

func TestHTTPSourceRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPSource(nil, time.Second)
	assert.Error(t, err)
}

func TestHTTPSourceFetchesEntities(t *testing.T) {
	srv := upstream(t, nil)
	defer srv.Close()

	src, err := NewHTTPSource([]string{srv.URL}, time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	clients, err := src.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Ana Ruiz", clients[0].FullName())

	payments, err := src.ListPaymentsForClient(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].InstallmentBased())

	installments, err := src.ListInstallmentsForPayment(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, installments, 1)
	assert.Equal(t, InstallmentPaid, installments[0].Status)

	cfg, err := src.GetSystemConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg.VATPercent)
	assert.Equal(t, 21.0, *cfg.VATPercent)
}

func TestHTTPSourceRotatesReplicas(t *testing.T) {
	var hitsA, hitsB int
	srvA := upstream(t, &hitsA)
	defer srvA.Close()
	srvB := upstream(t, &hitsB)
	defer srvB.Close()

	src, err := NewHTTPSource([]string{srvA.URL, srvB.URL}, time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := src.ListClients(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, hitsA)
	assert.Equal(t, 2, hitsB)
}

func TestHTTPSourceSurfacesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src, err := NewHTTPSource([]string{srv.URL}, time.Second)
	require.NoError(t, err)

	_, err = src.ListClients(context.Background())
	assert.Error(t, err)
}
