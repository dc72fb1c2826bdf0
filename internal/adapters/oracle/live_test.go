package oracle_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/predmarket/internal/adapters/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive_FetchConvertsToCents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/price", r.URL.Path)
		assert.Equal(t, "BTC", r.URL.Query().Get("fsym"))
		fmt.Fprint(w, `{"USD": 95000.50}`)
	}))
	defer srv.Close()

	l := oracle.NewLive(srv.URL)
	q, err := l.Fetch(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, int64(9_500_050), q.PriceCents)
	assert.Equal(t, "live", q.Source)
}

func TestLive_RejectsMissingPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"Error","Message":"symbol not found"}`)
	}))
	defer srv.Close()

	l := oracle.NewLive(srv.URL)
	_, err := l.Fetch(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestLive_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := oracle.NewLive(srv.URL)
	_, err := l.Fetch(context.Background(), "BTC")
	assert.Error(t, err)
}

func TestCoinbase_FetchParsesSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/ETH-USD/spot", r.URL.Path)
		fmt.Fprint(w, `{"data":{"base":"ETH","currency":"USD","amount":"3500.25"}}`)
	}))
	defer srv.Close()

	c := oracle.NewCoinbase(srv.URL)
	q, err := c.Fetch(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, int64(350_025), q.PriceCents)
}

func TestCoinbase_BadAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"amount":"not-a-number"}}`)
	}))
	defer srv.Close()

	c := oracle.NewCoinbase(srv.URL)
	_, err := c.Fetch(context.Background(), "ETH")
	assert.Error(t, err)
}
