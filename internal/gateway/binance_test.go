package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adshao/go-binance/v2/common"
)

func newStubBinanceGateway(t *testing.T, status int, body string) *BinanceGateway {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	g := NewBinanceGateway("key", "secret", "BTC", "USDT")
	g.client.BaseURL = server.URL
	return g
}

func TestPlaceOrderServerErrorStaysAmbiguous(t *testing.T) {
	// HTTP 5xx means execution status unknown: the order may have been
	// accepted, so the caller must get ErrUnavailable and re-query.
	g := newStubBinanceGateway(t, http.StatusInternalServerError,
		`{"code":-1000,"msg":"An unknown error occurred while processing the request."}`)

	_, err := g.PlaceOrder(context.Background(), SideBuy, 0.1, "client-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("server error should wrap ErrUnavailable, got %v", err)
	}
	var rejected *OrderRejectedError
	if errors.As(err, &rejected) {
		t.Errorf("server error must not classify as a definitive rejection: %v", err)
	}
}

func TestPlaceOrderFilterFailureIsRejected(t *testing.T) {
	g := newStubBinanceGateway(t, http.StatusBadRequest,
		`{"code":-1013,"msg":"Filter failure: LOT_SIZE"}`)

	_, err := g.PlaceOrder(context.Background(), SideBuy, 0.1, "client-1")
	var rejected *OrderRejectedError
	if !errors.As(err, &rejected) {
		t.Errorf("filter failure should be a definitive rejection, got %v", err)
	}
}

func TestClassifyOrderError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantUnavailable bool
	}{
		{
			name:            "unknown execution status",
			err:             &common.APIError{Code: -1000, Message: "An unknown error occurred while processing the request."},
			wantUnavailable: true,
		},
		{
			name:            "disconnected from exchange",
			err:             &common.APIError{Code: -1001, Message: "Internal error; unable to process your request."},
			wantUnavailable: true,
		},
		{
			name:            "request timeout",
			err:             &common.APIError{Code: -1007, Message: "Timeout waiting for response from backend server."},
			wantUnavailable: true,
		},
		{
			name:            "filter failure is definitive",
			err:             &common.APIError{Code: -1013, Message: "Filter failure: MIN_NOTIONAL"},
			wantUnavailable: false,
		},
		{
			name:            "insufficient balance is definitive",
			err:             &common.APIError{Code: -2010, Message: "Account has insufficient balance for requested action."},
			wantUnavailable: false,
		},
		{
			name:            "transport failure",
			err:             errors.New("connection reset by peer"),
			wantUnavailable: true,
		},
		{
			name:            "context deadline",
			err:             context.DeadlineExceeded,
			wantUnavailable: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyOrderError(tc.err)
			var rejected *OrderRejectedError
			if tc.wantUnavailable {
				if !errors.Is(got, ErrUnavailable) {
					t.Errorf("expected ErrUnavailable, got %v", got)
				}
				if errors.As(got, &rejected) {
					t.Errorf("ambiguous failure must not be a rejection: %v", got)
				}
			} else {
				if !errors.As(got, &rejected) {
					t.Errorf("expected OrderRejectedError, got %v", got)
				}
			}
		})
	}
}

func TestQueryOrderDistinguishesMissingFromUnknown(t *testing.T) {
	g := newStubBinanceGateway(t, http.StatusBadRequest,
		`{"code":-2013,"msg":"Order does not exist."}`)
	if _, err := g.QueryOrder(context.Background(), "client-1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order should return ErrOrderNotFound, got %v", err)
	}

	g = newStubBinanceGateway(t, http.StatusInternalServerError,
		`{"code":-1000,"msg":"An unknown error occurred while processing the request."}`)
	_, err := g.QueryOrder(context.Background(), "client-1")
	if errors.Is(err, ErrOrderNotFound) {
		t.Errorf("server error must not read as order-not-found: %v", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("server error should wrap ErrUnavailable, got %v", err)
	}
}
