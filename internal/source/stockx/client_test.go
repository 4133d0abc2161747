package stockx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func orderHistoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/selling/orders/history" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("orderStatus"); got != "COMPLETED" {
			t.Errorf("orderStatus = %q", got)
		}

		page := r.URL.Query().Get("pageNumber")
		w.Header().Set("Content-Type", "application/json")
		if page == "2" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"count": 1, "pageNumber": 2, "hasNextPage": false,
				"orders": []map[string]interface{}{{
					"orderNumber": "101",
					"amount":      "115.50",
					"product":     map[string]interface{}{"productName": "Dunk Low Panda"},
				}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1, "pageNumber": 1, "hasNextPage": true,
			"orders": []map[string]interface{}{{
				"orderNumber":  "100",
				"listingId":    "listing-100",
				"amount":       "210.00",
				"currencyCode": "USD",
				"createdAt":    "2024-03-15T10:30:00Z",
				"product": map[string]interface{}{
					"productId":   "prod-1",
					"productName": "Jordan 4 Retro Military Black",
					"styleId":     "DH6927-111",
					"brand":       "Jordan",
				},
				"variant": map[string]interface{}{"variantValue": "US 10"},
				"payout":  map[string]interface{}{"totalPayout": "179.75"},
				"shipment": map[string]interface{}{
					"destinationCountry": "DE",
					"destinationCity":    "Berlin",
				},
			}},
		})
	}))
}

func TestFetchBatchPagination(t *testing.T) {
	srv := orderHistoryServer(t)
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL, APIKey: "test-key", PageSize: 1})

	items, next, err := client.FetchBatch(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("FetchBatch() error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if next != "2" {
		t.Errorf("next cursor = %q, want 2", next)
	}

	order := items[0]
	if order.OrderNumber != "100" {
		t.Errorf("OrderNumber = %s", order.OrderNumber)
	}
	if order.StyleCode != "DH6927-111" {
		t.Errorf("StyleCode = %s", order.StyleCode)
	}
	if order.SizeValue != "US 10" {
		t.Errorf("SizeValue = %s", order.SizeValue)
	}
	if !order.GrossAmount.Equal(decimal.NewFromInt(210)) {
		t.Errorf("GrossAmount = %s, want 210", order.GrossAmount)
	}
	payout, _ := decimal.NewFromString("179.75")
	if !order.Payout.Valid || !order.Payout.Decimal.Equal(payout) {
		t.Errorf("Payout = %v, want %s", order.Payout, payout)
	}
	if order.SoldAt.IsZero() {
		t.Error("SoldAt should be parsed")
	}
	if order.DestinationCity != "Berlin" {
		t.Errorf("DestinationCity = %s", order.DestinationCity)
	}

	items, next, err = client.FetchBatch(context.Background(), next, 0)
	if err != nil {
		t.Fatalf("FetchBatch(page 2) error: %v", err)
	}
	if len(items) != 1 || items[0].OrderNumber != "101" {
		t.Errorf("page 2 items = %v", items)
	}
	if next != "" {
		t.Errorf("next cursor = %q, want empty at the last page", next)
	}
}

func TestFetchBatchInvalidCursor(t *testing.T) {
	client := NewClient(&Config{APIKey: "test-key"})
	if _, _, err := client.FetchBatch(context.Background(), "not-a-page", 0); err == nil {
		t.Fatal("expected error for a non-numeric cursor")
	}
}

func TestFetchBatchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "invalid api key"})
	}))
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL, APIKey: "bad-key"})
	if _, _, err := client.FetchBatch(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for a 401 response")
	}
}
