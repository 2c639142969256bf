package fieldroutes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/rest"
	"github.com/joshbakergf/lead-manager-sub001/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "key", "token", time.Second)
}

func TestCreateCustomer_IDShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"customerID", `{"success":true,"customerID":"101"}`, "101"},
		{"customer_id", `{"success":true,"customer_id":102}`, "102"},
		{"id", `{"id":"103"}`, "103"},
		{"customerId", `{"success":true,"customerId":"104"}`, "104"},
		{"result scalar", `{"success":true,"result":105}`, "105"},
		{"result nested", `{"success":true,"result":{"customerID":"106"}}`, "106"},
		{"no id", `{"success":true,"count":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			got, err := client.CreateCustomer(context.Background(), models.Contact{FirstName: "Jane"})
			if err != nil {
				t.Fatalf("CreateCustomer: %v", err)
			}
			if got.CustomerID != tt.want {
				t.Fatalf("CustomerID = %q, want %q", got.CustomerID, tt.want)
			}
		})
	}
}

func TestCreateCustomer_RequestShape(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customer/create" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("authenticationKey") != "key" || r.Header.Get("authenticationToken") != "token" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"result":1}`))
	})

	contact := models.Contact{
		FirstName: "Jane", LastName: "Doe", Email: "j@x.com", Phone: "5551234567",
		Address: "1 Main St", City: "Austin", State: "TX", Zip: "78701",
	}
	if _, err := client.CreateCustomer(context.Background(), contact); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	want := map[string]string{
		"fname": "Jane", "lname": "Doe", "email": "j@x.com", "phone1": "5551234567",
		"address": "1 Main St", "city": "Austin", "state": "TX", "zip": "78701",
	}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateCustomer_SuccessFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"errorMessage":"Duplicate customer","customerID":"9"}`))
	})
	got, err := client.CreateCustomer(context.Background(), models.Contact{})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if got.Success || got.ErrorMessage != "Duplicate customer" || got.CustomerID != "" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestCreateCustomer_HTTPFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"errorMessage":"Invalid key"}`))
	})
	_, err := client.CreateCustomer(context.Background(), models.Contact{})
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Invalid key" || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected APIError %+v", apiErr)
	}
}

func TestCreatePaymentProfile(t *testing.T) {
	var got PaymentProfileRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paymentProfile/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true,"paymentProfileID":"77"}`))
	})

	req := PaymentProfileRequest{
		CustomerID: "101", MerchantID: "tok_9", Gateway: "payrix", PaymentMethod: PaymentMethodCreditCard,
		BillingFName: "Jane", BillingLName: "Doe",
	}
	res, err := client.CreatePaymentProfile(context.Background(), req)
	if err != nil {
		t.Fatalf("CreatePaymentProfile: %v", err)
	}
	if !res.Success || res.PaymentProfileID != "77" {
		t.Fatalf("unexpected result %+v", res)
	}
	if diff := cmp.Diff(req, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePaymentProfile_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"errorMessage":"Invalid merchantID"}`))
	})
	res, err := client.CreatePaymentProfile(context.Background(), PaymentProfileRequest{CustomerID: "1"})
	if err != nil {
		t.Fatalf("CreatePaymentProfile: %v", err)
	}
	if res.Success || res.ErrorMessage != "Invalid merchantID" {
		t.Fatalf("unexpected result %+v", res)
	}
}
