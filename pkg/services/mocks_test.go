package services

import (
	"context"
	"net/url"

	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/fieldroutes"
	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/payrix"
	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/rest"
	"github.com/joshbakergf/lead-manager-sub001/pkg/models"
)

// callLog records upstream calls across both mocks in order
type callLog struct {
	calls []string
}

func (l *callLog) add(call string) {
	if l != nil {
		l.calls = append(l.calls, call)
	}
}

// MockCRM implements fieldroutes.Client for testing
type MockCRM struct {
	CreateCustomerFunc       func(ctx context.Context, contact models.Contact) (*fieldroutes.CustomerResult, error)
	CreatePaymentProfileFunc func(ctx context.Context, req fieldroutes.PaymentProfileRequest) (*fieldroutes.PaymentProfileResult, error)

	log *callLog
}

func (m *MockCRM) CreateCustomer(ctx context.Context, contact models.Contact) (*fieldroutes.CustomerResult, error) {
	m.log.add("crm.CreateCustomer")
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, contact)
	}
	return &fieldroutes.CustomerResult{Success: true, CustomerID: "101"}, nil
}

func (m *MockCRM) CreatePaymentProfile(ctx context.Context, req fieldroutes.PaymentProfileRequest) (*fieldroutes.PaymentProfileResult, error) {
	m.log.add("crm.CreatePaymentProfile")
	if m.CreatePaymentProfileFunc != nil {
		return m.CreatePaymentProfileFunc(ctx, req)
	}
	return &fieldroutes.PaymentProfileResult{Success: true, PaymentProfileID: "55"}, nil
}

func (m *MockCRM) Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error) {
	return &rest.Response{StatusCode: 200}, nil
}

// MockPayments implements payrix.Client for testing
type MockPayments struct {
	CreateCustomerFunc func(ctx context.Context, req payrix.CustomerRequest) (*payrix.CustomerResult, error)
	CreateTokenFunc    func(ctx context.Context, req payrix.TokenRequest) (*payrix.TokenResult, error)

	log *callLog
}

func (m *MockPayments) CreateCustomer(ctx context.Context, req payrix.CustomerRequest) (*payrix.CustomerResult, error) {
	m.log.add("payrix.CreateCustomer")
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, req)
	}
	return &payrix.CustomerResult{Customers: []payrix.Customer{{ID: "t1_cus_1"}}}, nil
}

func (m *MockPayments) CreateToken(ctx context.Context, req payrix.TokenRequest) (*payrix.TokenResult, error) {
	m.log.add("payrix.CreateToken")
	if m.CreateTokenFunc != nil {
		return m.CreateTokenFunc(ctx, req)
	}
	return &payrix.TokenResult{Tokens: []payrix.Token{{ID: "t1_tok_1", Token: "tok_value"}}}, nil
}

func (m *MockPayments) Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error) {
	return &rest.Response{StatusCode: 200}, nil
}
