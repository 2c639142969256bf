package fieldroutes

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/rest"
	"github.com/joshbakergf/lead-manager-sub001/pkg/extract"
	"github.com/joshbakergf/lead-manager-sub001/pkg/models"
)

// Client defines the interface for interacting with the FieldRoutes CRM API
type Client interface {
	CreateCustomer(ctx context.Context, contact models.Contact) (*CustomerResult, error)
	CreatePaymentProfile(ctx context.Context, req PaymentProfileRequest) (*PaymentProfileResult, error)
	Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error)
}

// CustomerResult is a successful customer/create response.
// CustomerID is empty when the body carried no recognizable id.
type CustomerResult struct {
	CustomerID   string
	Success      bool
	ErrorMessage string
}

// PaymentProfileRequest links a stored payment token to a CRM customer
type PaymentProfileRequest struct {
	CustomerID      string `json:"customerID"`
	MerchantID      string `json:"merchantID"`
	Gateway         string `json:"gateway"`
	PaymentMethod   int    `json:"paymentMethod"`
	BillingFName    string `json:"billingFName"`
	BillingLName    string `json:"billingLName"`
	BillingEmail    string `json:"billingEmail,omitempty"`
	BillingPhone    string `json:"billingPhone,omitempty"`
	BillingAddress1 string `json:"billingAddress1"`
	BillingCity     string `json:"billingCity"`
	BillingState    string `json:"billingState"`
	BillingZip      string `json:"billingZip"`
}

// PaymentProfileResult is the paymentProfile/create response
type PaymentProfileResult struct {
	Success          bool
	ErrorMessage     string
	PaymentProfileID string
}

// PaymentMethodCreditCard is the CRM's code for a card-on-file profile
const PaymentMethodCreditCard = 1

// customerIDPaths lists every shape the CRM has used for the new customer id
var customerIDPaths = extract.Paths(
	"$.customerID",
	"$.customer_id",
	"$.id",
	"$.customerId",
	"$.result",
	"$.result.customerID",
	"$.result.customer_id",
	"$.result.id",
	"$.result.customerId",
)

var paymentProfileIDPaths = extract.Paths(
	"$.paymentProfileID",
	"$.paymentProfileId",
	"$.result",
	"$.result.paymentProfileID",
	"$.id",
)

type clientImpl struct {
	rest *rest.Client
}

// NewClient creates a new FieldRoutes client
func NewClient(baseURL, authKey, authToken string, timeout time.Duration) Client {
	return &clientImpl{
		rest: rest.New("FieldRoutes", baseURL,
			rest.WithHeader("authenticationKey", authKey),
			rest.WithHeader("authenticationToken", authToken),
			rest.WithTimeout(timeout),
		),
	}
}

// envelope is the success/error wrapper every CRM response carries
type envelope struct {
	Success      *bool  `json:"success"`
	ErrorMessage string `json:"errorMessage"`
}

func (c *clientImpl) CreateCustomer(ctx context.Context, contact models.Contact) (*CustomerResult, error) {
	payload := map[string]string{
		"fname":   contact.FirstName,
		"lname":   contact.LastName,
		"email":   contact.Email,
		"phone1":  contact.Phone,
		"address": contact.Address,
		"city":    contact.City,
		"state":   contact.State,
		"zip":     contact.Zip,
	}

	resp, err := c.rest.PostJSON(ctx, "customer/create", payload)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, c.rest.NewAPIError(resp)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, eris.Wrap(err, "FieldRoutes: error parsing customer response")
	}

	result := &CustomerResult{
		// an absent flag is treated as success; some deployments omit it
		Success:      env.Success == nil || *env.Success,
		ErrorMessage: env.ErrorMessage,
	}
	if result.Success {
		result.CustomerID, _ = extract.FirstFromBody(resp.Body, customerIDPaths)
	}

	zap.L().Info("FieldRoutes customer create",
		zap.Bool("success", result.Success),
		zap.String("customer_id", result.CustomerID),
	)
	return result, nil
}

func (c *clientImpl) CreatePaymentProfile(ctx context.Context, req PaymentProfileRequest) (*PaymentProfileResult, error) {
	resp, err := c.rest.PostJSON(ctx, "paymentProfile/create", req)
	if err != nil {
		return nil, err
	}

	var env envelope
	if jsonErr := json.Unmarshal(resp.Body, &env); jsonErr != nil || env.Success == nil {
		if !resp.OK() {
			return nil, c.rest.NewAPIError(resp)
		}
		return nil, eris.New("FieldRoutes: payment profile response has no success flag")
	}

	result := &PaymentProfileResult{
		Success:      *env.Success,
		ErrorMessage: env.ErrorMessage,
	}
	if result.Success {
		result.PaymentProfileID, _ = extract.FirstFromBody(resp.Body, paymentProfileIDPaths)
	}

	zap.L().Info("FieldRoutes payment profile create",
		zap.String("customer_id", req.CustomerID),
		zap.Bool("success", result.Success),
		zap.String("payment_profile_id", result.PaymentProfileID),
	)
	return result, nil
}

// Forward relays a request verbatim with the CRM credentials attached
func (c *clientImpl) Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error) {
	return c.rest.Do(ctx, method, endpoint, query, body)
}
