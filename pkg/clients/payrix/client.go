package payrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/rest"
	"github.com/joshbakergf/lead-manager-sub001/pkg/utils"
)

// Client defines the interface for interacting with the Payrix API
type Client interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResult, error)
	CreateToken(ctx context.Context, req TokenRequest) (*TokenResult, error)
	Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error)
}

// CustomerRequest creates a billing customer under a merchant
type CustomerRequest struct {
	Merchant string `json:"merchant"`
	First    string `json:"first"`
	Last     string `json:"last"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address1 string `json:"address1,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

// TokenPayment is the card block of a token request
type TokenPayment struct {
	Method int    `json:"method"`
	Number string `json:"number,omitempty"`
	CVV    string `json:"cvv,omitempty"`
}

// TokenRequest stores a card against a Payrix customer
type TokenRequest struct {
	Customer   string       `json:"customer"`
	Payment    TokenPayment `json:"payment"`
	Expiration string       `json:"expiration,omitempty"`
	// Token carries a token issued client-side, passed through untouched
	Token string `json:"token,omitempty"`
}

// Error is one entry of a response errors array
type Error struct {
	Field   string `json:"field"`
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// Text returns the human readable part of the error
func (e Error) Text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// Customer is a Payrix customer record
type Customer struct {
	ID       string `json:"id"`
	Merchant string `json:"merchant"`
}

// Token is a Payrix token record. ID identifies the record; Token is the
// value used to charge the stored card.
type Token struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Customer string `json:"customer"`
}

// CustomerResult holds the decoded customers response
type CustomerResult struct {
	Customers []Customer
	Errors    []Error
}

// TokenResult holds the decoded tokens response
type TokenResult struct {
	Tokens []Token
	Errors []Error
}

type envelope[T any] struct {
	Response struct {
		Data   []T     `json:"data"`
		Errors []Error `json:"errors"`
	} `json:"response"`
}

type clientImpl struct {
	rest *rest.Client
}

// DefaultAuthHeader is the header Payrix reads the private API key from
const DefaultAuthHeader = "APIKEY"

// NewClient creates a new Payrix client. The API key is sent in authHeader
// (DefaultAuthHeader when empty); an Authorization header gets a Bearer value.
func NewClient(baseURL, authHeader, apiKey string, timeout time.Duration) Client {
	if authHeader == "" {
		authHeader = DefaultAuthHeader
	}
	value := apiKey
	if strings.EqualFold(authHeader, "Authorization") {
		value = "Bearer " + apiKey
	}
	return &clientImpl{
		rest: rest.New("Payrix", baseURL,
			rest.WithHeader(authHeader, value),
			rest.WithTimeout(timeout),
		),
	}
}

func (c *clientImpl) CreateCustomer(ctx context.Context, req CustomerRequest) (*CustomerResult, error) {
	env, err := post[Customer](ctx, c.rest, "customers", req)
	if err != nil {
		return nil, err
	}

	result := &CustomerResult{Customers: env.Response.Data, Errors: env.Response.Errors}
	zap.L().Info("Payrix customer create",
		zap.Int("records", len(result.Customers)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (c *clientImpl) CreateToken(ctx context.Context, req TokenRequest) (*TokenResult, error) {
	env, err := post[Token](ctx, c.rest, "tokens", req)
	if err != nil {
		return nil, err
	}

	result := &TokenResult{Tokens: env.Response.Data, Errors: env.Response.Errors}
	zap.L().Info("Payrix token create",
		zap.String("customer", req.Customer),
		zap.String("card", utils.MaskCard(req.Payment.Number)),
		zap.Int("records", len(result.Tokens)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// Forward relays a request verbatim with the API key attached
func (c *clientImpl) Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error) {
	return c.rest.Do(ctx, method, endpoint, query, body)
}

// post sends payload and decodes the response envelope. A body with an
// errors array is returned as data even on a non-2xx status so the caller
// can report the field-level messages.
func post[T any](ctx context.Context, rc *rest.Client, endpoint string, payload any) (*envelope[T], error) {
	resp, err := rc.PostJSON(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var env envelope[T]
	if jsonErr := json.Unmarshal(resp.Body, &env); jsonErr != nil {
		if !resp.OK() {
			return nil, rc.NewAPIError(resp)
		}
		return nil, eris.Wrapf(jsonErr, "Payrix: error parsing %s response", endpoint)
	}
	if !resp.OK() && len(env.Response.Errors) == 0 {
		return nil, rc.NewAPIError(resp)
	}
	return &env, nil
}

// JoinErrors renders an errors array as "field: message" pairs joined by ", "
func JoinErrors(errs []Error) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		switch {
		case e.Field != "" && e.Text() != "":
			parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Text()))
		case e.Field != "":
			parts = append(parts, e.Field)
		default:
			parts = append(parts, e.Text())
		}
	}
	return strings.Join(parts, ", ")
}
