package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/fieldroutes"
	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/payrix"
	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/rest"
	"github.com/joshbakergf/lead-manager-sub001/pkg/config"
	"github.com/joshbakergf/lead-manager-sub001/pkg/mapping"
	"github.com/joshbakergf/lead-manager-sub001/pkg/models"
	"github.com/joshbakergf/lead-manager-sub001/pkg/payment"
	"github.com/joshbakergf/lead-manager-sub001/pkg/store"
	"github.com/joshbakergf/lead-manager-sub001/pkg/utils"
)

// Submission steps, in execution order
const (
	StepValidatePayment       = "validate_payment"
	StepCreateCrmCustomer     = "create_crm_customer"
	StepCreatePaymentCustomer = "create_payment_customer"
	StepCreatePaymentToken    = "create_payment_token"
	StepAttachPaymentProfile  = "attach_payment_profile"
)

const (
	MessageCustomerOnly        = "Customer created successfully (no payment info provided)"
	MessageCustomerWithPayment = "Customer and payment profile created successfully"
)

// LeadSubmissionService defines the interface for handling form submissions
type LeadSubmissionService interface {
	Submit(ctx context.Context, req models.SubmissionRequest) (*SubmissionResult, error)
}

// SubmissionResult is the aggregated outcome of a successful submission
type SubmissionResult struct {
	SubmissionID      string
	CRMCustomerID     string
	PaymentCustomerID string
	PaymentToken      string
	PaymentProfileID  string
	Message           string
}

type leadSubmissionServiceImpl struct {
	crm      fieldroutes.Client
	payments payrix.Client
	ledger   store.Ledger
	rules    mapping.Rules
	config   *config.Config
	now      func() time.Time
}

// NewLeadSubmissionService creates a new submission service
func NewLeadSubmissionService(
	crm fieldroutes.Client,
	payments payrix.Client,
	ledger store.Ledger,
	rules mapping.Rules,
	config *config.Config,
) LeadSubmissionService {
	if rules == nil {
		rules = mapping.DefaultRules
	}
	if ledger == nil {
		ledger = store.NewMemoryLedger()
	}
	return &leadSubmissionServiceImpl{
		crm:      crm,
		payments: payments,
		ledger:   ledger,
		rules:    rules,
		config:   config,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit runs the whole chain. Each step needs the previous step's id, so
// the first failure ends the submission; records already created upstream
// are kept and noted in the ledger.
func (s *leadSubmissionServiceImpl) Submit(ctx context.Context, req models.SubmissionRequest) (*SubmissionResult, error) {
	rec := store.Submission{ID: uuid.NewString(), CreatedAt: s.now()}
	log := zap.L().With(zap.String("submission_id", rec.ID))

	result, err := s.run(ctx, log, req, &rec)

	rec.CompletedAt = s.now()
	if err != nil {
		rec.Status = store.StatusFailed
		var se *StepError
		if errors.As(err, &se) {
			rec.FailedStep = se.Step
			rec.Error = se.Message
		} else {
			rec.Error = err.Error()
		}
		log.Warn("submission failed",
			zap.String("step", rec.FailedStep),
			zap.Bool("orphaned_records", rec.Orphaned()),
			zap.Error(err),
		)
	} else {
		rec.Status = store.StatusSucceeded
		result.SubmissionID = rec.ID
		log.Info("submission completed",
			zap.String("crm_customer_id", result.CRMCustomerID),
			zap.String("payment_customer_id", result.PaymentCustomerID),
		)
	}

	// the ledger must not decide the outcome the caller sees
	if saveErr := s.ledger.Save(context.WithoutCancel(ctx), rec); saveErr != nil {
		log.Error("failed to record submission", zap.Error(saveErr))
	}

	if err != nil {
		if se, ok := err.(*StepError); ok {
			return nil, &SubmissionError{SubmissionID: rec.ID, StepError: se}
		}
		return nil, err
	}
	return result, nil
}

func (s *leadSubmissionServiceImpl) run(ctx context.Context, log *zap.Logger, req models.SubmissionRequest, rec *store.Submission) (*SubmissionResult, error) {
	mapped := mapping.Map(req.FormData, req.FieldMappings, s.rules)
	contact := mapped.Contact()
	// contact fields never count as payment data by value shape alone
	fragment := payment.Detect(mapped.Extra(), mapped.Unclaimed())
	rec.HasPaymentInfo = fragment.HasPaymentInfo()

	log.Info("processing submission",
		zap.Int("fields", len(req.FormData)),
		zap.Bool("explicit_mappings", len(req.FieldMappings) > 0),
		zap.Bool("has_payment_info", rec.HasPaymentInfo),
	)

	if rec.HasPaymentInfo {
		if err := s.validatePayment(fragment); err != nil {
			return nil, err
		}
	}

	customerID, err := s.createCrmCustomer(ctx, contact)
	if err != nil {
		return nil, err
	}
	rec.CRMCustomerID = customerID

	if !rec.HasPaymentInfo {
		return &SubmissionResult{CRMCustomerID: customerID, Message: MessageCustomerOnly}, nil
	}

	paymentCustomerID, err := s.createPaymentCustomer(ctx, contact)
	if err != nil {
		return nil, err
	}
	rec.PaymentCustomerID = paymentCustomerID

	token, err := s.createPaymentToken(ctx, paymentCustomerID, fragment)
	if err != nil {
		return nil, err
	}
	rec.TokenFingerprint = utils.Fingerprint(token)

	profileID, err := s.attachPaymentProfile(ctx, customerID, token, contact)
	if err != nil {
		return nil, err
	}
	rec.PaymentProfileID = profileID

	return &SubmissionResult{
		CRMCustomerID:     customerID,
		PaymentCustomerID: paymentCustomerID,
		PaymentToken:      token,
		PaymentProfileID:  profileID,
		Message:           MessageCustomerWithPayment,
	}, nil
}

// validatePayment rejects card data the processor cannot tokenize unless
// placeholder values are allowed. A client-side token stands in for the card.
func (s *leadSubmissionServiceImpl) validatePayment(f payment.Fragment) error {
	if s.config.AllowPlaceholderPayment || f.PaymentToken != "" {
		return nil
	}
	if f.CardNumber == "" {
		return invalidPayment("card number is missing or malformed")
	}
	if f.Expiry == "" {
		return invalidPayment("card expiry is missing or malformed")
	}
	return nil
}

func (s *leadSubmissionServiceImpl) createCrmCustomer(ctx context.Context, contact models.Contact) (string, error) {
	res, err := s.crm.CreateCustomer(ctx, contact)
	if err != nil {
		return "", transportError(StepCreateCrmCustomer, err)
	}
	if !res.Success {
		return "", upstreamValidation(StepCreateCrmCustomer, res.ErrorMessage)
	}
	if res.CustomerID == "" {
		return "", missingIdentifier(StepCreateCrmCustomer, "customer id")
	}
	return res.CustomerID, nil
}

func (s *leadSubmissionServiceImpl) createPaymentCustomer(ctx context.Context, contact models.Contact) (string, error) {
	res, err := s.payments.CreateCustomer(ctx, payrix.CustomerRequest{
		Merchant: s.config.PayrixMerchantID,
		First:    contact.FirstName,
		Last:     contact.LastName,
		Email:    contact.Email,
		Phone:    payment.NormalizePhone(contact.Phone),
		Address1: contact.Address,
		City:     contact.City,
		State:    contact.State,
		Zip:      contact.Zip,
	})
	if err != nil {
		return "", transportError(StepCreatePaymentCustomer, err)
	}
	if len(res.Errors) > 0 {
		return "", upstreamValidation(StepCreatePaymentCustomer, payrix.JoinErrors(res.Errors))
	}
	if len(res.Customers) == 0 || res.Customers[0].ID == "" {
		return "", missingIdentifier(StepCreatePaymentCustomer, "payment customer id")
	}
	return res.Customers[0].ID, nil
}

func (s *leadSubmissionServiceImpl) createPaymentToken(ctx context.Context, customerID string, f payment.Fragment) (string, error) {
	req := payrix.TokenRequest{
		Customer:   customerID,
		Payment:    payrix.TokenPayment{Method: f.CardType, Number: f.CardNumber, CVV: f.CVV},
		Expiration: f.Expiry,
		Token:      f.PaymentToken,
	}
	if s.config.AllowPlaceholderPayment && f.PaymentToken == "" {
		if req.Payment.Number == "" {
			req.Payment.Number = payment.PlaceholderCardNumber
		}
		if req.Expiration == "" {
			req.Expiration = payment.PlaceholderExpiry
		}
	}

	res, err := s.payments.CreateToken(ctx, req)
	if err != nil {
		return "", transportError(StepCreatePaymentToken, err)
	}
	if len(res.Errors) > 0 {
		return "", upstreamValidation(StepCreatePaymentToken, payrix.JoinErrors(res.Errors))
	}
	if len(res.Tokens) == 0 || res.Tokens[0].Token == "" {
		return "", missingIdentifier(StepCreatePaymentToken, "payment token")
	}
	return res.Tokens[0].Token, nil
}

func (s *leadSubmissionServiceImpl) attachPaymentProfile(ctx context.Context, customerID, token string, contact models.Contact) (string, error) {
	res, err := s.crm.CreatePaymentProfile(ctx, fieldroutes.PaymentProfileRequest{
		CustomerID: customerID,
		// the CRM stores the processor token in its merchantID field
		MerchantID:      token,
		Gateway:         s.config.PaymentGatewayID,
		PaymentMethod:   fieldroutes.PaymentMethodCreditCard,
		BillingFName:    contact.FirstName,
		BillingLName:    contact.LastName,
		BillingEmail:    contact.Email,
		BillingPhone:    contact.Phone,
		BillingAddress1: contact.Address,
		BillingCity:     contact.City,
		BillingState:    contact.State,
		BillingZip:      contact.Zip,
	})
	if err != nil {
		return "", transportError(StepAttachPaymentProfile, err)
	}
	if !res.Success {
		return "", upstreamValidation(StepAttachPaymentProfile, res.ErrorMessage)
	}
	return res.PaymentProfileID, nil
}

// SubmissionError ties a failed step to the ledger record of its submission
type SubmissionError struct {
	SubmissionID string
	*StepError
}

func (e *SubmissionError) Unwrap() error {
	return e.StepError
}

func upstreamMessage(err error) string {
	var apiErr *rest.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
