package models

// SubmissionRequest is the body accepted by POST /submit
type SubmissionRequest struct {
	FormData      map[string]string `json:"formData" binding:"required"`
	FieldMappings map[string]string `json:"fieldMappings,omitempty"`
}

// Contact is the canonical lead identity derived once per submission
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// SubmissionData is the success payload returned to the form
type SubmissionData struct {
	SubmissionID     string `json:"submissionId"`
	CustomerID       string `json:"customerId"`
	PayrixCustomerID string `json:"payrixCustomerId,omitempty"`
	TokenID          string `json:"tokenId,omitempty"`
	PaymentProfileID string `json:"paymentProfileId,omitempty"`
	Message          string `json:"message"`
}
