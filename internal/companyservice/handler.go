package companyservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/avrm/blogward/internal/common"
)

func NewCompanyService(db *sql.DB, mb common.MessageProducer) *CompanyService {
	return &CompanyService{
		m:  &contactModel{db: db},
		mb: mb,
	}
}

type SubmitContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SubmitContact records the submission and publishes a contact.created event.
// The row is the source of truth; a failed publish fails the request so the
// client can retry.
func (s *CompanyService) SubmitContact(ctx context.Context, req *SubmitContactRequest) (*Contact, error) {
	v := common.NewValidator()
	v.Check(req.Name != "", "name", "must be provided")
	v.Check(v.CheckStringLength(req.Name, 1, 80), "name", "must not be longer than 80 characters")
	v.Check(req.Email != "", "email", "must be provided")
	v.Check(v.CheckEmail(req.Email), "email", "must be a valid email address")
	v.Check(req.Message != "", "message", "must be provided")
	v.Check(v.CheckStringLength(req.Message, 1, 5000), "message", "must not be longer than 5000 characters")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	contact := &Contact{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}

	if err := s.m.insert(ctx, contact); err != nil {
		return nil, err
	}

	msg, err := json.Marshal(contact)
	if err != nil {
		return nil, err
	}

	err = s.mb.Publish(ctx, msg, common.ContactCreatedKey, common.ContactExchange)
	if err != nil {
		return nil, fmt.Errorf("could not publish contact created event: %w", err)
	}

	return contact, nil
}

func (m *contactModel) insert(ctx context.Context, contact *Contact) error {
	query := `
		INSERT INTO contacts (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	return m.db.QueryRowContext(ctx, query, contact.Name, contact.Email, contact.Message).Scan(&contact.ID, &contact.CreatedAt)
}
