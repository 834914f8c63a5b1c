package companyservice

import (
	"database/sql"
	"time"

	"github.com/avrm/blogward/internal/common"
)

type Contact struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type contactModel struct {
	db *sql.DB
}

// CompanyService stores contact form submissions and hands them off to the
// mail pipeline through the message broker.
type CompanyService struct {
	m  *contactModel
	mb common.MessageProducer
}
