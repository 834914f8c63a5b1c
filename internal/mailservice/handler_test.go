package mailservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendContactEmail(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMailer := new(MockMailer)
	mockLogger := new(MockLogger)

	mockLogger.On("Info", "contact email sent", mock.Anything).Return(nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     mockMC,
		m:      mockMailer,
		logger: mockLogger,
		ctx:    ctx,
		cancel: cancel,
	}

	go s.SendContactEmail()

	time.Sleep(1 * time.Second)

	if mockMailer.IsCalled() {
		recipientEmail := mockMailer.GetEmail()
		assert.Equal(t, "test@example.com", recipientEmail, "expected email to be sent to the submitter")
	}

	mockMC.AssertExpectations(t)
	mockLogger.AssertExpectations(t)

	t.Cleanup(func() {
		s.Close()
	})
}
