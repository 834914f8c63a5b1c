package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactExchangeRoundTrip(t *testing.T) {
	url := TestRabbitMQ(t)

	mb, err := NewMessageBroker(url)
	require.NoError(t, err)
	defer mb.Close()

	require.NoError(t, SetupContactExchange(mb))

	msgs, err := mb.Consume(ContactCreatedKey, ContactExchange, ContactCreatedQueue)
	require.NoError(t, err)

	body := `{"name": "Bob", "email": "bob@example.com", "message": "hello"}`
	err = mb.Publish(context.Background(), []byte(body), ContactCreatedKey, ContactExchange)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.JSONEq(t, body, string(msg.Body))
		assert.Equal(t, "application/json", msg.ContentType)
		msg.Ack(false)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for contact message")
	}
}
