package companyservice

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrm/blogward/internal/common"
)

type fakeProducer struct {
	published [][]byte
	keys      []common.BindingKey
}

func (f *fakeProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	f.published = append(f.published, msg)
	f.keys = append(f.keys, key)
	return nil
}

func TestSubmitContact(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	mb := &fakeProducer{}
	s := NewCompanyService(db, mb)

	contact, err := s.SubmitContact(context.Background(), &SubmitContactRequest{
		Name:    "Bob",
		Email:   "bob@example.com",
		Message: "hello there",
	})
	require.NoError(t, err)
	assert.NotZero(t, contact.ID)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE email = $1`, "bob@example.com").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, mb.published, 1)
	assert.Equal(t, common.ContactCreatedKey, mb.keys[0])

	var event Contact
	require.NoError(t, json.Unmarshal(mb.published[0], &event))
	assert.Equal(t, contact.ID, event.ID)
	assert.Equal(t, "hello there", event.Message)
}

func TestSubmitContact_Validation(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	mb := &fakeProducer{}
	s := NewCompanyService(db, mb)

	testCases := []struct {
		name string
		req  *SubmitContactRequest
	}{
		{name: "missing name", req: &SubmitContactRequest{Email: "bob@example.com", Message: "hi"}},
		{name: "missing email", req: &SubmitContactRequest{Name: "Bob", Message: "hi"}},
		{name: "bad email", req: &SubmitContactRequest{Name: "Bob", Email: "not-an-email", Message: "hi"}},
		{name: "missing message", req: &SubmitContactRequest{Name: "Bob", Email: "bob@example.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SubmitContact(context.Background(), tc.req)
			assert.ErrorAs(t, err, &common.ValidationError{})
			assert.Empty(t, mb.published)
		})
	}
}
