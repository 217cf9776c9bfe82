package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository/memory"
	"github.com/mamadbah2/autoshop/pkg/clients/sms"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendMessage(ctx context.Context, req sms.SendMessageRequest) (*sms.SendMessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sms.SendMessageResponse), args.Error(1)
}

var asha = models.Contact{Name: "Asha", Mobile: "+911"}

func lastEntry(t *testing.T, store *memory.Store) models.Notification {
	t.Helper()
	entries, err := store.ListNotifications(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestSendAlertDelivered(t *testing.T) {
	store := memory.NewStore()
	sender := new(mockSender)
	sender.On("SendMessage", mock.Anything, sms.SendMessageRequest{To: "+911", Body: "low"}).
		Return(&sms.SendMessageResponse{SID: "SM1", Status: "queued"}, nil)

	d := NewDispatcher(sender, store, nil)
	assert.True(t, d.SendAlert(context.Background(), asha, "low"))

	entry := lastEntry(t, store)
	assert.Equal(t, models.NotificationSent, entry.Status)
	assert.Equal(t, models.ChannelSMS, entry.Channel)
	assert.Equal(t, "SM1", entry.ProviderMessageID)
	assert.Equal(t, "+911", entry.Recipient)
	assert.False(t, entry.SentAt.IsZero())
	sender.AssertExpectations(t)
}

func TestSendAlertProviderFailure(t *testing.T) {
	store := memory.NewStore()
	sender := new(mockSender)
	sender.On("SendMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("twilio api error: code=21211, message=invalid number"))

	d := NewDispatcher(sender, store, nil)
	assert.False(t, d.SendAlert(context.Background(), asha, "low"))

	entry := lastEntry(t, store)
	assert.Equal(t, models.NotificationFailed, entry.Status)
	assert.Contains(t, entry.Error, "21211")
}

func TestSendAlertWithoutCredentials(t *testing.T) {
	store := memory.NewStore()

	d := NewDispatcher(nil, store, nil)
	assert.False(t, d.SendAlert(context.Background(), asha, "low"))

	entry := lastEntry(t, store)
	assert.Equal(t, models.NotificationFailed, entry.Status)
	assert.Equal(t, "sms credentials not configured", entry.Error)
}

func TestSendEmailIsQueued(t *testing.T) {
	store := memory.NewStore()

	d := NewDispatcher(nil, store, nil)
	assert.True(t, d.SendEmail(context.Background(), "asha@example.com", "Low stock alert: Oil filter", "low"))

	entry := lastEntry(t, store)
	assert.Equal(t, models.ChannelEmail, entry.Channel)
	assert.Equal(t, models.NotificationPending, entry.Status)
	assert.Equal(t, "asha@example.com", entry.Recipient)
	assert.Equal(t, "Low stock alert: Oil filter", entry.Subject)
	assert.Empty(t, entry.Error)
}
