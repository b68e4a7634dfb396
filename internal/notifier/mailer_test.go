package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent     []sentMail
	failWith error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestSendCreated(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailer(sender, zap.NewNop())

	require.NoError(t, m.SendCreated(context.Background(), "a@b.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@b.com", sender.sent[0].to)
	assert.Equal(t, "Создание аккаунта", sender.sent[0].subject)
	assert.Equal(t, "Здравствуйте! Ваш аккаунт на сайте ваш сайт был успешно создан.", sender.sent[0].body)
}

func TestSendDeleted(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailer(sender, zap.NewNop())

	require.NoError(t, m.SendDeleted(context.Background(), "a@b.com"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@b.com", sender.sent[0].to)
	assert.Equal(t, "Удаление аккаунта", sender.sent[0].subject)
	assert.Equal(t, "Здравствуйте! Ваш аккаунт был удалён.", sender.sent[0].body)
}

func TestSendPropagatesTransportError(t *testing.T) {
	transportErr := errors.New("smtp connect refused")
	sender := &fakeSender{failWith: transportErr}
	m := NewMailer(sender, zap.NewNop())

	err := m.SendCreated(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, transportErr)

	err = m.SendDeleted(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, transportErr)
}
