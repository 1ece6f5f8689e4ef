package notify

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MessengerClientMock struct {
	mock.Mock
}

func (mc *MessengerClientMock) SendMessage(ctx context.Context, message Message) error {
	args := mc.Called(ctx, message)
	return args.Error(0)
}

func (mc *MessengerClientMock) MessengerType() MessengerType {
	args := mc.Called()
	return args.Get(0).(MessengerType)
}

var _ MessengerClient = (*MessengerClientMock)(nil)
