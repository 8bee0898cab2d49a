package nats

import (
	"github.com/stretchr/testify/mock"
)

type connMock struct {
	mock.Mock
}

func (c *connMock) Publish(subject string, data []byte) error {
	args := c.Called(subject, data)
	return args.Error(0)
}

func (c *connMock) Close() error {
	return c.Called().Error(0)
}
