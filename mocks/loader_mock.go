package mocks

import "github.com/stretchr/testify/mock"

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}
