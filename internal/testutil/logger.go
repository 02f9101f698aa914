package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/meshcore/logging"
)

// MockLogger records log calls with testify/mock. Only the message is
// matched; key/value arguments are passed through as a single slice.
//
//	lg := new(testutil.MockLogger)
//	lg.On("Warn", "route failed", mock.Anything).Once()
type MockLogger struct {
	mock.Mock
}

// Debug implements logging.Logger.
func (m *MockLogger) Debug(msg string, args ...any) { m.Called(msg, args) }

// Info implements logging.Logger.
func (m *MockLogger) Info(msg string, args ...any) { m.Called(msg, args) }

// Warn implements logging.Logger.
func (m *MockLogger) Warn(msg string, args ...any) { m.Called(msg, args) }

// Error implements logging.Logger.
func (m *MockLogger) Error(msg string, args ...any) { m.Called(msg, args) }

var _ logging.Logger = (*MockLogger)(nil)
