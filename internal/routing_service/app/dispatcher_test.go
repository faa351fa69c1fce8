package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
	"github.com/dpi/sms-rule-based/internal/routing_service/gateway"
)

// MockSMSGateway is a mock implementation of gateway.Gateway
type MockSMSGateway struct {
	mock.Mock
	Name string
}

func (m *MockSMSGateway) Send(ctx context.Context, msg *domain.Message) (*domain.MessageResult, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessageResult), args.Error(1)
}

func (m *MockSMSGateway) GetName() string {
	return m.Name
}

func successResult(gw string, recipients ...string) *domain.MessageResult {
	r := &domain.MessageResult{
		Status:      true,
		CreditsUsed: float64(len(recipients)),
		Reports:     make(map[string]domain.DeliveryReport),
	}
	for _, n := range recipients {
		r.Reports[n] = domain.DeliveryReport{Recipient: n, Status: "SENT", Gateway: gw}
	}
	return r
}

func TestDispatchRouted_SplitsAcrossGateways(t *testing.T) {
	cdma := &MockSMSGateway{Name: "42tele"}
	gsm := &MockSMSGateway{Name: "gsm"}
	dispatcher := NewDispatcher(map[string]gateway.Gateway{
		"42tele": cdma,
		"gsm":    gsm,
	}, "gsm", testLogger())

	msg := testMessage("2348191234500", "2348031234500")
	routing := &domain.RoutingResult{
		Routes: map[string][]string{
			"42tele":              {"2348191234500"},
			domain.DefaultGateway: {"2348031234500"},
		},
	}

	cdma.On("Send", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return len(m.Recipients) == 1 && m.Recipients[0] == "2348191234500"
	})).Return(successResult("42tele", "2348191234500"), nil)
	gsm.On("Send", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return len(m.Recipients) == 1 && m.Recipients[0] == "2348031234500"
	})).Return(successResult("gsm", "2348031234500"), nil)

	result := dispatcher.DispatchRouted(context.Background(), msg, routing)

	require.NotNil(t, result)
	assert.True(t, result.Status)
	assert.Equal(t, 2.0, result.CreditsUsed)
	require.Len(t, result.Reports, 2)
	assert.Equal(t, "42tele", result.Reports["2348191234500"].Gateway)
	assert.Equal(t, "gsm", result.Reports["2348031234500"].Gateway)
	cdma.AssertExpectations(t)
	gsm.AssertExpectations(t)
}

func TestDispatchRouted_GatewayFailureFailsAggregate(t *testing.T) {
	ok := &MockSMSGateway{Name: "ok"}
	broken := &MockSMSGateway{Name: "broken"}
	dispatcher := NewDispatcher(map[string]gateway.Gateway{
		"ok":     ok,
		"broken": broken,
	}, "ok", testLogger())

	msg := testMessage("2348191234500", "2348031234500")
	routing := &domain.RoutingResult{
		Routes: map[string][]string{
			"broken":              {"2348191234500"},
			domain.DefaultGateway: {"2348031234500"},
		},
	}

	broken.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	ok.On("Send", mock.Anything, mock.Anything).Return(successResult("ok", "2348031234500"), nil)

	result := dispatcher.DispatchRouted(context.Background(), msg, routing)

	assert.False(t, result.Status)
	// The healthy gateway's report survives the merge.
	assert.Equal(t, "ok", result.Reports["2348031234500"].Gateway)
	broken.AssertExpectations(t)
	ok.AssertExpectations(t)
}

func TestDispatchRouted_MissingGateway(t *testing.T) {
	dispatcher := NewDispatcher(map[string]gateway.Gateway{}, "nonexistent", testLogger())

	msg := testMessage("2348191234500")
	routing := &domain.RoutingResult{
		Routes: map[string][]string{
			domain.DefaultGateway: {"2348191234500"},
		},
	}

	result := dispatcher.DispatchRouted(context.Background(), msg, routing)

	assert.False(t, result.Status)
	assert.Contains(t, result.ErrorMessage, "nonexistent")
}

func TestDispatchRouted_SkipsEmptyGroups(t *testing.T) {
	gw := &MockSMSGateway{Name: "g"}
	dispatcher := NewDispatcher(map[string]gateway.Gateway{"g": gw}, "g", testLogger())

	msg := testMessage()
	routing := &domain.RoutingResult{
		Routes: map[string][]string{
			"g":                   {},
			domain.DefaultGateway: {},
		},
	}

	result := dispatcher.DispatchRouted(context.Background(), msg, routing)

	assert.True(t, result.Status)
	assert.Empty(t, result.Reports)
	gw.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
