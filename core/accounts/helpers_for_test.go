package accounts_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"code.tierpay.io/referral/core/accounts"
	"code.tierpay.io/referral/core/accounts/mocks"
	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/sponsorship"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/memstore"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEngine struct {
	engine *accounts.Engine
	store  *memstore.Store
	tokens *mocks.MockTokenGenerator
	broker *mocks.MockBroker

	sent []events.Event
}

func testConfig() accounts.Config {
	cfg := accounts.NewDefaultConfig()
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

// newEngine wires the engine to a memstore and a real sponsorship engine.
// Codes come from a sequence unless the test programs the token mock.
func newEngine(t *testing.T) *testEngine {
	t.Helper()
	return newEngineWithTokens(t, nil)
}

func newEngineWithTokens(t *testing.T, codes []string) *testEngine {
	t.Helper()

	ctrl := gomock.NewController(t)
	broker := mocks.NewMockBroker(ctrl)
	timeService := mocks.NewMockTimeService(ctrl)
	timeService.EXPECT().GetTimeNow().Return(testNow).AnyTimes()
	tokens := mocks.NewMockTokenGenerator(ctrl)

	log := logging.NewTestLogger()
	store := memstore.New()
	graph := sponsorship.NewEngine(log, store, broker, timeService)

	te := &testEngine{
		engine: accounts.NewEngine(log, testConfig(), store, graph, tokens, broker, timeService),
		store:  store,
		tokens: tokens,
		broker: broker,
	}
	broker.EXPECT().Send(gomock.Any()).Do(func(evt events.Event) {
		te.sent = append(te.sent, evt)
	}).AnyTimes()

	if codes != nil {
		for _, c := range codes {
			tokens.EXPECT().Generate().Return(c, nil)
		}
		return te
	}

	n := 0
	tokens.EXPECT().Generate().DoAndReturn(func() (string, error) {
		n++
		return fmt.Sprintf("C%05d", n), nil
	}).AnyTimes()
	return te
}

func (te *testEngine) register(t *testing.T, name, code string) *types.Account {
	t.Helper()

	acc, err := te.engine.Register(context.Background(), name, name+"@example.com", "secret123", code)
	require.NoError(t, err)
	return acc
}

func (te *testEngine) countEvents(typ events.Type) int {
	n := 0
	for _, e := range te.sent {
		if e.Type() == typ {
			n++
		}
	}
	return n
}
