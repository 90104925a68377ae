package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/emberdb/ember-go/pkg/engine"
	"github.com/emberdb/ember-go/pkg/enginemock"
)

const testDatabase = "employee.edb"

// quietLogger returns a mock logger that accepts any call. Tests that
// assert on logging set their own expectations instead.
func quietLogger(t *testing.T) *MockLogger {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Fatal(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return log
}

// newTestSetup creates a mock engine, a client on top of it and a fresh
// database with one attachment. The client is disposed on test cleanup.
func newTestSetup(t *testing.T) (*enginemock.Engine, *Client, *Attachment) {
	t.Helper()

	eng := enginemock.New()
	client := NewClient(eng, Config{}, quietLogger(t))
	client.DefaultConnectOptions = ConnectOptions{Database: testDatabase}
	client.DefaultCreateDatabaseOptions = CreateDatabaseOptions{
		ConnectOptions: ConnectOptions{Database: testDatabase},
	}

	att, err := client.CreateDatabase(context.Background(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Dispose(context.Background())
	})
	return eng, client, att
}

func startTx(t *testing.T, att *Attachment) *Transaction {
	t.Helper()
	tx, err := att.StartTransaction(context.Background(), nil)
	require.NoError(t, err)
	return tx
}

func textCol(label string) engine.Column {
	return engine.Column{Label: label, Kind: engine.KindText}
}

func textVal(s string) engine.Value {
	return engine.Value{Kind: engine.KindText, Str: s}
}

func intVal(n int64) engine.Value {
	return engine.Value{Kind: engine.KindInt64, Int: n}
}

// intRows scripts n single-column rows numbered 1..n.
func intRows(n int) func([]engine.Value) [][]engine.Value {
	return func([]engine.Value) [][]engine.Value {
		rows := make([][]engine.Value, n)
		for i := range rows {
			rows[i] = []engine.Value{intVal(int64(i + 1))}
		}
		return rows
	}
}
