package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testParams() types.SuggestedParams {
	return types.SuggestedParams{
		Fee:             1000,
		FlatFee:         true,
		FirstRoundValid: 1,
		LastRoundValid:  1001,
		GenesisHash:     make([]byte, 32),
	}
}

type fakeClient struct {
	params types.SuggestedParams

	submitErr   error
	submitCalls int

	infos    []PendingInfo
	infoErr  error
	infoCall int

	lastRound uint64

	waitCalls int
	waitErr   error
}

func (f *fakeClient) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return f.params, nil
}

func (f *fakeClient) Submit(ctx context.Context, signed []byte) (string, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "TXID", nil
}

func (f *fakeClient) PendingInfo(ctx context.Context, txid string) (PendingInfo, error) {
	if f.infoErr != nil {
		return PendingInfo{}, f.infoErr
	}
	info := f.infos[len(f.infos)-1]
	if f.infoCall < len(f.infos) {
		info = f.infos[f.infoCall]
	}
	f.infoCall++
	return info, nil
}

func (f *fakeClient) LastRound(ctx context.Context) (uint64, error) {
	return f.lastRound, nil
}

func (f *fakeClient) WaitAfterRound(ctx context.Context, round uint64) error {
	f.waitCalls++
	return f.waitErr
}

func testTxn(t *testing.T) (types.Transaction, []byte) {
	t.Helper()
	address, key := GenerateAccount()
	txn, err := BuildAssetOptIn(testParams(), address, 501)
	require.NoError(t, err)
	return txn, key
}

func TestSubmitAndConfirm_ConfirmsAfterPolling(t *testing.T) {
	client := &fakeClient{
		lastRound: 10,
		infos: []PendingInfo{
			{},
			{ConfirmedRound: 12, AssetIndex: 501},
		},
	}
	o := NewOrchestrator(client, 4, testLogger())

	txn, key := testTxn(t)
	conf, err := o.SubmitAndConfirm(context.Background(), txn, key)
	require.NoError(t, err)

	assert.Equal(t, uint64(12), conf.ConfirmedRound)
	assert.Equal(t, uint64(501), conf.AssetIndex)
	assert.NotEmpty(t, conf.TxID)
	assert.Equal(t, 1, client.submitCalls)
	assert.Equal(t, 1, client.waitCalls)
}

func TestSubmitAndConfirm_RejectionIsNotRetried(t *testing.T) {
	client := &fakeClient{submitErr: errors.New("overspend")}
	o := NewOrchestrator(client, 4, testLogger())

	txn, key := testTxn(t)
	_, err := o.SubmitAndConfirm(context.Background(), txn, key)

	assert.ErrorIs(t, err, common.ErrSubmission)
	assert.Equal(t, 1, client.submitCalls)
	assert.Equal(t, 0, client.waitCalls)
}

func TestSubmitAndConfirm_PoolErrorIsSubmissionError(t *testing.T) {
	client := &fakeClient{
		lastRound: 10,
		infos:     []PendingInfo{{PoolError: "asset missing opt-in"}},
	}
	o := NewOrchestrator(client, 4, testLogger())

	txn, key := testTxn(t)
	_, err := o.SubmitAndConfirm(context.Background(), txn, key)

	assert.ErrorIs(t, err, common.ErrSubmission)
	assert.ErrorContains(t, err, "asset missing opt-in")
}

func TestSubmitAndConfirm_TimesOutAfterMaxRounds(t *testing.T) {
	client := &fakeClient{
		lastRound: 10,
		infos:     []PendingInfo{{}},
	}
	o := NewOrchestrator(client, 3, testLogger())

	txn, key := testTxn(t)
	_, err := o.SubmitAndConfirm(context.Background(), txn, key)

	assert.ErrorIs(t, err, common.ErrConfirmationTimeout)
	assert.Equal(t, 3, client.waitCalls)
}

func TestSubmitAndConfirm_CancelledWaitIsTimeout(t *testing.T) {
	client := &fakeClient{
		lastRound: 10,
		infos:     []PendingInfo{{}},
		waitErr:   context.Canceled,
	}
	o := NewOrchestrator(client, 5, testLogger())

	txn, key := testTxn(t)
	_, err := o.SubmitAndConfirm(context.Background(), txn, key)

	assert.ErrorIs(t, err, common.ErrConfirmationTimeout)
	assert.Equal(t, 1, client.waitCalls)
}
