package ledger

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// AlgodClient implements Client over the algod REST API.
type AlgodClient struct {
	c *algod.Client
}

// NewAlgodClient dials an algod node. The client is constructed once at
// process start and injected into the orchestrator; there is no package
// level instance.
func NewAlgodClient(address, token string) (*AlgodClient, error) {
	c, err := algod.MakeClient(address, token)
	if err != nil {
		return nil, fmt.Errorf("algod client init error: %w", err)
	}
	return &AlgodClient{c: c}, nil
}

func (a *AlgodClient) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return a.c.SuggestedParams().Do(ctx)
}

func (a *AlgodClient) Submit(ctx context.Context, signed []byte) (string, error) {
	return a.c.SendRawTransaction(signed).Do(ctx)
}

func (a *AlgodClient) PendingInfo(ctx context.Context, txid string) (PendingInfo, error) {
	info, _, err := a.c.PendingTransactionInformation(txid).Do(ctx)
	if err != nil {
		return PendingInfo{}, err
	}
	return PendingInfo{
		ConfirmedRound: info.ConfirmedRound,
		AssetIndex:     info.AssetIndex,
		PoolError:      info.PoolError,
	}, nil
}

func (a *AlgodClient) LastRound(ctx context.Context) (uint64, error) {
	status, err := a.c.Status().Do(ctx)
	if err != nil {
		return 0, err
	}
	return status.LastRound, nil
}

func (a *AlgodClient) WaitAfterRound(ctx context.Context, round uint64) error {
	_, err := a.c.StatusAfterBlock(round).Do(ctx)
	return err
}

// GenerateAccount creates a fresh Algorand keypair. The private key is
// returned in plaintext; the caller encrypts it immediately and never
// persists or logs it as-is.
func GenerateAccount() (address string, privateKey ed25519.PrivateKey) {
	account := crypto.GenerateAccount()
	return account.Address.String(), account.PrivateKey
}
