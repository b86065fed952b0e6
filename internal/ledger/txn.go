package ledger

import (
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

// ASA field limits enforced by the protocol.
const (
	maxAssetNameLen = 32
	maxUnitNameLen  = 8
	maxURLLen       = 96
)

// A land record is represented as a non-fungible unit: one indivisible
// asset per record.
const (
	assetTotal    = 1
	assetDecimals = 0
)

// BuildAssetCreate builds the asset-configuration transaction minting the
// record's asset. The creator keeps manager, reserve, freeze, and clawback
// authority; clawback is what makes later revocation possible.
func BuildAssetCreate(params types.SuggestedParams, creator, assetName, unitName, url string) (types.Transaction, error) {
	return transaction.MakeAssetCreateTxn(
		creator,
		nil,
		params,
		assetTotal,
		assetDecimals,
		false,
		creator,
		creator,
		creator,
		creator,
		clamp(unitName, maxUnitNameLen),
		clamp(assetName, maxAssetNameLen),
		clamp(url, maxURLLen),
		"",
	)
}

// BuildAssetOptIn builds the holder's acceptance transaction. Without a
// confirmed opt-in, the subsequent transfer is rejected by the ledger.
func BuildAssetOptIn(params types.SuggestedParams, account string, assetID uint64) (types.Transaction, error) {
	return transaction.MakeAssetAcceptanceTxn(account, nil, params, assetID)
}

// BuildAssetTransfer builds the transfer of the single unit from sender to
// receiver.
func BuildAssetTransfer(params types.SuggestedParams, sender, receiver string, assetID uint64) (types.Transaction, error) {
	return transaction.MakeAssetTransferTxn(sender, receiver, assetTotal, nil, params, "", assetID)
}

// BuildAssetClawback builds the revocation transfer: the clawback account
// forcibly moves the unit from holder back to itself.
func BuildAssetClawback(params types.SuggestedParams, clawback, holder string, assetID uint64) (types.Transaction, error) {
	return transaction.MakeAssetRevocationTxn(clawback, holder, assetTotal, clawback, nil, params, assetID)
}

func clamp(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
