package models

import "testing"

func TestRecord_State(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   RecordState
	}{
		{"fresh submission", Record{}, StateUnverified},
		{"issued", Record{Verified: true, AssetID: 501, TransactionID: "TX-777"}, StateIssued},
		{"revoked", Record{Verified: true, AssetID: 501, TransactionID: "TX-777", Revoked: true, RevokeTransactionID: "TX-999"}, StateRevoked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.record.State(); got != tc.want {
				t.Fatalf("State() = %q, want %q", got, tc.want)
			}
		})
	}
}
