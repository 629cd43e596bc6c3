package solana

import (
	"github.com/mr-tron/base58"

	"github.com/code-payments/solend-client/pkg/solana/shortvec"
)

func (s Signature) ToBase58() string {
	return base58.Encode(s[:])
}

// Marshal returns the wire encoding of the transaction.
func (t Transaction) Marshal() []byte {
	b := appendLen(nil, len(t.Signatures))
	for _, sig := range t.Signatures {
		b = append(b, sig[:]...)
	}
	return append(b, t.Message.Marshal()...)
}

// Marshal returns the wire encoding of the legacy message, which is also
// the payload signed by each signer.
func (m Message) Marshal() []byte {
	b := []byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly}

	b = appendLen(b, len(m.Accounts))
	for _, key := range m.Accounts {
		b = append(b, key...)
	}
	b = append(b, m.RecentBlockhash[:]...)

	b = appendLen(b, len(m.Instructions))
	for _, ix := range m.Instructions {
		b = append(b, ix.ProgramIndex)
		b = appendLen(b, len(ix.Accounts))
		b = append(b, ix.Accounts...)
		b = appendLen(b, len(ix.Data))
		b = append(b, ix.Data...)
	}

	return b
}

// appendLen panics on lengths that cannot be encoded, which NewTransaction
// never produces.
func appendLen(b []byte, n int) []byte {
	b, err := shortvec.AppendLen(b, n)
	if err != nil {
		panic(err)
	}
	return b
}
