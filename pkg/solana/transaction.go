package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrTransactionTooLarge = errors.New("transaction exceeds max size")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into a legacy transaction paid
// for by payer.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}

	// Extract all of the unique accounts from the instructions.
	for _, i := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: i.Program,
			isProgram: true,
		})
		accounts = append(accounts, i.Accounts...)
	}

	accounts = mergeAccountMetas(accounts)
	sort.Slice(accounts, func(i, j int) bool {
		return lessAccountMeta(accounts[i], accounts[j])
	})

	var m Message
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.PublicKey)

		if account.IsSigner {
			m.Header.NumSignatures++

			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}

	// Generate the compiled instruction, which uses indices instead
	// of raw account keys.
	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, i.Program)),
			Data:         i.Data,
		}

		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, byte(indexOf(m.Accounts, a.PublicKey)))
		}

		m.Instructions = append(m.Instructions, c)
	}

	for i := range m.Accounts {
		if len(m.Accounts[i]) == 0 {
			m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		}
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

func (t *Transaction) Signature() []byte {
	return t.Signatures[0][:]
}

// Size is the marshalled size of the transaction in bytes.
func (t *Transaction) Size() int {
	return len(t.Marshal())
}

// CheckSize returns ErrTransactionTooLarge if the transaction can't be
// submitted as a single packet.
func (t *Transaction) CheckSize() error {
	if size := t.Size(); size > MaxTransactionSize {
		return errors.Wrapf(ErrTransactionTooLarge, "%d > %d bytes", size, MaxTransactionSize)
	}
	return nil
}

func (t *Transaction) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "signatures (%d):\n", len(t.Signatures))
	for i, sig := range t.Signatures {
		fmt.Fprintf(&sb, "  [%d] %s\n", i, base58.Encode(sig[:]))
	}

	h := t.Message.Header
	fmt.Fprintf(&sb, "header: signatures=%d readonly_signed=%d readonly=%d\n", h.NumSignatures, h.NumReadonlySigned, h.NumReadOnly)
	fmt.Fprintf(&sb, "blockhash: %s\n", base58.Encode(t.Message.RecentBlockhash[:]))

	fmt.Fprintf(&sb, "accounts (%d):\n", len(t.Message.Accounts))
	for i, key := range t.Message.Accounts {
		fmt.Fprintf(&sb, "  [%d] %s\n", i, base58.Encode(key))
	}

	fmt.Fprintf(&sb, "instructions (%d):\n", len(t.Message.Instructions))
	for i, ix := range t.Message.Instructions {
		fmt.Fprintf(&sb, "  [%d] program=%d accounts=%v data=%x\n", i, ix.ProgramIndex, ix.Accounts, ix.Data)
	}

	return sb.String()
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Errorf("signing account %s is not in the account list", base58.Encode(pub))
		}
		if index >= len(t.Signatures) {
			return errors.Errorf("signing account %s is not in the list of signers", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	return nil
}

// mergeAccountMetas collapses repeated keys into a single entry holding the
// union of their permissions.
func mergeAccountMetas(accounts []AccountMeta) []AccountMeta {
	merged := make([]AccountMeta, 0, len(accounts))
	positions := make(map[string]int, len(accounts))

	for _, account := range accounts {
		pos, ok := positions[string(account.PublicKey)]
		if !ok {
			positions[string(account.PublicKey)] = len(merged)
			merged = append(merged, account)
			continue
		}

		existing := &merged[pos]
		existing.IsSigner = existing.IsSigner || account.IsSigner
		existing.IsWritable = existing.IsWritable || account.IsWritable
		existing.isPayer = existing.isPayer || account.isPayer
	}

	return merged
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
