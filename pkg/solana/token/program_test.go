package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solend-client/pkg/solana"
)

func TestProgramKeys(t *testing.T) {
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", base58.Encode(ProgramKey))
	assert.Equal(t, "So11111111111111111111111111111111111111112", base58.Encode(NativeMint))
	assert.Equal(t, "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", base58.Encode(AssociatedTokenAccountProgramKey))
}

func TestGetCommand(t *testing.T) {
	keys := generateKeys(t, 1)

	cmd, err := GetCommand(SyncNative(keys[0]))
	require.NoError(t, err)
	assert.Equal(t, CommandSyncNative, cmd)

	instruction := SyncNative(keys[0])
	instruction.Data = nil
	_, err = GetCommand(instruction)
	assert.Error(t, err)

	instruction.Program = keys[0]
	_, err = GetCommand(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestCloseAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := CloseAccount(keys[0], keys[1], keys[2])
	assert.Equal(t, []byte{byte(CommandCloseAccount)}, instruction.Data)
	require.Len(t, instruction.Accounts, 3)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[2].IsWritable)
	assert.True(t, instruction.Accounts[2].IsSigner)

	decompiled, err := DecompileCloseAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Owner)

	_, err = DecompileSyncNative(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Accounts = instruction.Accounts[:2]
	_, err = DecompileCloseAccount(instruction)
	assert.Error(t, err)

	instruction = CloseAccount(keys[0], keys[1], keys[2])
	instruction.Data = append(instruction.Data, 0)
	_, err = DecompileCloseAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestSyncNative(t *testing.T) {
	keys := generateKeys(t, 2)

	instruction := SyncNative(keys[0])
	assert.Equal(t, []byte{byte(CommandSyncNative)}, instruction.Data)
	require.Len(t, instruction.Accounts, 1)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)

	decompiled, err := DecompileSyncNative(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)

	_, err = DecompileCloseAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Accounts = append(instruction.Accounts, solana.NewAccountMeta(keys[1], false))
	_, err = DecompileSyncNative(instruction)
	assert.Error(t, err)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
