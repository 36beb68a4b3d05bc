// Package abis holds the ABI definitions of every contract the engine reads.
package abis

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const faucetDetailsComponents = `[
	{"name":"faucetAddress","type":"address"},
	{"name":"owner","type":"address"},
	{"name":"name","type":"string"},
	{"name":"claimAmount","type":"uint256"},
	{"name":"tokenAddress","type":"address"},
	{"name":"startTime","type":"uint256"},
	{"name":"endTime","type":"uint256"},
	{"name":"isClaimActive","type":"bool"},
	{"name":"balance","type":"uint256"},
	{"name":"isEther","type":"bool"},
	{"name":"useBackend","type":"bool"}
]`

// FactoryJSON is the ABI of the faucet factories (dropcode, droplist and custom share it).
const FactoryJSON = `[
	{"type":"function","name":"getAllTransactions","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"tuple[]","components":[
		{"name":"faucetAddress","type":"address"},
		{"name":"transactionType","type":"string"},
		{"name":"initiator","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"isEther","type":"bool"},
		{"name":"timestamp","type":"uint256"}
	 ]}]},
	{"type":"function","name":"getAllFaucets","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getFaucetDetails","stateMutability":"view",
	 "inputs":[{"name":"faucetAddress","type":"address"}],
	 "outputs":[{"name":"","type":"tuple","components":` + faucetDetailsComponents + `}]},
	{"type":"function","name":"getAllFaucetDetails","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"tuple[]","components":` + faucetDetailsComponents + `}]}
]`

// StorageJSON is the ABI of the legacy cross-chain claim storage contract.
const StorageJSON = `[
	{"type":"function","name":"getAllClaims","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"tuple[]","components":[
		{"name":"claimer","type":"address"},
		{"name":"faucet","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"txHash","type":"bytes32"},
		{"name":"networkName","type":"string"},
		{"name":"timestamp","type":"uint256"}
	 ]}]}
]`

// FaucetJSON is the ABI of current faucets.
const FaucetJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isEther","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]}
]`

// LegacyFaucetJSON is the ABI of the first generation of faucets.
const LegacyFaucetJSON = `[
	{"type":"function","name":"faucetName","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"tokenAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isNativeToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]}
]`

// MetadataFaucetJSON is the ABI of faucets exposing all metadata in one call.
const MetadataFaucetJSON = `[
	{"type":"function","name":"getFaucetMetadata","stateMutability":"view","inputs":[],
	 "outputs":[
		{"name":"name","type":"string"},
		{"name":"token","type":"address"},
		{"name":"isEther","type":"bool"}
	 ]}
]`

// ERC20JSON is the subset of the ERC-20 ABI used for token metadata.
const ERC20JSON = `[
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// ERC20Bytes32JSON covers old tokens that return the symbol as bytes32.
const ERC20Bytes32JSON = `[
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]}
]`

var (
	Factory        = mustParse(FactoryJSON)
	Storage        = mustParse(StorageJSON)
	Faucet         = mustParse(FaucetJSON)
	LegacyFaucet   = mustParse(LegacyFaucetJSON)
	MetadataFaucet = mustParse(MetadataFaucetJSON)
	ERC20          = mustParse(ERC20JSON)
	ERC20Bytes32   = mustParse(ERC20Bytes32JSON)
)

func mustParse(definition string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return &parsed
}
