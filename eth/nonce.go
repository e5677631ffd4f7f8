package eth

import (
	"math/big"
	"sync"

	"github.com/artledger/certmint/eth/client"
	"github.com/ethereum/go-ethereum/common"
)

// NonceManager hands out sequential nonces for the master minting wallet.
// Mint requests run concurrently but nonce allocation must be serialized,
// otherwise two in-flight transactions collide at the node.
type NonceManager struct {
	mu      sync.Mutex
	client  client.EthereumClient
	address common.Address
	next    uint64
	seeded  bool
}

func NewNonceManager(ethClient client.EthereumClient, address common.Address) *NonceManager {
	return &NonceManager{
		client:  ethClient,
		address: address,
	}
}

// Reserve returns the next nonce, seeding from the node's pending nonce on
// first use or after a Reset.
func (m *NonceManager) Reserve() (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.seeded {
		pending, err := m.client.GetPendingNonce(m.address)
		if err != nil {
			return nil, err
		}
		m.next = pending
		m.seeded = true
	}

	nonce := m.next
	m.next++
	return new(big.Int).SetUint64(nonce), nil
}

// Reset discards local state so the next Reserve re-reads the node's
// pending nonce. Called after a failed broadcast, where the local counter
// may be ahead of (or behind) the chain.
func (m *NonceManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeded = false
}
