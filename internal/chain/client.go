package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// BlockByNumber returns the block by number.
func (c *Client) BlockByNumber(ctx context.Context, number uint64) (*types.Block, error) {
	return c.ethClient.BlockByNumber(ctx, new(big.Int).SetUint64(number))
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// StorageWrite is one SSTORE reported by the storage write tracer.
type StorageWrite struct {
	Address common.Address `json:"address"`
	Key     common.Hash    `json:"key"`
	Old     common.Hash    `json:"old"`
	New     common.Hash    `json:"new"`
}

// TxStorageWrites is one transaction entry of debug_traceBlockByNumber.
// Result lists the writes in execution order.
type TxStorageWrites struct {
	TxHash common.Hash    `json:"txHash"`
	Result []StorageWrite `json:"result"`
	Error  string         `json:"error,omitempty"`
}

// TraceBlockStorageWrites runs storageWriteTracer over a block. The node must
// expose the debug namespace and accept JavaScript tracers.
func (c *Client) TraceBlockStorageWrites(ctx context.Context, number uint64) ([]TxStorageWrites, error) {
	var traces []TxStorageWrites
	cfg := map[string]interface{}{
		"tracer": storageWriteTracer,
	}
	if err := c.rpcClient.CallContext(ctx, &traces, "debug_traceBlockByNumber", hexutil.EncodeUint64(number), cfg); err != nil {
		return nil, fmt.Errorf("trace block %d: %w", number, err)
	}
	return traces, nil
}
