package chain

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const usdcDecimals = 6

// CopyHub 最小 ABI：createMarket / placeBet
const copyHubABI = `[
	{"name":"createMarket","type":"function","inputs":[
		{"name":"marketId","type":"bytes32"},
		{"name":"questionHash","type":"bytes32"},
		{"name":"endTime","type":"uint64"}
	],"outputs":[]},
	{"name":"placeBet","type":"function","inputs":[
		{"name":"marketId","type":"bytes32"},
		{"name":"bettor","type":"address"},
		{"name":"prediction","type":"bool"},
		{"name":"amount","type":"uint256"}
	],"outputs":[]}
]`

// Writer 封装 CopyHub 合约写入。Operator 私钥对应地址需在合约上具备 OPERATOR_ROLE，Gas 由该账户支付
type Writer struct {
	rpcURL  string
	hubAddr common.Address
	key     *ecdsa.PrivateKey
	parsed  abi.ABI
}

// NewWriter 创建合约写入器
func NewWriter(rpcURL, hubAddr, operatorPrivateKeyHex string) (*Writer, error) {
	if rpcURL == "" || hubAddr == "" || operatorPrivateKeyHex == "" {
		return nil, fmt.Errorf("rpc_url, hub_address, operator_private_key 必填")
	}
	keyHex := strings.TrimPrefix(strings.TrimSpace(operatorPrivateKeyHex), "0x")
	keyBuf, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode operator key: %w", err)
	}
	key, err := crypto.ToECDSA(keyBuf)
	if err != nil {
		return nil, fmt.Errorf("to ecdsa: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(copyHubABI))
	if err != nil {
		return nil, err
	}
	return &Writer{
		rpcURL:  rpcURL,
		hubAddr: common.HexToAddress(hubAddr),
		key:     key,
		parsed:  parsed,
	}, nil
}

// CreateMarket 调用 CopyHub.createMarket，等待上链确认后返回交易哈希
func (w *Writer) CreateMarket(ctx context.Context, marketID uint64, question string, endTime int64) (string, error) {
	if endTime <= time.Now().Unix() {
		return "", fmt.Errorf("endTime 必须晚于当前时间")
	}
	questionHash := crypto.Keccak256Hash([]byte(question))
	data, err := w.parsed.Pack("createMarket", marketIDToBytes32(marketID), [32]byte(questionHash), uint64(endTime))
	if err != nil {
		return "", fmt.Errorf("pack createMarket: %w", err)
	}
	return w.send(ctx, data, 200000)
}

// PlaceBet 调用 CopyHub.placeBet，等待上链确认后返回交易哈希
func (w *Writer) PlaceBet(ctx context.Context, marketID uint64, bettor string, prediction bool, amount float64) (string, error) {
	amt := FloatToUSDCAmount(amount)
	if amt.Sign() <= 0 {
		return "", fmt.Errorf("amount 必须大于 0")
	}
	if !common.IsHexAddress(bettor) {
		return "", fmt.Errorf("bettor 不是合法地址: %s", bettor)
	}
	data, err := w.parsed.Pack("placeBet", marketIDToBytes32(marketID), common.HexToAddress(bettor), prediction, amt)
	if err != nil {
		return "", fmt.Errorf("pack placeBet: %w", err)
	}
	return w.send(ctx, data, 150000)
}

// send 签名并发送交易，轮询回执确认是否执行成功，避免链上 revert 但后端仍落库
func (w *Writer) send(ctx context.Context, data []byte, gasLimit uint64) (string, error) {
	client, err := ethclient.DialContext(ctx, w.rpcURL)
	if err != nil {
		return "", fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("chain id: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("gas price: %w", err)
	}
	from := crypto.PubkeyToAddress(w.key.PublicKey)
	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}

	to := w.hubAddr
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), w.key)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}
	txHash := signed.Hash().Hex()
	for i := 0; i < 15; i++ {
		receipt, err := client.TransactionReceipt(ctx, signed.Hash())
		if err != nil {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("等待交易确认: %w", ctx.Err())
			case <-time.After(2 * time.Second):
				continue
			}
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return "", fmt.Errorf("交易已上链但执行失败(revert)，tx: %s", txHash)
		}
		return txHash, nil
	}
	return "", fmt.Errorf("等待交易确认超时，请稍后在区块浏览器查看 tx: %s", txHash)
}

// marketIDToBytes32 市场ID转链上 bytes32 键（大端，左补零）
func marketIDToBytes32(marketID uint64) [32]byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], marketID)
	return b
}

// FloatToUSDCAmount 将 USDC 金额（如 10.5）转为链上 6 位精度 *big.Int
func FloatToUSDCAmount(amount float64) *big.Int {
	if amount <= 0 {
		return big.NewInt(0)
	}
	div := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(usdcDecimals), nil))
	a := new(big.Float).SetFloat64(amount)
	a.Mul(a, div)
	i, _ := a.Int(nil)
	return i
}
