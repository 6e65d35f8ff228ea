// Command cashtx builds, signs and announces single-input Bitcoin Cash
// payments from the command line.
//
// Example usage:
//
//	cashtx send --wif 5KMY... --prev-txid 31ba... --prev-value 29316 \
//	    --to bitcoincash:qq7ur... --amount 29066
//	cashtx address --wif 5KMY...
//	cashtx uri "bitcoincash:qq7ur...?amount=0.00029066"
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	flags "github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/suffix-labs/cashtx/pkg/address"
	"github.com/suffix-labs/cashtx/pkg/api"
	"github.com/suffix-labs/cashtx/pkg/bip21"
	"github.com/suffix-labs/cashtx/pkg/crypto"
	"github.com/suffix-labs/cashtx/pkg/explorer"
	"github.com/suffix-labs/cashtx/pkg/netparams"
	"github.com/suffix-labs/cashtx/pkg/wire"
)

const appVersion = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	argv := os.Args[2:]

	var cmdErr error
	switch command {
	case "send":
		cmdErr = cmdSend(logger, argv)
	case "address":
		cmdErr = cmdAddress(argv)
	case "uri":
		cmdErr = cmdURI(argv)
	case "utxos":
		cmdErr = cmdUTXOs(logger, argv)
	case "push":
		cmdErr = cmdPush(logger, argv)
	case "announce":
		cmdErr = cmdAnnounce(logger, argv)
	case "header":
		cmdErr = cmdHeader(argv)
	case "decode":
		cmdErr = cmdDecode(argv)
	case "version":
		cmdErr = cmdVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if cmdErr != nil {
		logger.Fatal("command failed",
			zap.String("command", command),
			zap.Error(cmdErr))
	}
}

// parseFlags parses argv into opts and returns the leftover positional
// arguments. The boolean is false when go-flags already printed its help
// output and the command should stop without an error.
func parseFlags(opts any, argv []string) ([]string, bool, error) {
	rest, err := flags.ParseArgs(opts, argv)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rest, true, nil
}

type sendOptions struct {
	Config    string `long:"config" description:"Path to YAML config file"`
	Network   string `long:"network" description:"Network name: mainnet, testnet or regtest"`
	WIF       string `long:"wif" env:"CASHTX_WIF" description:"Sender private key in WIF encoding" required:"true"`
	PrevTxID  string `long:"prev-txid" description:"Transaction ID of the output being spent, display order" required:"true"`
	PrevIndex uint32 `long:"prev-index" description:"Index of the output being spent" default:"0"`
	PrevValue uint64 `long:"prev-value" description:"Value of the output being spent, in satoshis" required:"true"`
	Recipient string `long:"to" description:"Recipient address, CashAddr or legacy" required:"true"`
	Amount    uint64 `long:"amount" description:"Amount to send, in satoshis" required:"true"`
	LockTime  uint32 `long:"locktime" description:"Transaction lock time" default:"0"`
	Explorer  string `long:"explorer" description:"Explorer API base URL"`
	Broadcast bool   `long:"broadcast" description:"Push the signed transaction to the explorer"`
}

func cmdSend(logger *zap.Logger, argv []string) error {
	var opts sendOptions
	_, ok, err := parseFlags(&opts, argv)
	if err != nil || !ok {
		return err
	}

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return err
	}
	if opts.Network == "" {
		opts.Network = cfg.Network
	}

	key, err := crypto.ParsePrivateKeyWIF(opts.WIF)
	if err != nil {
		return fmt.Errorf("parsing WIF key: %w", err)
	}

	proposal := &api.PaymentProposal{
		PrevTxID:     opts.PrevTxID,
		PrevIndex:    opts.PrevIndex,
		PrevValue:    opts.PrevValue,
		SenderPubKey: key.PublicKeyBytes(),
		Recipient:    opts.Recipient,
		Amount:       opts.Amount,
		LockTime:     opts.LockTime,
		Network:      opts.Network,
	}
	result, err := api.CreatePayment(proposal, opts.WIF)
	if err != nil {
		return err
	}

	logger.Info("signed transaction",
		zap.String("txid", result.TxID),
		zap.Int("size", len(result.RawTx)))

	fmt.Println("Signed transaction:")
	fmt.Printf("  Raw hex: %x\n", result.RawTx)
	fmt.Printf("  TxID:    %s\n", result.TxID)
	fmt.Printf("  Size:    %d bytes\n", len(result.RawTx))

	if opts.Broadcast {
		explorerURL := cfg.ExplorerURL
		if opts.Explorer != "" {
			explorerURL = opts.Explorer
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger.Info("broadcasting transaction",
			zap.String("explorer", explorerURL),
			zap.String("txid", result.TxID))
		client := explorer.NewClient(explorerURL).WithUserAgent(cfg.UserAgent)
		pushedID, err := client.PushTransaction(ctx, result.RawTx)
		if err != nil {
			return fmt.Errorf("broadcasting transaction: %w", err)
		}
		fmt.Printf("\nExplorer accepted transaction: %s\n", pushedID)
	}
	return nil
}

type addressOptions struct {
	WIF     string `long:"wif" env:"CASHTX_WIF" description:"Private key in WIF encoding"`
	PubKey  string `long:"pubkey" description:"Serialized public key, hex"`
	Network string `long:"network" description:"Network name: mainnet, testnet or regtest" default:"mainnet"`
}

func cmdAddress(argv []string) error {
	var opts addressOptions
	_, ok, err := parseFlags(&opts, argv)
	if err != nil || !ok {
		return err
	}

	var pubKey []byte
	switch {
	case opts.WIF != "" && opts.PubKey != "":
		return errors.New("use either --wif or --pubkey, not both")
	case opts.WIF != "":
		key, err := crypto.ParsePrivateKeyWIF(opts.WIF)
		if err != nil {
			return fmt.Errorf("parsing WIF key: %w", err)
		}
		pubKey = key.PublicKeyBytes()
	case opts.PubKey != "":
		decoded, err := hex.DecodeString(opts.PubKey)
		if err != nil {
			return fmt.Errorf("decoding public key hex: %w", err)
		}
		pubKey = decoded
	default:
		return errors.New("one of --wif or --pubkey is required")
	}

	params, err := netparams.ForName(opts.Network)
	if err != nil {
		return err
	}
	addr, err := address.FromPubKey(pubKey, params)
	if err != nil {
		return err
	}
	legacy, err := addr.Legacy()
	if err != nil {
		return err
	}

	fmt.Printf("Addresses on %s:\n", params.Name)
	fmt.Printf("  CashAddr: %s\n", addr)
	fmt.Printf("  Legacy:   %s\n", legacy)
	fmt.Printf("  Hash160:  %x\n", addr.Hash)
	return nil
}

func cmdURI(argv []string) error {
	if len(argv) < 1 {
		return errors.New("usage: cashtx uri <payment-uri>")
	}

	req, err := api.ParsePaymentURI(argv[0])
	if err != nil {
		return err
	}

	fmt.Println("Parsed payment request:")
	fmt.Printf("  Address: %s\n", req.Address)
	if req.Amount != nil {
		fmt.Printf("  Amount:  %d satoshis\n", int64(*req.Amount))
	}
	if req.Label != "" {
		fmt.Printf("  Label:   %s\n", req.Label)
	}
	if req.Message != "" {
		fmt.Printf("  Message: %s\n", req.Message)
	}

	encoded, err := bip21.Encode(req)
	if err != nil {
		return err
	}
	fmt.Printf("\nRe-encoded: %s\n", encoded)
	return nil
}

type utxosOptions struct {
	Address  string `long:"address" description:"Address to query, CashAddr or legacy" required:"true"`
	Config   string `long:"config" description:"Path to YAML config file"`
	Explorer string `long:"explorer" description:"Explorer API base URL"`
	Mempool  bool   `long:"mempool" description:"Also list unconfirmed outputs"`
}

func cmdUTXOs(logger *zap.Logger, argv []string) error {
	var opts utxosOptions
	_, ok, err := parseFlags(&opts, argv)
	if err != nil || !ok {
		return err
	}

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return err
	}
	explorerURL := cfg.ExplorerURL
	if opts.Explorer != "" {
		explorerURL = opts.Explorer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("querying explorer",
		zap.String("explorer", explorerURL),
		zap.String("address", opts.Address))
	client := explorer.NewClient(explorerURL).WithUserAgent(cfg.UserAgent)

	utxos, err := client.UnspentOutputs(ctx, opts.Address)
	if err != nil {
		return err
	}
	fmt.Printf("Confirmed unspent outputs for %s: %d\n", opts.Address, len(utxos))
	var total uint64
	for _, u := range utxos {
		fmt.Printf("  %s:%d  %d satoshis\n", u.TxID, u.Index, u.Value)
		total += u.Value
	}
	fmt.Printf("Total: %d satoshis\n", total)

	if opts.Mempool {
		pending, err := client.MempoolOutputs(ctx, opts.Address)
		if err != nil {
			return err
		}
		fmt.Printf("\nMempool outputs: %d\n", len(pending))
		for _, u := range pending {
			fmt.Printf("  %s:%d  %d satoshis\n", u.TxID, u.Index, u.Value)
		}
	}
	return nil
}

type pushOptions struct {
	Config   string `long:"config" description:"Path to YAML config file"`
	Explorer string `long:"explorer" description:"Explorer API base URL"`
}

func cmdPush(logger *zap.Logger, argv []string) error {
	var opts pushOptions
	rest, ok, err := parseFlags(&opts, argv)
	if err != nil || !ok {
		return err
	}
	if len(rest) < 1 {
		return errors.New("usage: cashtx push [options] <raw-tx-hex>")
	}

	raw, err := hex.DecodeString(rest[0])
	if err != nil {
		return fmt.Errorf("decoding transaction hex: %w", err)
	}

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return err
	}
	explorerURL := cfg.ExplorerURL
	if opts.Explorer != "" {
		explorerURL = opts.Explorer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("pushing transaction",
		zap.String("explorer", explorerURL),
		zap.Int("size", len(raw)))
	client := explorer.NewClient(explorerURL).WithUserAgent(cfg.UserAgent)

	txid, err := client.PushTransaction(ctx, raw)
	if err != nil {
		return err
	}
	fmt.Printf("Explorer accepted transaction: %s\n", txid)
	return nil
}

type announceOptions struct {
	TxID    string `long:"txid" description:"Transaction ID to announce, display order"`
	RawTx   string `long:"tx" description:"Raw transaction hex; adds a tx frame and implies the txid"`
	Network string `long:"network" description:"Network name: mainnet, testnet or regtest" default:"mainnet"`
	Peer    string `long:"peer" description:"host:port of a peer to write the frames to"`
}

func cmdAnnounce(logger *zap.Logger, argv []string) error {
	var opts announceOptions
	_, ok, err := parseFlags(&opts, argv)
	if err != nil || !ok {
		return err
	}

	var raw []byte
	txid := opts.TxID
	if opts.RawTx != "" {
		raw, err = hex.DecodeString(opts.RawTx)
		if err != nil {
			return fmt.Errorf("decoding transaction hex: %w", err)
		}
		txid = crypto.TransactionID(raw).String()
	}
	if txid == "" {
		return errors.New("one of --txid or --tx is required")
	}

	params, err := netparams.ForName(opts.Network)
	if err != nil {
		return err
	}
	frames, err := api.AnnounceTransaction(params, txid)
	if err != nil {
		return err
	}
	names := []string{"version", "inv"}
	if len(raw) > 0 {
		txFrame, err := api.FrameMessage(params, "tx", raw)
		if err != nil {
			return err
		}
		frames = [][]byte{frames[0], txFrame, frames[1]}
		names = []string{"version", "tx", "inv"}
	}

	fmt.Printf("Announcement frames for %s (magic 0x%08x):\n", params.Name, params.Net)
	for i, frame := range frames {
		fmt.Printf("  %s (%d bytes):\n    %x\n", names[i], len(frame), frame)
	}

	if opts.Peer == "" {
		return nil
	}

	// Fire and forget: write the frames in order and hang up. Reading the
	// peer's side of the handshake is out of scope here.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", opts.Peer)
	if err != nil {
		return fmt.Errorf("dialing peer: %w", err)
	}
	defer conn.Close()
	if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	for i, frame := range frames {
		if _, err := conn.Write(frame); err != nil {
			return fmt.Errorf("writing %s frame: %w", names[i], err)
		}
	}
	logger.Info("frames written",
		zap.String("peer", opts.Peer),
		zap.Int("frames", len(frames)))
	return nil
}

func cmdHeader(argv []string) error {
	if len(argv) < 1 {
		return errors.New("usage: cashtx header <160-char-header-hex>")
	}

	raw, err := hex.DecodeString(argv[0])
	if err != nil {
		return fmt.Errorf("decoding header hex: %w", err)
	}
	header, err := wire.ParseBlockHeader(raw)
	if err != nil {
		return err
	}
	hash, err := header.BlockHash()
	if err != nil {
		return err
	}
	valid, err := header.CheckProofOfWork()
	if err != nil {
		return err
	}

	when := time.Unix(int64(header.Timestamp), 0).UTC()
	fmt.Println("Block header:")
	fmt.Printf("  Version:     %d\n", header.Version)
	fmt.Printf("  Prev block:  %s\n", header.PrevBlock)
	fmt.Printf("  Merkle root: %s\n", header.MerkleRoot)
	fmt.Printf("  Timestamp:   %s (%d)\n", when.Format(time.RFC3339), header.Timestamp)
	fmt.Printf("  Bits:        0x%08x\n", header.Bits)
	fmt.Printf("  Nonce:       %d\n", header.Nonce)
	fmt.Printf("  Hash:        %s\n", hash)
	fmt.Printf("  Target:      %064x\n", header.Target())
	fmt.Printf("  Difficulty:  %.10f\n", header.Difficulty())
	fmt.Printf("  Valid PoW:   %v\n", valid)
	return nil
}

func cmdDecode(argv []string) error {
	if len(argv) < 1 {
		return errors.New("usage: cashtx decode <raw-tx-hex>")
	}

	raw, err := hex.DecodeString(argv[0])
	if err != nil {
		return fmt.Errorf("decoding transaction hex: %w", err)
	}
	parsed, err := api.ParseTransaction(raw)
	if err != nil {
		return err
	}

	fmt.Println("Decoded transaction:")
	fmt.Printf("  TxID:     %s\n", crypto.TransactionID(raw))
	fmt.Printf("  Version:  %d\n", parsed.Version)
	fmt.Printf("  LockTime: %d\n", parsed.LockTime)
	for i, in := range parsed.Inputs {
		fmt.Printf("  Input %d:  %s:%d\n", i, in.PrevoutTxID, in.PrevoutIndex)
		fmt.Printf("    ScriptSig: %x\n", in.ScriptSig)
		fmt.Printf("    Sequence:  0x%08x\n", in.Sequence)
	}
	for i, out := range parsed.Outputs {
		fmt.Printf("  Output %d: %d satoshis\n", i, out.Value)
		fmt.Printf("    ScriptPubKey: %x\n", out.ScriptPubKey)
	}
	return nil
}

func cmdVersion() error {
	fmt.Printf("cashtx %s\n", appVersion)
	fmt.Printf("  Protocol version: %d\n", wire.ProtocolVersion)
	fmt.Println("  Networks:         mainnet, testnet, regtest")
	return nil
}

func printUsage() {
	fmt.Print(`cashtx - single-input Bitcoin Cash payment tool

Usage:
  cashtx <command> [options]

Commands:
  send      Build and sign a payment, optionally broadcast it
  address   Derive CashAddr and legacy addresses from a key
  uri       Parse a bitcoincash: payment URI
  utxos     List unspent outputs for an address
  push      Broadcast a raw transaction through the explorer
  announce  Build announcement frames, optionally write them to a peer
  header    Decode an 80-byte block header
  decode    Decode a raw transaction
  version   Show version information
  help      Show this help

Run 'cashtx <command> --help' for the options of a command.

Examples:
  cashtx send --wif 5KMY... --prev-txid 31ba... --prev-index 0 \
      --prev-value 29316 --to bitcoincash:qq7ur... --amount 29066
  cashtx address --wif 5KMY...
  cashtx uri "bitcoincash:qq7ur36zd8uq2wqv0mle2khzwt79ue9ty57mvd95r0?amount=0.001"
  cashtx utxos --address bitcoincash:qq7ur... --mempool
`)
}
