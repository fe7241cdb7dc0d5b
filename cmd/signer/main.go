// Command signer produces listing and offer signatures offline, for seeding
// test fixtures and driving the settlement API by hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/opensettle/marketgate/internal/signer"
)

func main() {
	var (
		keyHex   = flag.String("key", "", "signer private key hex (0x prefix optional)")
		chainID  = flag.Int64("chain-id", 1, "EIP-155 chain id bound into the domain")
		contract = flag.String("contract", "", "verifying contract address")
		kind     = flag.String("kind", "listing", "listing or offer")
		token    = flag.String("collection", "", "NFT collection address")
		tokenID  = flag.String("token-id", "", "token id, base 10")
		price    = flag.String("price", "", "price in payment-token units, e.g. 0.95")
		party    = flag.String("party", "", "seller address (listing) or bidder address (offer)")
	)
	flag.Parse()

	if *keyHex == "" || *contract == "" || *token == "" || *tokenID == "" || *price == "" || *party == "" {
		flag.Usage()
		log.Fatal("key, contract, collection, token-id, price and party are all required")
	}

	s, err := signer.NewSigner(*keyHex, *chainID)
	if err != nil {
		log.Fatalf("bad key: %v", err)
	}

	id, ok := new(big.Int).SetString(*tokenID, 10)
	if !ok {
		log.Fatalf("bad token id: %q", *tokenID)
	}
	wei, err := toWei(*price)
	if err != nil {
		log.Fatalf("bad price: %v", err)
	}
	verifying := mustAddress("contract", *contract)
	collection := mustAddress("collection", *token)
	counterparty := mustAddress("party", *party)

	var sig []byte
	switch *kind {
	case "listing":
		sig, err = s.SignListing(&signer.ListParams{
			TokenAddress: collection,
			TokenID:      id,
			Price:        wei,
			Seller:       counterparty,
		}, verifying)
	case "offer":
		sig, err = s.SignOffer(&signer.OfferParams{
			TokenAddress: collection,
			TokenID:      id,
			Price:        wei,
			Bidder:       counterparty,
		}, verifying)
	default:
		log.Fatalf("unknown kind %q, want listing or offer", *kind)
	}
	if err != nil {
		log.Fatalf("signing failed: %v", err)
	}

	fmt.Printf("signer:    %s\n", s.Address().Hex())
	fmt.Printf("price_wei: %s\n", wei.String())
	fmt.Printf("signature: %s\n", hexutil.Encode(sig))
}

func toWei(price string) (*big.Int, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	shifted := d.Shift(18)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("price %s has more than 18 decimal places", price)
	}
	return shifted.BigInt(), nil
}

func mustAddress(name, value string) common.Address {
	if !common.IsHexAddress(value) {
		log.Fatalf("bad %s address: %q", name, value)
	}
	return common.HexToAddress(value)
}
