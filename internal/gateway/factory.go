package gateway

import (
	"fmt"

	"venue-gateway/pkg/exchanges/binance/futures_coin"
	"venue-gateway/pkg/exchanges/binance/futures_usdt"
	"venue-gateway/pkg/exchanges/binance/spot"
	exchange "venue-gateway/pkg/exchanges/common"
)

// Segment identifiers accepted by the factory.
const (
	SegmentBinanceSpot    = "binance-spot"
	SegmentBinanceUSDTFut = "binance-usdtfut"
	SegmentBinanceCoinFut = "binance-coinfut"
)

// Factory creates a Gateway for a venue segment.
type Factory func(segment, apiKey, apiSecret string, testnet bool) (exchange.Gateway, error)

// DefaultFactory creates Gateway instances based on segment identifier.
// Each segment gets its own client with its own order-type tables; there
// is no shared translation between segments.
func DefaultFactory(segment, apiKey, apiSecret string, testnet bool) (exchange.Gateway, error) {
	switch segment {
	case SegmentBinanceSpot:
		return spot.New(spot.Config{
			APIKey:    apiKey,
			APISecret: apiSecret,
			Testnet:   testnet,
		}), nil

	case SegmentBinanceUSDTFut:
		return futures_usdt.NewClient(futures_usdt.Config{
			APIKey:    apiKey,
			APISecret: apiSecret,
			Testnet:   testnet,
		}), nil

	case SegmentBinanceCoinFut:
		return futures_coin.NewClient(futures_coin.Config{
			APIKey:    apiKey,
			APISecret: apiSecret,
			Testnet:   testnet,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported segment: %s", segment)
	}
}

// SegmentMarket maps a segment identifier to the market it routes.
func SegmentMarket(segment string) (exchange.MarketType, error) {
	switch segment {
	case SegmentBinanceSpot:
		return exchange.MarketSpot, nil
	case SegmentBinanceUSDTFut:
		return exchange.MarketUSDTFut, nil
	case SegmentBinanceCoinFut:
		return exchange.MarketCoinFut, nil
	default:
		return "", fmt.Errorf("unsupported segment: %s", segment)
	}
}
