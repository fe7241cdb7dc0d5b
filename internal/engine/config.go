package engine

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/opensettle/marketgate/internal/pkg/apperrors"
)

// Config is the marketplace configuration read by every settlement call.
// Mutation goes through capability-checked setters only; every change takes
// effect for the next settlement with no staging.
type Config struct {
	mu sync.RWMutex

	admin         common.Address
	engineAddress common.Address
	chainID       int64

	payee        common.Address
	feeBps       uint32
	registry     RoyaltySource
	paymentToken common.Address
}

func NewConfig(admin, engineAddress common.Address, chainID int64, payee common.Address, feeBps uint32) *Config {
	return &Config{
		admin:         admin,
		engineAddress: engineAddress,
		chainID:       chainID,
		payee:         payee,
		feeBps:        feeBps,
	}
}

func (c *Config) Admin() common.Address {
	return c.admin
}

func (c *Config) EngineAddress() common.Address {
	return c.engineAddress
}

func (c *Config) ChainID() int64 {
	return c.chainID
}

func (c *Config) MarketPayee() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.payee
}

func (c *Config) MarketPercent() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feeBps
}

func (c *Config) RoyaltyRegistry() RoyaltySource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry
}

func (c *Config) PaymentToken() common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paymentToken
}

func (c *Config) SetMarketPayee(caller, payee common.Address) error {
	if err := c.requireAdmin(caller); err != nil {
		return err
	}
	c.mu.Lock()
	c.payee = payee
	c.mu.Unlock()
	return nil
}

func (c *Config) SetMarketPercent(caller common.Address, feeBps uint32) error {
	if err := c.requireAdmin(caller); err != nil {
		return err
	}
	if feeBps >= bpsDenominator {
		return apperrors.New(apperrors.ErrInvalidRate, "Fee must be less than 10000", nil)
	}
	c.mu.Lock()
	c.feeBps = feeBps
	c.mu.Unlock()
	return nil
}

func (c *Config) SetRoyaltyRegistry(caller common.Address, registry RoyaltySource) error {
	if err := c.requireAdmin(caller); err != nil {
		return err
	}
	c.mu.Lock()
	c.registry = registry
	c.mu.Unlock()
	return nil
}

func (c *Config) SetPaymentToken(caller, token common.Address) error {
	if err := c.requireAdmin(caller); err != nil {
		return err
	}
	c.mu.Lock()
	c.paymentToken = token
	c.mu.Unlock()
	return nil
}

func (c *Config) requireAdmin(caller common.Address) error {
	if caller != c.admin {
		return apperrors.New(apperrors.ErrUnauthorized, "caller is not the owner", nil)
	}
	return nil
}
