package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the document can drive a worker start. Mining-critical
// fields are never silently defaulted; a template wallet is rejected.
func (m Mining) Validate() error {
	wallet := strings.TrimSpace(m.WalletAddress)
	if wallet == "" || wallet == PlaceholderWallet {
		return errors.New("wallet_address must be configured before mining can start")
	}

	pool := strings.TrimSpace(m.PoolURL)
	if pool == "" {
		return errors.New("pool_url is required")
	}
	host, port, err := net.SplitHostPort(pool)
	if err != nil {
		return fmt.Errorf("pool_url must be host:port (e.g. pool.example.com:443): %w", err)
	}
	if host == "" || port == "" {
		return errors.New("pool_url must include both host and port")
	}

	if strings.TrimSpace(m.WorkerName) == "" {
		return errors.New("worker_name is required")
	}
	return nil
}
