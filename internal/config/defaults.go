package config

const (
	defaultDataDir = "~/.onyx-miner"

	// PlaceholderWallet is written into freshly created configuration files.
	// Validation rejects it so mining cannot start on an unedited template.
	PlaceholderWallet = "YOUR_WALLET_ADDRESS_HERE"

	defaultPoolURL     = "pool.supportxmr.com:443"
	defaultWorkerName  = "onyx-miner"
	defaultUseSSL      = true
	defaultProfileName = "Default Profile"
)

// Default returns the template mining configuration. The wallet address is a
// placeholder that must be edited before a start can pass validation.
func Default() Mining {
	return Mining{
		WalletAddress: PlaceholderWallet,
		PoolURL:       defaultPoolURL,
		WorkerName:    defaultWorkerName,
		UseSSL:        defaultUseSSL,
		ProfileName:   defaultProfileName,
	}
}
