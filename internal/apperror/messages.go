package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Swap request validation
	CodeTokenNotFound:    "Token not found on the requested chain",
	CodeInvalidAmount:    "Amount must be a positive number",
	CodeUnsupportedChain: "Chain is not supported",

	// Quote aggregation
	CodeSourceUnavailable: "Aggregator source unavailable",
	CodeSourceTimeout:     "Aggregator source timed out",
	CodeInvalidQuote:      "Invalid quote data",
	CodeNoQuotes:          "No quotes received from any source",

	// Market data
	CodePriceFetchFailed:    "Failed to fetch native token price",
	CodeGasPriceFetchFailed: "Failed to fetch gas price",
	CodeEthereumRPCError:    "Ethereum RPC call failed",
	CodeBinanceAPIError:     "Binance API error",
	CodeWebSocketClosed:     "WebSocket connection closed",
	CodeWebSocketSendError:  "Failed to send WebSocket message",
	CodeWebSocketConnFailed: "WebSocket connection error",

	// Analysis
	CodeSpreadCalculationError: "Spread calculation error",
	CodeSplitCalculationError:  "Split calculation error",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}

// guidance maps fatal error codes to actionable next steps shown to the user.
// Per-source failures never surface here; only request-level errors do.
var guidance = map[Code]string{
	CodeTokenNotFound:    "Check the token symbol, or pass the 0x contract address directly.",
	CodeInvalidAmount:    "Pass the amount as a positive decimal, e.g. 1.5.",
	CodeUnsupportedChain: "Supported chains: ethereum, arbitrum, polygon, optimism.",
	CodeNoQuotes: "All aggregator sources failed. Set DEXR_SOURCES_ONEINCH_API_KEY and/or " +
		"DEXR_SOURCES_ZEROX_API_KEY for higher rate limits, or retry in a few seconds.",
	CodeConfigurationError: "Check the config file syntax and DEXR_* environment variables.",
}

// Guidance returns an actionable hint for the given code, if one exists.
func Guidance(code Code) string {
	return guidance[code]
}
