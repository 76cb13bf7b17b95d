package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Router-specific error codes
const (
	// Swap request validation
	CodeTokenNotFound    Code = "TOKEN_NOT_FOUND"
	CodeInvalidAmount    Code = "INVALID_AMOUNT"
	CodeUnsupportedChain Code = "UNSUPPORTED_CHAIN"

	// Quote aggregation
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeSourceTimeout     Code = "SOURCE_TIMEOUT"
	CodeInvalidQuote      Code = "INVALID_QUOTE"
	CodeNoQuotes          Code = "NO_QUOTES"

	// Market data
	CodePriceFetchFailed    Code = "PRICE_FETCH_FAILED"
	CodeGasPriceFetchFailed Code = "GAS_PRICE_FETCH_FAILED"
	CodeEthereumRPCError    Code = "ETHEREUM_RPC_ERROR"
	CodeBinanceAPIError     Code = "BINANCE_API_ERROR"
	CodeWebSocketClosed     Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError  Code = "WEBSOCKET_SEND_ERROR"
	CodeWebSocketConnFailed Code = "WEBSOCKET_CONNECTION_FAILED"

	// Analysis
	CodeSpreadCalculationError Code = "SPREAD_CALCULATION_ERROR"
	CodeSplitCalculationError  Code = "SPLIT_CALCULATION_ERROR"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
