package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
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

// Arbitrage-specific error codes
const (
	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumSubscribeFailed  Code = "ETHEREUM_SUBSCRIBE_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeBlockNotFound            Code = "BLOCK_NOT_FOUND"
	CodeGasEstimationFailed      Code = "GAS_ESTIMATION_FAILED"

	// Route registry errors
	CodeInvalidPathLength    Code = "INVALID_PATH_LENGTH"
	CodeCircularPathRequired Code = "CIRCULAR_PATH_REQUIRED"
	CodeInvalidTokenAddress  Code = "INVALID_TOKEN_ADDRESS"
	CodeUnsupportedToken     Code = "UNSUPPORTED_TOKEN"
	CodeDuplicateTokenInPath Code = "DUPLICATE_TOKEN_IN_PATH"
	CodeVenueNotConfigured   Code = "VENUE_NOT_CONFIGURED"
	CodeInvalidRouteID       Code = "INVALID_ROUTE_ID"
	CodeArrayLengthMismatch  Code = "ARRAY_LENGTH_MISMATCH"

	// Route evaluation errors
	CodeNoRoutesAvailable              Code = "NO_ROUTES_AVAILABLE"
	CodeQuoteUnavailable               Code = "QUOTE_UNAVAILABLE"
	CodeStalePriceFeed                 Code = "STALE_PRICE_FEED"
	CodeInvalidOraclePrice             Code = "INVALID_ORACLE_PRICE"
	CodePriceDeviationTooHigh          Code = "PRICE_DEVIATION_TOO_HIGH"
	CodeSecondaryPriceDeviationTooHigh Code = "SECONDARY_PRICE_DEVIATION_TOO_HIGH"

	// Fixed-point arithmetic errors
	CodeInvalidPrice       Code = "INVALID_PRICE"
	CodeArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"
	CodeDivisionByZero     Code = "DIVISION_BY_ZERO"

	// Statistics errors
	CodeInsufficientData Code = "INSUFFICIENT_DATA"

	// DEX errors
	CodeUniswapQuoteFailed  Code = "UNISWAP_QUOTE_FAILED"
	CodeUniswapPoolNotFound Code = "UNISWAP_POOL_NOT_FOUND"
	CodeInvalidQuote        Code = "INVALID_QUOTE"
	CodeContractCallFailed  Code = "CONTRACT_CALL_FAILED"

	// CEX (Binance) errors
	CodeBinanceConnectionFailed Code = "BINANCE_CONNECTION_FAILED"
	CodeBinanceAPIError         Code = "BINANCE_API_ERROR"

	// Settlement errors
	CodeSettlementFailed Code = "SETTLEMENT_FAILED"

	// Storage errors
	CodeTradeStoreError          Code = "TRADE_STORE_ERROR"
	CodeRecommendationStoreError Code = "RECOMMENDATION_STORE_ERROR"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
