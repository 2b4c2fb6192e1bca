package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
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
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumSubscribeFailed:  "Failed to subscribe to Ethereum events",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeBlockNotFound:            "Block not found",
	CodeGasEstimationFailed:      "Gas estimation failed",

	// Route registry errors
	CodeInvalidPathLength:    "Route path must contain between 2 and 4 tokens",
	CodeCircularPathRequired: "Route path must start and end with the same token",
	CodeInvalidTokenAddress:  "Route path contains an empty token address",
	CodeUnsupportedToken:     "Route path contains an unsupported token",
	CodeDuplicateTokenInPath: "Route path repeats an intermediate token",
	CodeVenueNotConfigured:   "Swap venue has no configured router",
	CodeInvalidRouteID:       "Route id is out of range",
	CodeArrayLengthMismatch:  "Input arrays have mismatched lengths",

	// Route evaluation errors
	CodeNoRoutesAvailable:              "No routes available",
	CodeQuoteUnavailable:               "Swap quote unavailable",
	CodeStalePriceFeed:                 "Price feed is stale",
	CodeInvalidOraclePrice:             "Oracle returned an invalid price",
	CodePriceDeviationTooHigh:          "Quote deviates too far from oracle price",
	CodeSecondaryPriceDeviationTooHigh: "Quote deviates too far from secondary oracle price",

	// Fixed-point arithmetic errors
	CodeInvalidPrice:       "Price must be non-zero",
	CodeArithmeticOverflow: "Arithmetic overflow",
	CodeDivisionByZero:     "Division by zero",

	// Statistics errors
	CodeInsufficientData: "Insufficient data for analysis",

	// DEX errors
	CodeUniswapQuoteFailed:  "Failed to get Uniswap quote",
	CodeUniswapPoolNotFound: "Uniswap pool not found",
	CodeInvalidQuote:        "Invalid quote data",
	CodeContractCallFailed:  "Smart contract call failed",

	// CEX (Binance) errors
	CodeBinanceConnectionFailed: "Failed to connect to Binance API",
	CodeBinanceAPIError:         "Binance API error",

	// Settlement errors
	CodeSettlementFailed: "Settlement simulation failed",

	// Storage errors
	CodeTradeStoreError:          "Trade store operation failed",
	CodeRecommendationStoreError: "Recommendation store operation failed",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
