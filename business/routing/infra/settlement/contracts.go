package settlement

// ExecutorABI covers the flash-loan executor entry point. The call is only
// ever simulated with eth_call.
const ExecutorABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "asset", "type": "address"},
			{"internalType": "uint256", "name": "amount", "type": "uint256"},
			{"internalType": "uint256", "name": "routeId", "type": "uint256"}
		],
		"name": "initiateArbitrage",
		"outputs": [
			{"internalType": "bool", "name": "success", "type": "bool"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`
