// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/app"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Optimizer = di.NewToken[*app.Optimizer]("arbitrage.Optimizer")
	Scanner   = di.NewToken[*app.Scanner]("arbitrage.Scanner")
)

// Private dependency tokens - internal to arbitrage module
var (
	Evaluator = di.NewToken[app.RouteEvaluator]("arbitrage:evaluator")
	Reporter  = di.NewToken[app.Reporter]("arbitrage:reporter")
)

// Helper functions for type-safe access
func GetOptimizer(c di.ServiceRegistry) *app.Optimizer {
	return di.GetToken(c, Optimizer)
}

func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetEvaluator(c di.ServiceRegistry) app.RouteEvaluator {
	return di.GetToken(c, Evaluator)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
