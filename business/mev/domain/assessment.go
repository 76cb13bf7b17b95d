// Package domain contains the MEV risk assessment types.
package domain

import "github.com/shopspring/decimal"

// RiskLevel classifies overall MEV exposure.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskFactor is one weighted input to the overall risk score.
type RiskFactor struct {
	Name        string
	Description string
	Score       decimal.Decimal // 0-100, higher means more risk
	Weight      decimal.Decimal
}

// ProtectionOption describes a way to shield a trade from MEV.
type ProtectionOption struct {
	Name          string
	Description   string
	Effectiveness decimal.Decimal // 0-100
	TradeOff      string
	URL           string
}

// Assessment is the complete MEV risk picture for one trade.
type Assessment struct {
	RiskLevel            RiskLevel
	RiskScore            decimal.Decimal // 0-100
	EstimatedExposureUSD decimal.Decimal
	RiskFactors          []RiskFactor
	ProtectionOptions    []ProtectionOption
	Recommendation       string
}
