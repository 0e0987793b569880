package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LoanPayment computes the monthly annuity payment for a loan.
type LoanPayment struct{}

func NewLoanPayment() *LoanPayment { return &LoanPayment{} }

func (t *LoanPayment) Name() string { return "calculate_loan_payment" }

func (t *LoanPayment) Spec() Spec {
	return Spec{
		Name: t.Name(),
		Description: "Рассчитывает ежемесячный платеж по аннуитетному кредиту. " +
			"Возвращает ежемесячный платеж, общую сумму выплат и переплату.",
		Parameters: []Param{
			{Name: "principal", Type: "number", Description: "Сумма кредита в рублях", Required: true},
			{Name: "annual_rate", Type: "number", Description: "Годовая процентная ставка в процентах, например 15.5", Required: true},
			{Name: "months", Type: "integer", Description: "Срок кредита в месяцах", Required: true},
		},
	}
}

func (t *LoanPayment) Execute(_ context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Principal  float64 `json:"principal"`
		AnnualRate float64 `json:"annual_rate"`
		Months     int     `json:"months"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Principal <= 0 {
		return "", fmt.Errorf("сумма кредита должна быть больше нуля")
	}
	if args.Months < 1 {
		return "", fmt.Errorf("срок кредита должен быть не меньше одного месяца")
	}

	monthlyRate := args.AnnualRate / 100 / 12
	var monthlyPayment float64
	if monthlyRate == 0 {
		monthlyPayment = args.Principal / float64(args.Months)
	} else {
		// Annuity: A = P * (r * (1 + r)^n) / ((1 + r)^n - 1)
		growth := math.Pow(1+monthlyRate, float64(args.Months))
		monthlyPayment = args.Principal * (monthlyRate * growth) / (growth - 1)
	}
	totalPayment := monthlyPayment * float64(args.Months)

	out, err := json.Marshal(map[string]any{
		"monthly_payment": round2(monthlyPayment),
		"total_payment":   round2(totalPayment),
		"overpayment":     round2(totalPayment - args.Principal),
		"principal":       round2(args.Principal),
		"annual_rate":     args.AnnualRate,
		"months":          args.Months,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DepositInterest computes deposit income with or without capitalization.
type DepositInterest struct{}

func NewDepositInterest() *DepositInterest { return &DepositInterest{} }

func (t *DepositInterest) Name() string { return "calculate_deposit_interest" }

func (t *DepositInterest) Spec() Spec {
	return Spec{
		Name: t.Name(),
		Description: "Рассчитывает доход по вкладу: итоговую сумму и начисленные проценты. " +
			"По умолчанию проценты капитализируются.",
		Parameters: []Param{
			{Name: "principal", Type: "number", Description: "Сумма вклада в рублях", Required: true},
			{Name: "annual_rate", Type: "number", Description: "Годовая процентная ставка в процентах, например 7.5", Required: true},
			{Name: "days", Type: "integer", Description: "Срок вклада в днях", Required: true},
			{Name: "capitalization", Type: "boolean", Description: "true — проценты добавляются к сумме вклада, false — простые проценты", Required: false},
		},
	}
}

func (t *DepositInterest) Execute(_ context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Principal      float64 `json:"principal"`
		AnnualRate     float64 `json:"annual_rate"`
		Days           int     `json:"days"`
		Capitalization *bool   `json:"capitalization"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Principal <= 0 {
		return "", fmt.Errorf("сумма вклада должна быть больше нуля")
	}
	if args.Days < 1 {
		return "", fmt.Errorf("срок вклада должен быть не меньше одного дня")
	}
	capitalize := true
	if args.Capitalization != nil {
		capitalize = *args.Capitalization
	}

	dailyRate := args.AnnualRate / 100 / 365
	var finalAmount float64
	if capitalize {
		finalAmount = args.Principal * math.Pow(1+dailyRate, float64(args.Days))
	} else {
		finalAmount = args.Principal * (1 + dailyRate*float64(args.Days))
	}

	out, err := json.Marshal(map[string]any{
		"principal":      round2(args.Principal),
		"income":         round2(finalAmount - args.Principal),
		"final_amount":   round2(finalAmount),
		"annual_rate":    args.AnnualRate,
		"days":           args.Days,
		"capitalization": capitalize,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Percentage computes a percentage of an amount.
type Percentage struct{}

func NewPercentage() *Percentage { return &Percentage{} }

func (t *Percentage) Name() string { return "calculate_percentage" }

func (t *Percentage) Spec() Spec {
	return Spec{
		Name:        t.Name(),
		Description: "Рассчитывает процент от суммы (универсальный калькулятор процентов).",
		Parameters: []Param{
			{Name: "amount", Type: "number", Description: "Исходная сумма в рублях", Required: true},
			{Name: "percentage", Type: "number", Description: "Процент, например 15 для 15%", Required: true},
		},
	}
}

func (t *Percentage) Execute(_ context.Context, raw json.RawMessage) (string, error) {
	var args struct {
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	out, err := json.Marshal(map[string]any{
		"original_amount": round2(args.Amount),
		"percentage":      args.Percentage,
		"result":          round2(args.Amount * args.Percentage / 100),
		"description":     fmt.Sprintf("%g%% от %g руб.", args.Percentage, args.Amount),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
