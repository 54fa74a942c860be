// Package liabilities accrues interest on debts and applies payments.
package liabilities

import (
	"errors"

	"fincast/internal/domain"

	"github.com/shopspring/decimal"
)

var ErrLiabilityNotFound = errors.New("liability not found")

var daysPerYear = decimal.NewFromInt(365)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// AccrueDailyInterest adds remainingBalance * (annualRate/365) to each
// liability, returning new instances.
func (m *Manager) AccrueDailyInterest(liabilities []domain.Liability) []domain.Liability {
	updated := make([]domain.Liability, 0, len(liabilities))
	for _, l := range liabilities {
		next := l.DeepCopy()
		dailyRate := decimal.NewFromFloat(l.InterestRate).Div(daysPerYear)
		interest := next.RemainingBalance.Mul(dailyRate)
		next.RemainingBalance = next.RemainingBalance.Add(interest)
		updated = append(updated, next)
	}
	return updated
}

// ProcessPayment subtracts a payment from the remaining balance, clamping
// at zero, and reports whether the liability became fully paid off.
func (m *Manager) ProcessPayment(liability domain.Liability, payment decimal.Decimal) (domain.Liability, bool) {
	next := liability.DeepCopy()
	next.RemainingBalance = next.RemainingBalance.Sub(payment)

	paidOff := next.RemainingBalance.Sign() <= 0
	if paidOff {
		next.RemainingBalance = decimal.Zero
	}
	return next, paidOff
}

func (m *Manager) MonthlyObligations(liabilities []domain.Liability) decimal.Decimal {
	total := decimal.Zero
	for _, l := range liabilities {
		total = total.Add(l.MonthlyPayment)
	}
	return total
}

func (m *Manager) TotalDebt(liabilities []domain.Liability) decimal.Decimal {
	total := decimal.Zero
	for _, l := range liabilities {
		total = total.Add(l.RemainingBalance)
	}
	return total
}

// CheckDefaultRisk is true when the current balance cannot cover the
// required monthly payment.
func (m *Manager) CheckDefaultRisk(balance, monthlyPayment decimal.Decimal) bool {
	return balance.LessThan(monthlyPayment)
}

// Restructure replaces the rate and payment terms of one liability,
// returning a new list. Used by branch overrides for refinance what-ifs.
func (m *Manager) Restructure(liabilities []domain.Liability, id string, newInterestRate float64, newMonthlyPayment decimal.Decimal) ([]domain.Liability, error) {
	updated := domain.CopyLiabilities(liabilities)
	for i, l := range updated {
		if l.ID != id {
			continue
		}
		l.InterestRate = newInterestRate
		l.MonthlyPayment = newMonthlyPayment
		updated[i] = l
		return updated, nil
	}
	return nil, ErrLiabilityNotFound
}
