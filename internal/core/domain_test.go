package core

import (
	"testing"

	"github.com/shopspring/decimal"

	ierr "liquidity/internal/errors"
)

func validTemplate() Template {
	return Template{
		Type:      Payment,
		Amount:    decimal.RequireFromString("100.50"),
		Currency:  "EUR",
		Frequency: Monthly,
		StartDate: NewDate(2024, 1, 31),
		CompanyID: "c1",
		Payee:     "Landlord",
		Status:    TemplateActive,
	}
}

func TestTemplateValidate(t *testing.T) {
	if err := validTemplate().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := 0
	before := NewDate(2023, 12, 1)
	bads := map[string]func(*Template){
		"zero amount":      func(t *Template) { t.Amount = decimal.Zero },
		"negative amount":  func(t *Template) { t.Amount = decimal.NewFromInt(-1) },
		"missing start":    func(t *Template) { t.StartDate = Date{} },
		"empty payee":      func(t *Template) { t.Payee = "   " },
		"missing company":  func(t *Template) { t.CompanyID = "" },
		"bad frequency":    func(t *Template) { t.Frequency = "daily" },
		"bad type":         func(t *Template) { t.Type = "transfer" },
		"zero count":       func(t *Template) { t.OccurrencesCount = &zero },
		"end before start": func(t *Template) { t.EndDate = &before },
		"missing currency": func(t *Template) { t.Currency = "" },
	}
	for name, mutate := range bads {
		t.Run(name, func(t *testing.T) {
			tmpl := validTemplate()
			mutate(&tmpl)
			err := tmpl.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !ierr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestEffectiveOccurrencesCount(t *testing.T) {
	tmpl := validTemplate()
	count := 3
	tmpl.OccurrencesCount = &count
	if got := tmpl.EffectiveOccurrencesCount(); got == nil || *got != 3 {
		t.Fatalf("expected count 3, got %v", got)
	}
	end := NewDate(2024, 6, 30)
	tmpl.EndDate = &end
	if got := tmpl.EffectiveOccurrencesCount(); got != nil {
		t.Fatalf("end date must take precedence, got %d", *got)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to  TransactionStatus
		recurring bool
		want      bool
	}{
		{StatusToPay, StatusPostponed, false, true},
		{StatusPostponed, StatusToPay, false, true},
		{StatusToPay, StatusPaid, false, true},
		{StatusPostponed, StatusPaid, true, true},
		{StatusToPay, StatusSkipped, true, true},
		{StatusToPay, StatusSkipped, false, false},
		{StatusPaid, StatusToPay, true, false},
		{StatusSkipped, StatusToPay, true, false},
		{StatusSkipped, StatusPaid, true, false},
		{StatusToPay, StatusToPay, true, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to, tc.recurring); got != tc.want {
			t.Errorf("CanTransition(%s, %s, %v) = %v, want %v", tc.from, tc.to, tc.recurring, got, tc.want)
		}
	}
}

func TestParseAmountDomain(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
