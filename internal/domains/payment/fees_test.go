package payment

import (
	"testing"

	"github.com/shopspring/decimal"

	"craftlink/go-backend/internal/domains/contracts"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		rejects bool
	}{
		{name: "plain", raw: "100", want: "100"},
		{name: "cents", raw: "42.50", want: "42.5"},
		{name: "padded", raw: "  250  ", want: "250"},
		{name: "empty", raw: "", rejects: true},
		{name: "whitespace", raw: "   ", rejects: true},
		{name: "words", raw: "a lot", rejects: true},
		{name: "zero", raw: "0", rejects: true},
		{name: "negative", raw: "-5", rejects: true},
		{name: "trailing_junk", raw: "100x", rejects: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.raw)
			if tc.rejects {
				if !contracts.IsInvalidInput(err) {
					t.Fatalf("expected invalid-input class, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if got.String() != tc.want {
				t.Fatalf("parse %q: got=%s want=%s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSplitFee(t *testing.T) {
	cases := []struct {
		name    string
		gross   string
		wantFee string
		wantNet string
	}{
		{name: "round_hundred", gross: "100", wantFee: "5.00", wantNet: "95.00"},
		{name: "cents", gross: "42.50", wantFee: "2.13", wantNet: "40.37"},
		{name: "small", gross: "1", wantFee: "0.05", wantNet: "0.95"},
		{name: "sub_cent_fee", gross: "0.01", wantFee: "0.00", wantNet: "0.01"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			gross := decimal.RequireFromString(tc.gross)
			fee, net := SplitFee(gross)
			if got := FormatAmount(fee); got != tc.wantFee {
				t.Fatalf("fee: got=%s want=%s", got, tc.wantFee)
			}
			if got := FormatAmount(net); got != tc.wantNet {
				t.Fatalf("net: got=%s want=%s", got, tc.wantNet)
			}
			if !fee.Add(net).Equal(gross) {
				t.Fatalf("fee %s + net %s does not restore gross %s", fee, net, gross)
			}
		})
	}
}
