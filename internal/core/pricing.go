package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Price is an amount in minor units (cents).
type Price int64

// maxPriceDigits bounds the integer part so minor units fit into int64.
const maxPriceDigits = 12

var priceInput = regexp.MustCompile(`^([0-9]+)(?:\.([0-9]{1,2}))?$`)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

var amountPrinter = message.NewPrinter(language.English)

// ParsePrice parses user input in major units. An empty input is free.
func ParsePrice(input string) (Price, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	m := priceInput.FindStringSubmatch(input)
	if m == nil || len(strings.TrimLeft(m[1], "0")) > maxPriceDigits {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, input)
	}

	major, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, input)
	}
	var minor int64
	if m[2] != "" {
		frac := m[2]
		if len(frac) == 1 {
			frac += "0"
		}
		minor, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Price(major*100 + minor), nil
}

func (p Price) IsFree() bool {
	return p == 0
}

// String renders the price in major units as used in links: whole amounts
// without decimals, others with two.
func (p Price) String() string {
	if p%100 == 0 {
		return strconv.FormatInt(int64(p)/100, 10)
	}
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

// Label is the display text for a single image price.
func (p Price) Label(currency string) string {
	if p.IsFree() {
		return "Free"
	}
	return FormatAmount(p, currency)
}

// FormatAmount formats an amount with digit grouping. Currencies with a
// symbol always show cents ("$1,234.50"); others are prefixed with their
// code and drop a zero fraction ("KES 2,500").
func FormatAmount(p Price, currency string) string {
	currency = strings.ToUpper(currency)
	major := int64(p) / 100
	minor := int64(p) % 100

	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + amountPrinter.Sprintf("%d", major) + fmt.Sprintf(".%02d", minor)
	}

	amount := amountPrinter.Sprintf("%d", major)
	if minor != 0 {
		amount += fmt.Sprintf(".%02d", minor)
	}
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}
