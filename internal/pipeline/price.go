// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tomtom215/gigwire/internal/models"
)

// priceFallback replaces zero prices; APIs frequently report $0 when the
// real price simply isn't available.
const priceFallback = "See website"

var (
	zeroPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`^\$0(\.0+)?$`),
		regexp.MustCompile(`^\$0(\.0+)?\s*-\s*\$0(\.0+)?$`),
	}
	dollarAmountRe = regexp.MustCompile(`\$[\d.]+`)
)

// IsZeroPrice reports whether a price string represents $0 or is empty.
func IsZeroPrice(price string) bool {
	price = strings.TrimSpace(price)
	if price == "" {
		return true
	}
	for _, re := range zeroPriceRes {
		if re.MatchString(price) {
			return true
		}
	}
	return false
}

// NormalizePrice consolidates an event's price fields into the single Price
// display string. The Earl reports separate advance/day-of-show prices,
// combined here into "$X ADV / $Y DOS"; zero prices collapse to the
// see-website fallback.
func NormalizePrice(e *models.Event) {
	price := e.Price

	if price == "" && (e.AdvPrice != "" || e.DosPrice != "") {
		switch {
		case e.AdvPrice != "" && e.DosPrice != "":
			adv := dollarAmountRe.FindString(e.AdvPrice)
			dos := dollarAmountRe.FindString(e.DosPrice)
			if adv != "" && dos != "" {
				price = fmt.Sprintf("%s ADV / %s DOS", adv, dos)
			} else {
				price = fmt.Sprintf("%s / %s", e.AdvPrice, e.DosPrice)
			}
		case e.AdvPrice != "":
			price = e.AdvPrice
		default:
			price = e.DosPrice
		}
	}

	if IsZeroPrice(price) {
		price = priceFallback
	}

	e.AdvPrice = ""
	e.DosPrice = ""
	e.Price = price
}
