package extract

import "regexp"

type categoryRule struct {
	category Category
	pattern  *regexp.Regexp
}

// categoryRules is evaluated top to bottom and the first match wins, so the
// order here decides receipts that mention several categories.
var categoryRules = []categoryRule{
	{CategoryFood, regexp.MustCompile(`(?i)(food|restaurant|cafe|pizza|burger|meal|dine|kitchen)`)},
	{CategoryTransportation, regexp.MustCompile(`(?i)(uber|ola|taxi|metro|bus|fuel|petrol|diesel|cab|toll)`)},
	{CategoryEntertainment, regexp.MustCompile(`(?i)(movie|ticket|cinema|netflix|prime|concert|game)`)},
	{CategoryShopping, regexp.MustCompile(`(?i)(store|mall|retail|shop|fashion|clothes|apparel|electronics)`)},
	{CategoryBills, regexp.MustCompile(`(?i)(bill|electric|water|gas|internet|recharge|broadband)`)},
	{CategoryHealthcare, regexp.MustCompile(`(?i)(pharma|pharmacy|medical|clinic|hospital|doctor|medicines)`)},
}

func inferCategory(text string) Category {
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			return rule.category
		}
	}
	return CategoryOther
}
