package news

import "strings"

type rule struct {
	category Category
	keywords []string
}

// Short keywords ("ai", "ev", "sec") only match whole words; longer ones
// match anywhere in the headline.
const wholeWordMaxLen = 3

var rules = []rule{
	{CategoryEarnings, []string{"earnings", "eps", "revenue", "guidance", "q1", "q2", "q3", "q4", "quarter", "results", "profit", "margin"}},
	{CategoryMA, []string{"acquire", "acquisition", "merger", "buyout", "takeover", "deal", "stake", "invests in", "to buy", "sale"}},
	{CategoryRegulation, []string{"regulator", "sec", "antitrust", "doj", "probe", "lawsuit", "ban", "sanction", "compliance", "fine", "policy", "tariff"}},
	{CategoryProduct, []string{"launch", "unveil", "release", "product", "chip", "ai", "model", "vehicle", "ev", "software", "update", "partnership"}},
	{CategoryMacro, []string{"fed", "inflation", "rates", "yield", "oil", "gold", "dollar", "usd", "rupee", "macro", "economy", "recession", "cpi", "jobs"}},
	{CategoryLegal, []string{"court", "lawsuit", "settlement", "appeal", "injunction", "patent", "ip", "litigation"}},
}

// Classify tags a headline with the first category whose keywords it
// contains, checked in the order of Categories. Unmatched headlines are
// CategoryOther.
func Classify(headline string) Category {
	h := strings.ToLower(headline)
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(h, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		words[w] = struct{}{}
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if len(kw) <= wholeWordMaxLen {
				if _, ok := words[kw]; ok {
					return r.category
				}
				continue
			}
			if strings.Contains(h, kw) {
				return r.category
			}
		}
	}
	return CategoryOther
}
