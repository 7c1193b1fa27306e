package cart

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Item is a single line of an item request
type Item struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// IsValid reports whether the item has a name and a positive quantity
func (i Item) IsValid() bool {
	return strings.TrimSpace(i.Name) != "" && i.Quantity > 0
}

// quantityPattern matches "Tritanium x1,000" style lines
var quantityPattern = regexp.MustCompile(`^(.+?)\s+x([\d,]+)`)

// ParseItems parses item text pasted from the EVE client.
//
// Each non-blank line is tried as "Name xQty", then as tab separated columns
// with the quantity in the second column, then as "Name Qty" split on the last
// space. Lines that match none of these are ignored. Repeated names are merged
// into the first occurrence with quantities summed, saturating at MaxInt64.
func ParseItems(text string) []Item {
	items := make([]Item, 0)
	index := make(map[string]int)

	add := func(name string, qty int64) {
		name = strings.TrimSpace(name)
		if name == "" || qty <= 0 {
			return
		}
		if i, ok := index[name]; ok {
			items[i].Quantity = addQuantity(items[i].Quantity, qty)
			return
		}
		index[name] = len(items)
		items = append(items, Item{Name: name, Quantity: qty})
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := quantityPattern.FindStringSubmatch(line); m != nil {
			if qty, ok := parseQuantity(m[2]); ok {
				add(m[1], qty)
				continue
			}
		}

		if strings.Contains(line, "\t") {
			parts := strings.Split(line, "\t")
			if len(parts) >= 2 {
				if qty, ok := parseQuantity(parts[1]); ok {
					add(parts[0], qty)
					continue
				}
			}
		}

		if i := strings.LastIndex(line, " "); i > 0 {
			if qty, ok := parseQuantity(line[i+1:]); ok {
				add(line[:i], qty)
			}
		}
	}

	return items
}

// addQuantity sums two non-negative quantities, saturating at MaxInt64
func addQuantity(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func parseQuantity(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

var iskPrinter = message.NewPrinter(language.English)

// FormatISK renders an ISK amount with thousands separators, e.g. "1,000,000 ISK".
// A nil amount renders as "0 ISK".
func FormatISK(amount *int64) string {
	if amount == nil {
		return "0 ISK"
	}
	return iskPrinter.Sprintf("%d ISK", *amount)
}

// TradeHub is a well known market station
type TradeHub struct {
	Name    string `json:"name"`
	Station string `json:"station"`
}

// TradeHubs are the major empire trade hubs
var TradeHubs = []TradeHub{
	{Name: "Jita", Station: "Jita IV - Moon 4 - Caldari Navy Assembly Plant"},
	{Name: "Amarr", Station: "Amarr VIII (Oris) - Emperor Family Academy"},
	{Name: "Dodixie", Station: "Dodixie IX - Moon 20 - Federation Navy Assembly Plant"},
	{Name: "Rens", Station: "Rens VI - Moon 8 - Brutor Tribe Treasury"},
	{Name: "Hek", Station: "Hek VIII - Moon 12 - Boundless Creation Factory"},
}

// HubsByName returns the trade hubs matching names, in the given order.
// Unknown names are returned with an empty station.
func HubsByName(names []string) []TradeHub {
	out := make([]TradeHub, 0, len(names))
	for _, n := range names {
		hub := TradeHub{Name: n}
		for _, h := range TradeHubs {
			if strings.EqualFold(h.Name, n) {
				hub = h
				break
			}
		}
		out = append(out, hub)
	}
	return out
}
