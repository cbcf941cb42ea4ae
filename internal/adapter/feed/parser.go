package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"nbu-currency/internal/apperrors"
	"nbu-currency/internal/domain/model"
	"nbu-currency/pkg/utils"

	"github.com/shopspring/decimal"
)

// xmlDocument mirrors <exchangerate><exchangerate ccy=".." .../>...</exchangerate>.
type xmlDocument struct {
	XMLName xml.Name  `xml:"exchangerate"`
	Rates   []xmlRate `xml:"exchangerate"`
}

type xmlRate struct {
	Ccy     string `xml:"ccy,attr"`
	BaseCcy string `xml:"base_ccy,attr"`
	Buy     string `xml:"buy,attr"`
	Unit    string `xml:"unit,attr"`
	Date    string `xml:"date,attr"`
}

// XMLParser parses the bank's XML rate document.
type XMLParser struct{}

func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

func (p *XMLParser) Parse(doc []byte) (model.Feed, error) {
	var parsed xmlDocument
	if err := xml.NewDecoder(bytes.NewReader(doc)).Decode(&parsed); err != nil {
		return model.Feed{}, fmt.Errorf("%w: decoding xml: %v", apperrors.ErrParse, err)
	}
	if len(parsed.Rates) == 0 {
		return model.Feed{}, fmt.Errorf("%w: document has no exchange rates", apperrors.ErrParse)
	}

	asOf, err := utils.ParseFeedDate(parsed.Rates[0].Date)
	if err != nil {
		return model.Feed{}, fmt.Errorf("%w: as-of date: %v", apperrors.ErrParse, err)
	}

	feed := model.Feed{
		Quotes: make([]model.Quote, 0, len(parsed.Rates)),
		AsOf:   asOf,
	}

	for i, r := range parsed.Rates {
		quote, err := parseQuote(r)
		if err != nil {
			return model.Feed{}, fmt.Errorf("%w: entry %d: %v", apperrors.ErrParse, i, err)
		}

		base := model.ParseCurrency(r.BaseCcy)
		if base != "" {
			if feed.Base != "" && feed.Base != base {
				return model.Feed{}, fmt.Errorf("%w: entry %d: base %s conflicts with %s", apperrors.ErrParse, i, base, feed.Base)
			}
			feed.Base = base
		}

		feed.Quotes = append(feed.Quotes, quote)
	}

	return feed, nil
}

func parseQuote(r xmlRate) (model.Quote, error) {
	currency := model.ParseCurrency(r.Ccy)
	if currency == "" {
		return model.Quote{}, fmt.Errorf("missing ccy")
	}

	buy, err := strconv.ParseInt(strings.TrimSpace(r.Buy), 10, 64)
	if err != nil {
		return model.Quote{}, fmt.Errorf("buy price of %s: %v", currency, err)
	}

	unit, err := decimal.NewFromString(strings.TrimSpace(r.Unit))
	if err != nil {
		return model.Quote{}, fmt.Errorf("unit of %s: %v", currency, err)
	}
	if !unit.IsPositive() {
		return model.Quote{}, fmt.Errorf("unit of %s must be positive, got %s", currency, unit)
	}

	return model.Quote{Currency: currency, Buy: buy, Unit: unit}, nil
}
