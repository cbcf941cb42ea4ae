package feed

import (
	"errors"
	"os"
	"testing"
	"time"

	"nbu-currency/internal/apperrors"
	"nbu-currency/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLParser_Parse(t *testing.T) {
	doc, err := os.ReadFile("testdata/exchange_rates.xml")
	require.NoError(t, err)

	feed, err := NewXMLParser().Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, model.UAH, feed.Base)
	assert.Equal(t, time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC), feed.AsOf)
	require.Len(t, feed.Quotes, 5)

	want := map[model.Currency]string{
		"USD": "27.5",
		"EUR": "30",
		"GBP": "40",
		"CAD": "20",
		"RUB": "3.6",
	}
	for _, q := range feed.Quotes {
		expected, ok := want[q.Currency]
		require.True(t, ok, "unexpected currency %s", q.Currency)
		assert.True(t, q.Rate().Equal(decimal.RequireFromString(expected)), "%s: got %s want %s", q.Currency, q.Rate(), expected)
	}
	assert.Equal(t, int64(3600000), feed.Quotes[4].Buy)
}

func TestXMLParser_ParseErrors(t *testing.T) {
	illegal, err := os.ReadFile("testdata/illegal_exchange_rates.xml")
	require.NoError(t, err)

	testCases := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"not xml", "this is not a feed"},
		{"wrong root", string(illegal)},
		{"truncated", `<exchangerate><exchangerate ccy="USD" buy="275000" unit="1" date="2016.01.05"/>`},
		{"no rates", `<exchangerate></exchangerate>`},
		{"missing ccy", `<exchangerate><exchangerate buy="275000" unit="1" date="2016.01.05"/></exchangerate>`},
		{"fractional buy", `<exchangerate><exchangerate ccy="USD" buy="27.5" unit="1" date="2016.01.05"/></exchangerate>`},
		{"missing unit", `<exchangerate><exchangerate ccy="USD" buy="275000" date="2016.01.05"/></exchangerate>`},
		{"zero unit", `<exchangerate><exchangerate ccy="USD" buy="275000" unit="0" date="2016.01.05"/></exchangerate>`},
		{"bad date", `<exchangerate><exchangerate ccy="USD" buy="275000" unit="1" date="soon"/></exchangerate>`},
		{"conflicting base", `<exchangerate>
			<exchangerate ccy="USD" base_ccy="UAH" buy="275000" unit="1" date="2016.01.05"/>
			<exchangerate ccy="EUR" base_ccy="USD" buy="9000" unit="1" date="2016.01.05"/>
		</exchangerate>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewXMLParser().Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrParse), "got %v", err)
		})
	}
}

func TestXMLParser_ParseWithoutBase(t *testing.T) {
	doc := `<exchangerate><exchangerate ccy="usd" buy="275000" unit="1" date="05.01.2016"/></exchangerate>`

	feed, err := NewXMLParser().Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, model.Currency(""), feed.Base)
	require.Len(t, feed.Quotes, 1)
	assert.Equal(t, model.USD, feed.Quotes[0].Currency)
}
