package naver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fiflow_backend/internal/feature/crawler/domain/entity"
	mdentity "fiflow_backend/internal/feature/marketdata/domain/entity"
	"fiflow_backend/internal/platform/marketclock"
	"fiflow_backend/internal/shared/apperr"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

const (
	directionUp   = "상승"
	directionDown = "하락"
)

var digits = regexp.MustCompile(`\d+`)

// FetchQuote は item/sise.naver から現在値・前日比・騰落率を取得します。
// 前日比の符号は "상승"/"하락" の表示から決めます。
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	doc, err := c.fetchDocument(ctx, c.itemURL("sise.naver", symbol), "")
	if err != nil {
		return nil, apperr.Upstream("quote request failed", err)
	}
	q, err := parseQuote(doc)
	if err != nil {
		return nil, fmt.Errorf("parse quote for %s: %w", symbol, err)
	}
	return q, nil
}

func parseQuote(doc *goquery.Document) (*entity.Quote, error) {
	priceText := stripNumber(doc.Find("#_nowVal").First().Text())
	price, err := strconv.ParseInt(priceText, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", priceText, err)
	}

	direction := doc.Find("p.no_exday").First().Text()
	sign := int64(0)
	switch {
	case strings.Contains(direction, directionUp):
		sign = 1
	case strings.Contains(direction, directionDown):
		sign = -1
	}

	var change int64
	if sign != 0 {
		m := digits.FindString(stripNumber(doc.Find("#_diff").First().Text()))
		if m == "" {
			return nil, fmt.Errorf("change not found")
		}
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("change %q: %w", m, err)
		}
		change = sign * v
	}

	rateText := stripNumber(doc.Find("#_rate").First().Text())
	rate, err := decimal.NewFromString(rateText)
	if err != nil {
		return nil, fmt.Errorf("change rate %q: %w", rateText, err)
	}
	// 表示が符号なしの場合もあるので方向に合わせる
	rate = rate.Abs()
	if sign < 0 {
		rate = rate.Neg()
	}
	return &entity.Quote{Price: price, Change: change, ChangeRate: rate.Round(2)}, nil
}

// FetchForeignNetBuy は item/frgn.naver の外国人売買表から直近8営業日の純買いを取得します。
// 行の解析に失敗した場合、その行は空スロットになります。
func (c *Client) FetchForeignNetBuy(ctx context.Context, symbol string) ([]mdentity.NetBuy, error) {
	doc, err := c.fetchDocument(ctx, c.itemURL("frgn.naver", symbol), "")
	if err != nil {
		return nil, apperr.Upstream("foreign net-buy request failed", err)
	}
	return parseForeignNetBuy(doc), nil
}

func parseForeignNetBuy(doc *goquery.Document) []mdentity.NetBuy {
	out := make([]mdentity.NetBuy, 0, mdentity.TrailingWindowSize)
	doc.Find("div.inner_sub table.type2 tr[onmouseover]").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(out) == mdentity.TrailingWindowSize {
			return false
		}
		out = append(out, parseNetBuyRow(row))
		return true
	})
	return mdentity.PadWindow(out)
}

func parseNetBuyRow(row *goquery.Selection) mdentity.NetBuy {
	cells := row.Find("td")
	if cells.Length() < 7 {
		return mdentity.NetBuy{}
	}
	date := strings.ReplaceAll(strings.TrimSpace(cells.Eq(0).Text()), ".", "-")
	if !marketclock.ValidDate(date) {
		return mdentity.NetBuy{}
	}
	v, err := strconv.ParseInt(stripNumber(cells.Eq(6).Text()), 10, 64)
	if err != nil {
		return mdentity.NetBuy{}
	}
	return mdentity.NetBuy{Date: date, Volume: v}
}

// stripNumber は桁区切り・%・+ と空白を取り除きます。
func stripNumber(s string) string {
	return strings.NewReplacer(",", "", "%", "", "+", "", "\n", "", "\t", "", " ", "").Replace(strings.TrimSpace(s))
}
