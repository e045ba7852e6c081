package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"fiflow_backend/internal/feature/crawler/domain/entity"
	"fiflow_backend/internal/shared/apperr"

	"github.com/shopspring/decimal"
)

const serviceIndex = "SERVICE_INDEX"

type realtimeResponse struct {
	Result struct {
		Areas []struct {
			Name  string `json:"name"`
			Datas []struct {
				Code       string      `json:"cd"`
				Value      json.Number `json:"nv"`
				Change     json.Number `json:"cv"`
				ChangeRate json.Number `json:"cr"`
			} `json:"datas"`
		} `json:"areas"`
	} `json:"result"`
}

// FetchIndices は polling API から指数を取得します。
// nv と cv は100倍された整数で返るため 100 で割ります。
func (c *Client) FetchIndices(ctx context.Context, names []string) ([]entity.IndexQuote, error) {
	u := fmt.Sprintf("%s/api/realtime?query=%s", c.cfg.PollingBaseURL,
		url.QueryEscape(serviceIndex+":"+strings.Join(names, ",")))
	resp, err := c.get(ctx, u, "")
	if err != nil {
		return nil, apperr.Upstream("index polling failed", err)
	}
	defer resp.Body.Close()

	var body realtimeResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, apperr.Upstream("index polling failed", fmt.Errorf("decode: %w", err))
	}

	var out []entity.IndexQuote
	for _, area := range body.Result.Areas {
		if area.Name != serviceIndex {
			continue
		}
		for _, d := range area.Datas {
			q, err := toIndexQuote(d.Code, d.Value, d.Change, d.ChangeRate)
			if err != nil {
				return nil, apperr.Upstream("index polling failed", err)
			}
			out = append(out, q)
		}
	}
	return out, nil
}

func toIndexQuote(code string, nv, cv, cr json.Number) (entity.IndexQuote, error) {
	value, err := decimal.NewFromString(nv.String())
	if err != nil {
		return entity.IndexQuote{}, fmt.Errorf("%s value %q: %w", code, nv, err)
	}
	change, err := decimal.NewFromString(cv.String())
	if err != nil {
		return entity.IndexQuote{}, fmt.Errorf("%s change %q: %w", code, cv, err)
	}
	rate, err := decimal.NewFromString(cr.String())
	if err != nil {
		return entity.IndexQuote{}, fmt.Errorf("%s change rate %q: %w", code, cr, err)
	}
	return entity.IndexQuote{
		Name:       strings.ToUpper(code),
		Value:      value.Shift(-2),
		Change:     change.Shift(-2),
		ChangeRate: rate,
	}, nil
}
