package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric は JSON の数値・文字列どちらでも受け付ける数値フィールドです。
// クローラの出力経路によって "70,000" や "-0.71%" のような文字列で届くことがあります。
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Numeric(strings.TrimSpace(str))
		return nil
	}
	*n = Numeric(s)
	return nil
}

func (n Numeric) clean() string {
	s := strings.TrimSpace(string(n))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "+")
	return strings.TrimSpace(s)
}

// Empty reports whether the field was absent, null or blank.
func (n Numeric) Empty() bool {
	return n.clean() == ""
}

// Decimal parses the value. An empty value is zero.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	s := n.clean()
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, string(n))
	}
	return d, nil
}

// Int64 parses an integral value; "70000.0" is accepted, "70000.5" is not.
func (n Numeric) Int64() (int64, error) {
	d, err := n.Decimal()
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not integral", ErrInvalidNumber, string(n))
	}
	return d.IntPart(), nil
}
